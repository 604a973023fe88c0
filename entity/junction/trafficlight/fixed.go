package trafficlight

import (
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// fixedPhases 两相位固定配时：先南北放行，再东西放行
var fixedPhases = [][]entity.Approach{
	{entity.North, entity.South},
	{entity.East, entity.West},
}

// fixedTrafficLight 两相位固定配时信号灯
// 功能：两个相位轮流放行，每个相位持续phaseTime，不考虑排队情况
type fixedTrafficLight struct {
	lights    *Lights
	phaseTime float64
}

// NewFixedTrafficLight 创建两相位固定配时信号灯
func NewFixedTrafficLight(lights *Lights, c config.Signal) *fixedTrafficLight {
	return &fixedTrafficLight{
		lights:    lights,
		phaseTime: c.FixedPhaseTime,
	}
}

func (l *fixedTrafficLight) Name() string {
	return config.PolicyFixed
}

func (l *fixedTrafficLight) Lights() *Lights {
	return l.lights
}

// Update 更新阶段
// 说明：当前绿灯集合不是某个完整相位时（如初始只有东向绿灯），立即切换到包含第一个绿灯方向的相位，没有绿灯时从第一个相位开始
func (l *fixedTrafficLight) Update(_ [4]int, now float64) {
	greens := l.lights.Greens()
	index, ok := l.phaseIndex(greens)
	if !ok {
		l.lights.SetGreen(now, fixedPhases[index]...)
		log.Debugf("t=%.2f: fixed phase %d %v", now, index, fixedPhases[index])
		return
	}
	if clock.AtLeast(l.lights.Elapsed(greens[0], now), l.phaseTime) {
		next := (index + 1) % len(fixedPhases)
		l.lights.SetGreen(now, fixedPhases[next]...)
		log.Debugf("t=%.2f: fixed phase %d %v", now, next, fixedPhases[next])
	}
}

// phaseIndex 当前绿灯集合对应的相位
// 返回：相位索引，以及绿灯集合是否恰好等于该相位
func (l *fixedTrafficLight) phaseIndex(greens []entity.Approach) (int, bool) {
	for i, phase := range fixedPhases {
		if slices.Equal(greens, phase) {
			return i, true
		}
	}
	if len(greens) == 0 {
		return 0, false
	}
	_, i, _ := lo.FindIndexOf(fixedPhases, func(phase []entity.Approach) bool {
		return lo.Contains(phase, greens[0])
	})
	return max(i, 0), false
}
