// 提供单进口道放行的自适应信号灯控制算法
// 每个时刻至多一个进口道为绿灯，按排队车辆数选择放行方向，可选地为长队列提供优先放行
package trafficlight

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// priorityTrafficLight 自适应信号灯控制器
// 功能：根据各进口道排队车辆数动态选择放行方向，绿灯超时或放行方向无车时切换
type priorityTrafficLight struct {
	lights     *Lights
	maxGreen   float64 // 最长绿灯时间（秒）
	threshold  int     // 触发优先放行的排队车辆数
	yieldBelow int     // 当前绿灯方向排队车辆数低于该值时才让出
	priority   bool    // 是否启用优先放行规则
}

// NewPriorityTrafficLight 创建带优先放行的自适应信号灯控制器
// 参数：lights-受控信号灯，c-信控参数
// 返回：初始化完成的控制器
func NewPriorityTrafficLight(lights *Lights, c config.Signal) *priorityTrafficLight {
	return &priorityTrafficLight{
		lights:     lights,
		maxGreen:   c.MaxGreenTime,
		threshold:  c.PriorityThreshold,
		yieldBelow: c.PriorityYieldBelow,
		priority:   true,
	}
}

// NewAdaptiveTrafficLight 创建不带优先放行规则的自适应信号灯控制器
func NewAdaptiveTrafficLight(lights *Lights, c config.Signal) *priorityTrafficLight {
	l := NewPriorityTrafficLight(lights, c)
	l.priority = false
	return l
}

func (l *priorityTrafficLight) Name() string {
	if l.priority {
		return config.PolicyPriority
	}
	return config.PolicyAdaptive
}

func (l *priorityTrafficLight) Lights() *Lights {
	return l.lights
}

// Update 更新阶段，每个tick调用一次
// 参数：counts-各进口道排队车辆数，now-当前仿真时间
// 算法说明：
// 1. 全部进口道无车时全红
// 2. 若有进口道排队数达到优先阈值，而另一个绿灯进口道排队数低于让出阈值，则按枚举顺序取第一个这样的进口道放行
// 3. 当前有绿灯且未超时、放行方向仍有车时保持不变，不刷新lastChange
// 4. 否则放行排队数最多的进口道（并列时取枚举顺序靠前者，全部为0时取North）
func (l *priorityTrafficLight) Update(counts [4]int, now float64) {
	if lo.Sum(counts[:]) == 0 {
		if len(l.lights.Greens()) > 0 {
			log.Debugf("t=%.2f: no waiting vehicles, all red", now)
		}
		l.lights.SetAllRed(now)
		return
	}
	if l.priority {
		if a, ok := l.priorityCandidate(counts); ok {
			l.apply(a, now, "priority")
			return
		}
	}
	green, hasGreen := l.lights.Green()
	if hasGreen {
		shouldChange := clock.AtLeast(l.lights.Elapsed(green, now), l.maxGreen) || counts[green] == 0
		if !shouldChange {
			return
		}
	}
	l.apply(maxCount(counts), now, "adaptive")
}

// priorityCandidate 优先放行候选
// 说明：候选进口道自身为绿灯时不构成让出关系
func (l *priorityTrafficLight) priorityCandidate(counts [4]int) (entity.Approach, bool) {
	greens := l.lights.Greens()
	for _, a := range entity.Approaches {
		if counts[a] < l.threshold {
			continue
		}
		yields := lo.ContainsBy(greens, func(g entity.Approach) bool {
			return g != a && counts[g] < l.yieldBelow
		})
		if yields {
			return a, true
		}
	}
	return entity.North, false
}

func (l *priorityTrafficLight) apply(a entity.Approach, now float64, reason string) {
	if green, ok := l.lights.Green(); !ok || green != a {
		log.Debugf("t=%.2f: green -> %v (%s)", now, a, reason)
	}
	l.lights.SetGreen(now, a)
}

// maxCount 排队车辆数最多的进口道
// 功能：以负排队数作为优先级建堆，堆顶即为最大值，优先级相同时按插入顺序即枚举顺序
// 返回：排队数最多的进口道，全部为0时返回North
func maxCount(counts [4]int) entity.Approach {
	pq := container.NewPriorityQueue[entity.Approach]()
	for _, a := range entity.Approaches {
		pq.Push(a, -float64(counts[a]))
	}
	pq.Heapify()
	a, priority := pq.HeapPop()
	if priority < 0 {
		return a
	}
	return entity.North
}
