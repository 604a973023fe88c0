package trafficlight

import (
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// Light 单个进口道的信号灯
type Light struct {
	direction  entity.Approach
	position   entity.Point // 仅用于渲染
	state      entity.LightState
	lastChange float64 // 上次状态变化的仿真时间（秒）
}

// View 只读视图
func (l *Light) View() entity.LightView {
	return entity.LightView{
		Direction:  l.direction,
		Position:   l.position,
		State:      l.state,
		LastChange: l.lastChange,
	}
}

// Lights 路口的四个信号灯，按进口道索引，只由信控策略修改
type Lights struct {
	lights   [4]Light
	switches int // 绿灯方向发生变化的次数
}

// NewLights 创建四个信号灯
// 参数：positions-各灯渲染位置，initialGreen-初始绿灯方向（nil表示全红），now-当前仿真时间
func NewLights(positions [4]entity.Point, initialGreen *entity.Approach, now float64) *Lights {
	ls := &Lights{}
	for _, a := range entity.Approaches {
		ls.lights[a] = Light{
			direction:  a,
			position:   positions[a],
			state:      entity.Red,
			lastChange: now,
		}
	}
	if initialGreen != nil {
		ls.lights[*initialGreen].state = entity.Green
	}
	return ls
}

// State 进口道a的信号灯状态
func (ls *Lights) State(a entity.Approach) entity.LightState {
	return ls.lights[a].state
}

// Elapsed 进口道a的信号灯自上次变化以来经过的时间
func (ls *Lights) Elapsed(a entity.Approach, now float64) float64 {
	return now - ls.lights[a].lastChange
}

// Greens 当前为绿灯的进口道，按枚举顺序
func (ls *Lights) Greens() []entity.Approach {
	return lo.Filter(entity.Approaches[:], func(a entity.Approach, _ int) bool {
		return ls.lights[a].state == entity.Green
	})
}

// Green 当前绿灯的进口道
// 说明：单进口道放行的策略中至多一个绿灯；有多个时返回枚举顺序中最后一个，与逐个遍历信号灯的结果一致
func (ls *Lights) Green() (entity.Approach, bool) {
	greens := ls.Greens()
	if len(greens) == 0 {
		return entity.North, false
	}
	return greens[len(greens)-1], true
}

// SetGreen 仅放行给定的进口道，其余全部变红
// 说明：四个灯的lastChange都刷新为now；只有放行集合变化时才计入切换次数
func (ls *Lights) SetGreen(now float64, greens ...entity.Approach) {
	before := ls.Greens()
	for _, a := range entity.Approaches {
		l := &ls.lights[a]
		if lo.Contains(greens, a) {
			l.state = entity.Green
		} else {
			l.state = entity.Red
		}
		l.lastChange = now
	}
	if after := ls.Greens(); len(after) > 0 && !slices.Equal(before, after) {
		ls.switches++
	}
}

// SetAllRed 全部变红（空闲状态），刷新所有lastChange
func (ls *Lights) SetAllRed(now float64) {
	ls.SetGreen(now)
}

// Views 四个信号灯的只读视图
func (ls *Lights) Views() [4]entity.LightView {
	var out [4]entity.LightView
	for i := range ls.lights {
		out[i] = ls.lights[i].View()
	}
	return out
}

// Switches 绿灯方向发生变化的次数
func (ls *Lights) Switches() int {
	return ls.switches
}
