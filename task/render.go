package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

var (
	ErrRenderSink = errors.New("render sink failed")
)

// Snapshot 一个tick结束后的只读状态
type Snapshot struct {
	Step     int32
	T        float64
	Paused   bool
	Policy   string
	Lights   [4]entity.LightView // 按进口道枚举顺序
	Counts   [4]int              // 各进口道排队车辆数
	Vehicles []entity.VehiclePose
}

// RenderSink 渲染输出
// 说明：每个tick收到一次完整快照；返回错误时整个运行终止
type RenderSink interface {
	Render(s Snapshot) error
}

// NopSink 不输出
type NopSink struct{}

func (NopSink) Render(Snapshot) error {
	return nil
}

// LogSink 以文本日志形式输出快照
// 说明：每Interval个tick输出一次信号灯与排队概况，车辆明细在debug级别输出；Interval<=0时不输出
type LogSink struct {
	Interval int32
}

func (s LogSink) Render(snap Snapshot) error {
	if s.Interval <= 0 || snap.Step%s.Interval != 0 {
		return nil
	}
	lights := lo.Map(snap.Lights[:], func(l entity.LightView, _ int) string {
		return fmt.Sprintf("%v:%v/%d", l.Direction, l.State, snap.Counts[l.Direction])
	})
	log.Infof("step %d t=%.2f paused=%v [%s] vehicles=%d",
		snap.Step, snap.T, snap.Paused, strings.Join(lights, " "), len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		log.Debugf("  vehicle %d %v %v->%v %v", v.ID, v.Position, v.Origin, v.Direction, v.Route)
	}
	return nil
}

// RenderSnapshot 当前状态的只读快照
func (ctx *Context) RenderSnapshot() Snapshot {
	return Snapshot{
		Step:     ctx.clock.InternalStep,
		T:        ctx.clock.Time(),
		Paused:   ctx.paused,
		Policy:   ctx.junction.Policy(),
		Lights:   ctx.junction.Lights(),
		Counts:   ctx.junction.Counts(),
		Vehicles: ctx.vehicleManager.Poses(),
	}
}
