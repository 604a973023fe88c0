package junction

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/layout"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// Junction 十字路口
// 功能：每个tick统计各进口道的排队车辆，交给信控策略更新四个信号灯
type Junction struct {
	ctx    entity.ITaskContext
	layout *layout.Layout

	trafficLight trafficlight.ITrafficLight // 信号灯模块
	counts       [4]int                     // 最近一次统计的排队车辆数
	peak         [4]int                     // 运行以来的最大排队车辆数
}

// New 创建路口
// 功能：按配置创建四个信号灯与信控策略
// 参数：ctx-任务上下文，l-路口布局
// 返回：路口实例，初始绿灯方向或信控策略非法时返回错误
func New(ctx entity.ITaskContext, l *layout.Layout) (*Junction, error) {
	c := ctx.RuntimeConfig()
	var initialGreen *entity.Approach
	if s := c.All.Signal.InitialGreen; !strings.EqualFold(s, config.InitialGreenNone) {
		a, err := entity.ParseApproach(s)
		if err != nil {
			return nil, fmt.Errorf("signal.initial_green: %w", err)
		}
		initialGreen = &a
	}
	positions := [4]entity.Point{}
	for _, a := range entity.Approaches {
		positions[a] = l.LightPosition(a)
	}
	lights := trafficlight.NewLights(positions, initialGreen, ctx.Clock().Time())
	tl, err := trafficlight.New(c.C.Policy, c.All.Signal, lights)
	if err != nil {
		return nil, err
	}
	log.Infof("traffic light policy: %s, initial green: %v", tl.Name(), lights.Greens())
	return &Junction{
		ctx:          ctx,
		layout:       l,
		trafficLight: tl,
	}, nil
}

// CountWaiting 统计各进口道排队车辆数
// 说明：朝向等于该进口道、尚未驶过路口且位于停车线之前（含停车线）的车辆计入排队
func CountWaiting(l *layout.Layout, vehicles []entity.IVehicle) [4]int {
	var counts [4]int
	for _, a := range entity.Approaches {
		counts[a] = lo.CountBy(vehicles, func(v entity.IVehicle) bool {
			return v.Direction() == a && !v.Passed() && l.Waiting(a, v.Position())
		})
	}
	return counts
}

// Update 更新阶段
// 参数：vehicles-本tick开始时的全部车辆
func (j *Junction) Update(vehicles []entity.IVehicle) {
	j.counts = CountWaiting(j.layout, vehicles)
	for i, n := range j.counts {
		j.peak[i] = max(j.peak[i], n)
	}
	j.trafficLight.Update(j.counts, j.ctx.Clock().Time())
}

// LightState 进口道a的信号灯状态
func (j *Junction) LightState(a entity.Approach) entity.LightState {
	return j.trafficLight.Lights().State(a)
}

// Lights 四个信号灯的只读视图
func (j *Junction) Lights() [4]entity.LightView {
	return j.trafficLight.Lights().Views()
}

// Counts 最近一次统计的各进口道排队车辆数
func (j *Junction) Counts() [4]int {
	return j.counts
}

// Peak 运行以来各进口道的最大排队车辆数
func (j *Junction) Peak() [4]int {
	return j.peak
}

// Policy 信控策略名
func (j *Junction) Policy() string {
	return j.trafficLight.Name()
}

// Switches 绿灯方向切换次数
func (j *Junction) Switches() int {
	return j.trafficLight.Lights().Switches()
}
