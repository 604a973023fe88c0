package task

import (
	"fmt"
	"sync/atomic"

	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/layout"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

// commandBufferSize 输入命令队列容量
const commandBufferSize = 1024

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：由tick驱动独占；外部输入只能通过命令队列进入，在下一个tick开始时生效
type Context struct {
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 路口几何
	layout *layout.Layout

	// 路口与信号灯
	junction *junction.Junction
	// 车辆管理器
	vehicleManager *vehicle.Manager

	// 待处理的输入命令
	commands chan command
	// 暂停时跳过信控与车辆推进，时钟与渲染照常
	paused bool
	// 自动生成请求
	demand *Demand
	// 渲染输出
	sink RenderSink
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置并创建时钟、布局、路口与车辆管理器
// 参数：c-原始配置，sink-渲染输出（nil表示不输出）
// 返回：初始化完成的Context实例，配置或布局非法时返回错误
// 算法说明：
// 1. 补全默认值并校验配置
// 2. 由几何配置推导路口布局
// 3. 创建时钟、路口（四个信号灯与信控策略）、车辆管理器
// 4. 配置了自动生成频率时创建独立随机数引擎的生成请求源
func NewContext(c config.Config, sink RenderSink) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	l, err := layout.New(rc.All.Layout)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink{}
	}
	ctx := &Context{
		clock:         clock.New(rc.C.Step),
		runtimeConfig: rc,
		layout:        l,
		commands:      make(chan command, commandBufferSize),
		sink:          sink,
	}
	ctx.junction, err = junction.New(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("create junction: %w", err)
	}
	ctx.vehicleManager = vehicle.NewManager(ctx, l, randengine.New(rc.All.Spawn.Seed))
	if rate := rc.All.Spawn.RandomRate; rate > 0 {
		ctx.demand = NewDemand(rate, rc.All.Spawn.Seed+1)
	}
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Layout() *layout.Layout {
	return ctx.layout
}

func (ctx *Context) Junction() entity.IJunction {
	return ctx.junction
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

// Paused 是否处于暂停状态
func (ctx *Context) Paused() bool {
	return ctx.paused
}

// Close 请求停止运行，在当前tick结束后生效
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
