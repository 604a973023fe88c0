package task

import (
	"context"
	"flag"
	"fmt"
	"time"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 600, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个tick开始时执行外部输入，推进时钟
// 算法说明：
// 1. 按到达顺序执行所有待处理命令（生成、暂停切换）
// 2. 自动生成请求源的请求排在外部命令之后直接执行，tick协程从不向命令队列发送
// 3. 推进时钟，暂停时同样推进
// 4. 心跳日志：定期输出系统状态信息
func (ctx *Context) prepare() {
	ctx.drainCommands()
	if ctx.demand != nil && ctx.demand.Step(ctx.clock.DT) {
		ctx.execute(command{kind: commandSpawnRandom})
	}
	ctx.clock.Tick()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		s := ctx.Stats()
		log.Infof(
			"STEP: %d(%v) vehicles=%d spawned=%d despawned=%d switches=%d",
			ctx.clock.InternalStep, ctx.clock,
			s.Vehicles, s.Spawned, s.Despawned, s.Switches,
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：信控根据本tick开始时的车辆统计排队并更新信号灯，随后所有车辆按新的信号灯推进一步
// 说明：车辆移除在推进结束后统一执行
func (ctx *Context) update() {
	ctx.junction.Update(ctx.vehicleManager.Vehicles())
	ctx.vehicleManager.Update(ctx.junction)
	ctx.vehicleManager.Prepare()
}

// AdvanceTick 推进一个tick
// 说明：暂停时只执行输入与时钟推进，跳过信控与车辆推进
func (ctx *Context) AdvanceTick() {
	ctx.prepare()
	if !ctx.paused {
		ctx.update()
	}
}

// Run 运行
// 功能：循环推进tick并输出快照，直到到达结束步、runCtx取消或Close被调用
// 参数：runCtx-用于取消运行的上下文
// 返回：渲染输出失败时返回ErrRenderSink
// 说明：control.fps>0时按帧率实时驱动，否则尽快运行
func (ctx *Context) Run(runCtx context.Context) error {
	var tick <-chan time.Time
	if fps := ctx.runtimeConfig.C.FPS; fps > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
		defer ticker.Stop()
		tick = ticker.C
	}
	log.Infof("engine start: policy=%s dt=%.4f fps=%.0f", ctx.junction.Policy(), ctx.clock.DT, ctx.runtimeConfig.C.FPS)
	for !ctx.clock.Done() && !ctx.closed.Load() {
		if tick != nil {
			select {
			case <-runCtx.Done():
				ctx.Close()
				continue
			case <-tick:
			}
		} else if runCtx.Err() != nil {
			ctx.Close()
			continue
		}
		ctx.AdvanceTick()
		if err := ctx.sink.Render(ctx.RenderSnapshot()); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrRenderSink, ctx.clock.InternalStep, err)
		}
	}
	s := ctx.Stats()
	log.Infof("engine complete: %+v", s)
	return nil
}
