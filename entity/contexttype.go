package entity

import (
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// ITaskContext 仿真任务上下文接口，各模块通过它访问时钟与运行时配置
type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
}
