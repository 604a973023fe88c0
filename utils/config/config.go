package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// 信控策略名
const (
	PolicyPriority = "priority" // 自适应+优先放行
	PolicyAdaptive = "adaptive" // 单进口道自适应
	PolicyFixed    = "fixed"    // 两相位固定配时
)

// InitialGreenNone 初始状态全红
const InitialGreenNone = "none"

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并通过校验的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// Default 返回全部使用默认值的配置
// 说明：默认值与900x800画布、70宽道路、25x35车辆的默认场景一致
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Parse 解析YAML配置
// 功能：严格模式解析YAML，未知字段视为错误
// 参数：data-YAML文本
// 返回：解析后的配置（尚未补全默认值）
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, nil
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值并进行配置校验
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回ErrInvalidConfig
// 算法说明：
// 1. 对所有为零值的数值字段填入默认值
// 2. 校验信控策略名、生成权重等取值范围
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &RuntimeConfig{
		All: config,
		C:   config.Control,
	}, nil
}

// GuardIntersection 是否启用路口占用检查
func (rc *RuntimeConfig) GuardIntersection() bool {
	return *rc.C.IntersectionGuard
}

func (c *Config) applyDefaults() {
	setDefault(&c.Control.Step.Interval, 1.0/60)
	setDefault(&c.Control.FPS, 60)
	setDefault(&c.Control.Policy, PolicyPriority)
	if c.Control.IntersectionGuard == nil {
		guard := c.Control.Policy != PolicyFixed
		c.Control.IntersectionGuard = &guard
	}

	l := &c.Layout
	setDefault(&l.WindowWidth, 900)
	setDefault(&l.WindowHeight, 800)
	setDefault(&l.RoadWidth, 70)
	setDefault(&l.VehicleWidth, 25)
	setDefault(&l.VehicleHeight, 35)
	setDefault(&l.VehicleSpeed, 2)
	setDefault(&l.MinVehicleDistance, 50)
	setDefault(&l.TurnOffset, 30)
	setDefault(&l.StopTolerance, 5)
	setDefault(&l.DespawnMargin, 100)
	setDefault(&l.LightOffset, 20)

	s := &c.Signal
	setDefault(&s.MaxGreenTime, 4)
	setDefault(&s.PriorityThreshold, 4)
	setDefault(&s.PriorityYieldBelow, 3)
	setDefault(&s.FixedPhaseTime, 4)
	setDefault(&s.InitialGreen, "east")

	setDefault(&c.Spawn.Cooldown, 1)
}

func (c *Config) validate() error {
	switch c.Control.Policy {
	case PolicyPriority, PolicyAdaptive, PolicyFixed:
	default:
		return fmt.Errorf("%w: control.policy %q", ErrInvalidConfig, c.Control.Policy)
	}
	if c.Control.Step.Interval < 0 || c.Control.FPS < 0 {
		return fmt.Errorf("%w: control.step.interval and control.fps must be positive", ErrInvalidConfig)
	}
	if c.Control.Step.Total < 0 {
		return fmt.Errorf("%w: control.step.total %d", ErrInvalidConfig, c.Control.Step.Total)
	}
	if c.Spawn.Cooldown < 0 || c.Spawn.RandomRate < 0 {
		return fmt.Errorf("%w: spawn.cooldown and spawn.random_rate must not be negative", ErrInvalidConfig)
	}
	if n := len(c.Spawn.RouteWeights); n != 0 {
		if n != 3 {
			return fmt.Errorf("%w: spawn.route_weights needs 3 values, got %d", ErrInvalidConfig, n)
		}
		sum := 0.
		for _, w := range c.Spawn.RouteWeights {
			if w < 0 {
				return fmt.Errorf("%w: negative spawn.route_weights %v", ErrInvalidConfig, c.Spawn.RouteWeights)
			}
			sum += w
		}
		if sum == 0 {
			return fmt.Errorf("%w: spawn.route_weights are all zero", ErrInvalidConfig)
		}
	}
	if c.Signal.MaxGreenTime < 0 || c.Signal.FixedPhaseTime < 0 || c.Signal.PriorityThreshold < 0 {
		return fmt.Errorf("%w: signal timings must not be negative", ErrInvalidConfig)
	}
	return nil
}

// setDefault 零值时写入默认值
func setDefault[T comparable](p *T, v T) {
	var zero T
	if *p == zero {
		*p = v
	}
}
