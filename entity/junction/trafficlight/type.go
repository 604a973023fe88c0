package trafficlight

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

var (
	ErrUnknownPolicy = errors.New("unknown traffic light policy")
)

// ITrafficLight 信控策略接口
type ITrafficLight interface {
	Name() string                      // 策略名
	Update(counts [4]int, now float64) // 更新阶段：根据各进口道排队车辆数更新信号灯
	Lights() *Lights                   // 受控的四个信号灯
}

// New 根据配置创建信控策略
// 功能：按control.policy选择两相位固定配时、单进口道自适应或带优先放行的自适应策略
// 参数：policy-策略名，c-信控参数，lights-受控信号灯
// 返回：信控策略，策略名无法识别时返回ErrUnknownPolicy
func New(policy string, c config.Signal, lights *Lights) (ITrafficLight, error) {
	switch policy {
	case config.PolicyPriority:
		return NewPriorityTrafficLight(lights, c), nil
	case config.PolicyAdaptive:
		return NewAdaptiveTrafficLight(lights, c), nil
	case config.PolicyFixed:
		return NewFixedTrafficLight(lights, c), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}
