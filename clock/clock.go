package clock

import (
	"fmt"
	"sync"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的逻辑时间推进，一个step即一次tick
// 说明：维护当前仿真时间、步数等信息，提供时间格式化和RPC服务。
// 暂停时时钟照常推进，生成冷却与绿灯计时均基于逻辑时间
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)，END<=START表示不限

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数

	mtx sync.RWMutex // 保护RPC协程读取T
}

// New 根据配置创建新的时钟实例
// 功能：根据控制步配置初始化时钟信息
// 参数：stepConfig-控制步配置，包含时间间隔、起始步与总步数
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start,
	}
	if stepConfig.Total > 0 {
		c.END_STEP = stepConfig.Start + stepConfig.Total
	}
	c.Init()
	return c
}

// Init 重置时钟到起始步
func (c *Clock) Init() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Tick 推进一步
// 功能：增加内部步数并重新计算当前时间
func (c *Clock) Tick() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Time 线程安全地读取当前时间（秒）
func (c *Clock) Time() float64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.T
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.END_STEP > c.START_STEP && c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串（HH:MM:SS.ss）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 功能：将当前时间分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	t := c.Time()
	hour := int(t) / 3600
	minute := int(t) % 3600 / 60
	second := t - float64(hour*3600+minute*60)
	return hour, minute, second
}

// Epsilon 时间比较容差（秒）
// 说明：T由步数乘DT得到，两个时刻之差可能比整数个步长略小，例如DT=1/60时60步之差可能为0.9999999999999
const Epsilon = 1e-9

// AtLeast 经过时长elapsed是否达到d，允许Epsilon的浮点误差
func AtLeast(elapsed, d float64) bool {
	return elapsed >= d-Epsilon
}
