package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/layout"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

// Stats 车辆统计
type Stats struct {
	Spawned     int     `yaml:"spawned"`      // 成功生成的车辆数
	Rejected    int     `yaml:"rejected"`     // 被拒绝的生成请求数
	Despawned   int     `yaml:"despawned"`    // 驶离画布的车辆数
	TransitTime float64 `yaml:"transit_time"` // 已驶离车辆的总通行时间（秒）
}

// MeanTransitTime 已驶离车辆的平均通行时间，没有车辆驶离时为0
func (s Stats) MeanTransitTime() float64 {
	if s.Despawned == 0 {
		return 0
	}
	return s.TransitTime / float64(s.Despawned)
}

// Manager 车辆管理器
// 功能：拥有全部车辆，负责生成、逐步推进与移除
// 说明：车辆按生成顺序保存，增删在Prepare时统一执行
type Manager struct {
	ctx    entity.ITaskContext
	layout *layout.Layout

	vehicles  *container.IncrementalArray[*Vehicle]
	generator *randengine.Engine // 只用于车辆生成

	hasSpawned bool    // 是否已成功生成过车辆
	lastSpawn  float64 // 上次成功生成的仿真时间
	nextID     int32
	stats      Stats
}

// NewManager 创建车辆管理器
// 参数：ctx-任务上下文，l-路口布局，generator-生成器独占的随机数引擎
// 说明：配置initial_cooldown时把创建时刻视为上次生成时间
func NewManager(ctx entity.ITaskContext, l *layout.Layout, generator *randengine.Engine) *Manager {
	m := &Manager{
		ctx:       ctx,
		layout:    l,
		vehicles:  container.NewIncrementalArray[*Vehicle](),
		generator: generator,
	}
	if ctx.RuntimeConfig().All.Spawn.InitialCooldown {
		m.hasSpawned = true
		m.lastSpawn = ctx.Clock().Time()
	}
	return m
}

// Prepare 准备阶段，执行延迟的增删
func (m *Manager) Prepare() {
	m.vehicles.Prepare()
}

// Vehicles 全部车辆，按生成顺序
func (m *Manager) Vehicles() []entity.IVehicle {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) entity.IVehicle {
		return v
	})
}

// Poses 全部车辆的只读视图，按生成顺序
func (m *Manager) Poses() []entity.VehiclePose {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) entity.VehiclePose {
		return v.Pose()
	})
}

// Len 当前车辆数
func (m *Manager) Len() int {
	return m.vehicles.Len()
}

// Stats 车辆统计
func (m *Manager) Stats() Stats {
	return m.stats
}
