package vehicle

import (
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// Vehicle 车辆
// 功能：在进口道生成，按信号灯与前车排队，驶过路口（可能转弯）后驶离画布
// 说明：route与origin在生成时确定且不再改变；direction至多改变一次
type Vehicle struct {
	container.IncrementalItemBase

	id        int32
	position  entity.Point    // 包围盒左上角
	direction entity.Approach // 当前行驶朝向
	origin    entity.Approach // 生成时的进口道
	route     entity.Route
	passed    bool    // 是否已驶过路口
	turned    bool    // 是否已完成转弯
	spawnedAt float64 // 生成时的仿真时间（秒）
}

func newVehicle(id int32, a entity.Approach, r entity.Route, p entity.Point, now float64) *Vehicle {
	return &Vehicle{
		id:        id,
		position:  p,
		direction: a,
		origin:    a,
		route:     r,
		spawnedAt: now,
	}
}

func (v *Vehicle) ID() int32 {
	return v.id
}

func (v *Vehicle) Position() entity.Point {
	return v.position
}

func (v *Vehicle) Direction() entity.Approach {
	return v.direction
}

func (v *Vehicle) Origin() entity.Approach {
	return v.origin
}

func (v *Vehicle) Route() entity.Route {
	return v.route
}

func (v *Vehicle) Passed() bool {
	return v.passed
}

func (v *Vehicle) Turned() bool {
	return v.turned
}

// SpawnedAt 生成时的仿真时间
func (v *Vehicle) SpawnedAt() float64 {
	return v.spawnedAt
}

// Pose 只读视图
func (v *Vehicle) Pose() entity.VehiclePose {
	return entity.VehiclePose{
		ID:        v.id,
		Position:  v.position,
		Direction: v.direction,
		Origin:    v.origin,
		Route:     v.route,
	}
}
