package entity

// 依赖倒置：junction与vehicle互相只通过这里的接口访问对方

// IVehicle entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32
	Position() Point     // 包围盒左上角
	Direction() Approach // 当前行驶朝向（转弯后改变）
	Origin() Approach    // 生成时的进口道
	Route() Route
	Passed() bool // 是否已驶过路口
	Turned() bool // 是否已完成转弯
}

// ISignal 给车辆提供的信号灯读取接口
type ISignal interface {
	LightState(a Approach) LightState
}

// IJunction entity/junction/junction.go的依赖倒置
type IJunction interface {
	ISignal

	Update(vehicles []IVehicle) // 更新阶段：统计排队车辆并更新信号灯
	Lights() [4]LightView       // 四个信号灯的只读视图，按Approaches顺序
	Counts() [4]int             // 最近一次统计的各进口道排队车辆数
	Policy() string             // 信控策略名
}

// IVehicleManager entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	Spawn(a Approach) bool // 在指定进口道生成车辆，被拒绝时返回false
	SpawnRandom() bool     // 在随机进口道生成车辆

	Update(signal ISignal) // 更新阶段：推进所有车辆一步
	Prepare()              // 准备阶段：执行延迟的增删

	Vehicles() []IVehicle
	Poses() []VehiclePose
}

// LightView 信号灯只读视图
type LightView struct {
	Direction  Approach
	Position   Point // 仅用于渲染
	State      LightState
	LastChange float64 // 上次状态变化的仿真时间（秒）
}

// VehiclePose 车辆只读视图
type VehiclePose struct {
	ID        int32
	Position  Point
	Direction Approach
	Origin    Approach
	Route     Route
}
