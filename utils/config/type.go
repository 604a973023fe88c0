package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：一个step即一次tick，interval为每个tick对应的逻辑时间
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数，0表示不限
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
// 说明：包含时间控制、帧率、信控策略等核心配置
type Control struct {
	Step              ControlStep `yaml:"step"`
	FPS               float64     `yaml:"fps"`                          // 实时驱动的帧率，0表示不限速
	Policy            string      `yaml:"policy,omitempty"`             // 信控策略：priority|adaptive|fixed
	IntersectionGuard *bool       `yaml:"intersection_guard,omitempty"` // 绿灯时是否等待路口内横向车辆清空
}

// Layout 路口几何配置
// 功能：定义画布、道路与车辆尺寸，所有停车线、生成点等坐标由此推导
type Layout struct {
	WindowWidth        int `yaml:"window_width"`
	WindowHeight       int `yaml:"window_height"`
	RoadWidth          int `yaml:"road_width"`
	VehicleWidth       int `yaml:"vehicle_width"`
	VehicleHeight      int `yaml:"vehicle_height"`
	VehicleSpeed       int `yaml:"vehicle_speed"`        // 每步移动的距离
	MinVehicleDistance int `yaml:"min_vehicle_distance"` // 最小跟车距离
	TurnOffset         int `yaml:"turn_offset"`          // 驶过路口判定的偏移
	StopTolerance      int `yaml:"stop_tolerance"`       // 停车线容差带宽度
	DespawnMargin      int `yaml:"despawn_margin"`       // 画布外多远处移除车辆
	LightOffset        int `yaml:"light_offset"`         // 信号灯相对路口的偏移（仅渲染）
}

// Signal 信控参数
type Signal struct {
	MaxGreenTime       float64 `yaml:"max_green_time"`       // 最长绿灯时间（秒）
	PriorityThreshold  int     `yaml:"priority_threshold"`   // 触发优先放行的排队车辆数
	PriorityYieldBelow int     `yaml:"priority_yield_below"` // 当前绿灯方向排队少于此值时才让行
	FixedPhaseTime     float64 `yaml:"fixed_phase_time"`     // 固定配时每个相位的时长（秒）
	InitialGreen       string  `yaml:"initial_green"`        // 初始绿灯进口道，none表示全红
}

// Spawn 车辆生成配置
type Spawn struct {
	Cooldown        float64   `yaml:"cooldown"`                // 全局生成冷却时间（秒）
	InitialCooldown bool      `yaml:"initial_cooldown"`        // 启动时即处于冷却，首次生成须等待一个冷却时间
	Seed            uint64    `yaml:"seed"`                    // 随机数种子
	RandomRate      float64   `yaml:"random_rate"`             // 自动随机生成请求的频率（次/秒），0表示关闭
	RouteWeights    []float64 `yaml:"route_weights,omitempty"` // 直行、左转、右转的权重，为空表示均匀分布
}

// Output 输出配置
type Output struct {
	RenderInterval int32 `yaml:"render_interval"` // 文本渲染间隔步数，0表示不输出
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：所有字段都可省略，省略时使用默认值
type Config struct {
	Control Control `yaml:"control"` // 模拟过程控制
	Layout  Layout  `yaml:"layout"`  // 路口几何
	Signal  Signal  `yaml:"signal"`  // 信控
	Spawn   Spawn   `yaml:"spawn"`   // 车辆生成
	Output  Output  `yaml:"output"`  // 输出
}
