package task

// Stats 运行统计
type Stats struct {
	Steps           int32   `yaml:"steps"`
	T               float64 `yaml:"t"`
	Vehicles        int     `yaml:"vehicles"`          // 当前车辆数
	Spawned         int     `yaml:"spawned"`           // 成功生成的车辆数
	Rejected        int     `yaml:"rejected"`          // 被拒绝的生成请求数
	Despawned       int     `yaml:"despawned"`         // 驶离画布的车辆数
	Switches        int     `yaml:"switches"`          // 绿灯方向切换次数
	PeakQueue       [4]int  `yaml:"peak_queue,flow"`   // 各进口道最大排队车辆数（北南东西）
	MeanTransitTime float64 `yaml:"mean_transit_time"` // 平均通行时间（秒）
}

// Stats 当前运行统计
func (ctx *Context) Stats() Stats {
	vs := ctx.vehicleManager.Stats()
	return Stats{
		Steps:           ctx.clock.InternalStep,
		T:               ctx.clock.Time(),
		Vehicles:        ctx.vehicleManager.Len(),
		Spawned:         vs.Spawned,
		Rejected:        vs.Rejected,
		Despawned:       vs.Despawned,
		Switches:        ctx.junction.Switches(),
		PeakQueue:       ctx.junction.Peak(),
		MeanTransitTime: vs.MeanTransitTime(),
	}
}
