// 路口几何布局
// 所有停车线、生成点、转弯表均由画布、道路与车辆尺寸推导，构造后只读
package layout

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

var (
	ErrInvalidLayout = errors.New("invalid layout")
)

// heading 行驶朝向：沿哪条坐标轴、朝哪个方向运动
type heading struct {
	axis   entity.Axis
	sign   int // +1坐标递增，-1坐标递减
	length int // 沿行驶方向的车长
}

// Rect 轴对齐矩形
type Rect struct {
	Left, Top, Right, Bottom int
}

// ContainsStrict 点是否严格位于矩形内部
func (r Rect) ContainsStrict(x, y int) bool {
	return x > r.Left && x < r.Right && y > r.Top && y < r.Bottom
}

// Turn 转弯表的一项
type Turn struct {
	Trigger int             // 行驶方向上到达该坐标时转弯
	To      entity.Approach // 转弯后的朝向
	Snap    entity.Point    // 转弯后对齐到的车道位置
}

// Layout 路口几何布局
type Layout struct {
	Width, Height    int
	RoadWidth        int
	VehicleWidth     int
	VehicleHeight    int
	Speed            int
	MinDistance      int
	StopTolerance    int
	DespawnMargin    int
	CenterX, CenterY int
	Intersection     Rect

	headings       [4]heading
	spawns         [4]entity.Point
	spawnClearance [4]int
	stopLines      [4]int
	stopBands      [4]int
	passed         [4][3]int
	turns          [4][3]*Turn
	lights         [4]entity.Point
}

// New 根据几何配置创建布局
// 功能：校验尺寸并推导全部派生常量
// 参数：c-几何配置（应已补全默认值）
// 返回：布局实例，尺寸非法时返回ErrInvalidLayout
// 算法说明：
// 1. 以画布中心(cx, cy)为路口中心，half=道路宽/2，q=道路宽/4
// 2. 每个进口道占用道路右侧车道，车道中心距道路中线q
// 3. 停车线、停车带、驶过阈值与转弯触发值都表示为行驶轴上的坐标
func New(c config.Layout) (*Layout, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	w, h := c.VehicleWidth, c.VehicleHeight
	cx, cy := c.WindowWidth/2, c.WindowHeight/2
	half, q := c.RoadWidth/2, c.RoadWidth/4
	t := c.TurnOffset
	tol := c.StopTolerance

	l := &Layout{
		Width:         c.WindowWidth,
		Height:        c.WindowHeight,
		RoadWidth:     c.RoadWidth,
		VehicleWidth:  w,
		VehicleHeight: h,
		Speed:         c.VehicleSpeed,
		MinDistance:   c.MinVehicleDistance,
		StopTolerance: tol,
		DespawnMargin: c.DespawnMargin,
		CenterX:       cx,
		CenterY:       cy,
		Intersection: Rect{
			Left: cx - half, Right: cx + half,
			Top: cy - half, Bottom: cy + half,
		},
	}

	// 东西向车辆沿行驶方向的长度取车宽
	l.headings = [4]heading{
		entity.North: {axis: entity.AxisY, sign: -1, length: h},
		entity.South: {axis: entity.AxisY, sign: +1, length: h},
		entity.East:  {axis: entity.AxisX, sign: +1, length: w},
		entity.West:  {axis: entity.AxisX, sign: -1, length: w},
	}

	// 车道中心
	westLaneX := cx - q - w/2  // 北行车道（道路左半侧）
	eastLaneX := cx + q - w/2  // 南行车道
	northLaneY := cy - q - h/2 // 东行车道（道路上半侧）
	southLaneY := cy + q - h/2 // 西行车道

	l.spawns = [4]entity.Point{
		entity.North: {X: westLaneX, Y: c.WindowHeight},
		entity.South: {X: eastLaneX, Y: -h},
		entity.East:  {X: -w, Y: northLaneY},
		entity.West:  {X: c.WindowWidth, Y: southLaneY},
	}
	l.spawnClearance = [4]int{
		entity.North: c.WindowHeight - h - c.MinVehicleDistance,
		entity.South: c.MinVehicleDistance,
		entity.East:  c.MinVehicleDistance,
		entity.West:  c.WindowWidth - w - c.MinVehicleDistance,
	}

	// 排队统计用的停车线
	l.stopLines = [4]int{
		entity.North: cy + half - tol,
		entity.South: cy - half,
		entity.East:  cx - half - tol,
		entity.West:  cx + half - tol,
	}
	// 红灯拦停的停车带下界，带宽为tol
	l.stopBands = [4]int{
		entity.North: cy + half - tol,
		entity.South: cy - half - h,
		entity.East:  cx - half - tol - w,
		entity.West:  cx + half - tol,
	}

	l.passed = [4][3]int{
		entity.North: {entity.Straight: cy, entity.Left: cy, entity.Right: cy - t},
		entity.South: {entity.Straight: cy - t, entity.Left: cy - t, entity.Right: cy - t},
		entity.East:  {entity.Straight: cx - t, entity.Left: cx - t, entity.Right: cx},
		entity.West:  {entity.Straight: cx - t, entity.Left: cx, entity.Right: cx - t},
	}

	// 南行左转的触发值以水平中心计算
	eastEntry := cx - half - 2*tol - w
	l.turns = [4][3]*Turn{
		entity.North: {
			entity.Left:  {Trigger: cy, To: entity.West, Snap: entity.Point{X: westLaneX, Y: southLaneY}},
			entity.Right: {Trigger: cy, To: entity.East, Snap: entity.Point{X: westLaneX, Y: northLaneY}},
		},
		entity.South: {
			entity.Left:  {Trigger: eastEntry, To: entity.East, Snap: entity.Point{X: eastLaneX, Y: northLaneY}},
			entity.Right: {Trigger: cy, To: entity.West, Snap: entity.Point{X: eastLaneX, Y: southLaneY}},
		},
		entity.East: {
			entity.Left:  {Trigger: eastEntry, To: entity.North, Snap: entity.Point{X: westLaneX, Y: northLaneY}},
			entity.Right: {Trigger: eastEntry, To: entity.South, Snap: entity.Point{X: eastLaneX, Y: northLaneY}},
		},
		entity.West: {
			entity.Left:  {Trigger: cx, To: entity.South, Snap: entity.Point{X: eastLaneX, Y: southLaneY}},
			entity.Right: {Trigger: cx, To: entity.North, Snap: entity.Point{X: westLaneX, Y: southLaneY}},
		},
	}

	o := c.LightOffset
	l.lights = [4]entity.Point{
		entity.North: {X: cx - half - o, Y: cy + half},
		entity.South: {X: cx + half, Y: cy - half - o},
		entity.East:  {X: cx - half - o, Y: cy - half - o},
		entity.West:  {X: cx + half, Y: cy + half},
	}
	return l, nil
}

func validate(c config.Layout) error {
	fields := []struct {
		name string
		v    int
	}{
		{"window_width", c.WindowWidth},
		{"window_height", c.WindowHeight},
		{"road_width", c.RoadWidth},
		{"vehicle_width", c.VehicleWidth},
		{"vehicle_height", c.VehicleHeight},
		{"vehicle_speed", c.VehicleSpeed},
		{"min_vehicle_distance", c.MinVehicleDistance},
	}
	for _, f := range fields {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidLayout, f.name, f.v)
		}
	}
	if c.TurnOffset < 0 || c.StopTolerance < 0 || c.DespawnMargin < 0 || c.LightOffset < 0 {
		return fmt.Errorf("%w: offsets must not be negative", ErrInvalidLayout)
	}
	if c.RoadWidth >= c.WindowWidth || c.RoadWidth >= c.WindowHeight {
		return fmt.Errorf("%w: road_width %d does not fit the %dx%d canvas",
			ErrInvalidLayout, c.RoadWidth, c.WindowWidth, c.WindowHeight)
	}
	// 每步移动距离不超过停车带宽度，车辆才不会越过停车带
	if c.VehicleSpeed > c.StopTolerance+1 {
		return fmt.Errorf("%w: vehicle_speed %d exceeds stop band width %d",
			ErrInvalidLayout, c.VehicleSpeed, c.StopTolerance+1)
	}
	return nil
}

// progress 点沿朝向a相对坐标v的前进量，>0表示已越过v
func (l *Layout) progress(a entity.Approach, p entity.Point, v int) int {
	hd := l.headings[a]
	return (p.Get(hd.axis) - v) * hd.sign
}

// SpawnPoint 进口道的画布外生成点
func (l *Layout) SpawnPoint(a entity.Approach) entity.Point {
	return l.spawns[a]
}

// BlocksSpawn 朝向a、位于p的车辆是否离生成边缘过近，导致a上不能生成新车
func (l *Layout) BlocksSpawn(a entity.Approach, p entity.Point) bool {
	return l.progress(a, p, l.spawnClearance[a]) < 0
}

// Waiting 位于p的车辆是否处于进口道a停车线之前（含停车线）
func (l *Layout) Waiting(a entity.Approach, p entity.Point) bool {
	return l.progress(a, p, l.stopLines[a]) <= 0
}

// AtStopLine 位于p的车辆是否处于进口道a的停车带内
func (l *Layout) AtStopLine(a entity.Approach, p entity.Point) bool {
	v := p.Get(l.headings[a].axis)
	lo := l.stopBands[a]
	return v >= lo && v <= lo+l.StopTolerance
}

// InIntersection 车辆包围盒中心是否位于路口范围内
func (l *Layout) InIntersection(p entity.Point) bool {
	return l.Intersection.ContainsStrict(p.X+l.VehicleWidth/2, p.Y+l.VehicleHeight/2)
}

// OffCanvas 是否已超出画布外的移除边界
func (l *Layout) OffCanvas(p entity.Point) bool {
	m := l.DespawnMargin
	return p.X < -m || p.X > l.Width+m || p.Y < -m || p.Y > l.Height+m
}

// HasPassed 朝向a、路线r的车辆在p处是否已驶过路口
func (l *Layout) HasPassed(a entity.Approach, r entity.Route, p entity.Point) bool {
	return l.progress(a, p, l.passed[a][r]) >= 0
}

// Turn 查询转弯表，直行没有表项
func (l *Layout) Turn(a entity.Approach, r entity.Route) (Turn, bool) {
	t := l.turns[a][r]
	if t == nil {
		return Turn{}, false
	}
	return *t, true
}

// TurnTriggered 朝向a的车辆在p处是否到达转弯触发位置
func (l *Layout) TurnTriggered(a entity.Approach, t Turn, p entity.Point) bool {
	return l.progress(a, p, t.Trigger) >= 0
}

// Advance 沿朝向a前进一步
func (l *Layout) Advance(a entity.Approach, p entity.Point) entity.Point {
	hd := l.headings[a]
	return p.With(hd.axis, p.Get(hd.axis)+hd.sign*l.Speed)
}

// Follows 同朝向a的两车中，位于self的车是否因前方other处的车辆需要停车
// 算法说明：
// 1. 两车必须处于同一车道（横向坐标相等）
// 2. other须在self行驶方向的前方
// 3. 车头间距减去车长小于最小跟车距离时需要停车
func (l *Layout) Follows(a entity.Approach, self, other entity.Point) bool {
	hd := l.headings[a]
	cross := hd.axis.Cross()
	if self.Get(cross) != other.Get(cross) {
		return false
	}
	ahead := (other.Get(hd.axis) - self.Get(hd.axis)) * hd.sign
	return ahead > 0 && ahead-hd.length < l.MinDistance
}

// Gap 同车道两车沿朝向a的净间距，other不在前方时ok为false
func (l *Layout) Gap(a entity.Approach, self, other entity.Point) (gap int, ok bool) {
	hd := l.headings[a]
	cross := hd.axis.Cross()
	if self.Get(cross) != other.Get(cross) {
		return 0, false
	}
	ahead := (other.Get(hd.axis) - self.Get(hd.axis)) * hd.sign
	if ahead <= 0 {
		return 0, false
	}
	return ahead - hd.length, true
}

// LightPosition 信号灯的渲染位置
func (l *Layout) LightPosition(a entity.Approach) entity.Point {
	return l.lights[a]
}
