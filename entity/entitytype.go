package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownApproach = errors.New("unknown approach")
)

// Approach 路口的四个进口道
// 功能：标识驶入路口的道路，同时也表示车辆当前的行驶朝向
// 说明：枚举顺序North→South→East→West是全系统的固定遍历顺序，所有平局都按此顺序决出
type Approach int32

const (
	North Approach = iota // 自下而上行驶（y递减）
	South                 // 自上而下行驶（y递增）
	East                  // 自左向右行驶（x递增）
	West                  // 自右向左行驶（x递减）
)

// Approaches 按枚举顺序排列的全部进口道
var Approaches = [4]Approach{North, South, East, West}

func (a Approach) String() string {
	switch a {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("approach(%d)", int32(a))
}

// approachAliases 进口道名称与方向键别名
// 方向键映射与手动生成车辆的按键一致：上=North，下=South，右=East，左=West
var approachAliases = map[string]Approach{
	"n": North, "north": North, "up": North,
	"s": South, "south": South, "down": South,
	"e": East, "east": East, "right": East,
	"w": West, "west": West, "left": West,
}

// ParseApproach 解析进口道名称
// 功能：将配置文件或输入命令中的字符串转换为Approach，大小写不敏感
// 参数：s-进口道名称或别名
// 返回：对应的Approach，无法识别时返回ErrUnknownApproach
func ParseApproach(s string) (Approach, error) {
	if a, ok := approachAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return North, fmt.Errorf("%w: %q", ErrUnknownApproach, s)
}

// Route 车辆在路口的行驶路线，生成时确定且不再改变
type Route int32

const (
	Straight Route = iota // 直行
	Left                  // 左转
	Right                 // 右转
)

// Routes 按枚举顺序排列的全部路线
var Routes = [3]Route{Straight, Left, Right}

func (r Route) String() string {
	switch r {
	case Straight:
		return "straight"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("route(%d)", int32(r))
}

// LightState 信号灯状态
type LightState int32

const (
	Red LightState = iota
	Green
)

func (s LightState) String() string {
	if s == Green {
		return "green"
	}
	return "red"
}

// Point 画布上的整数坐标点（车辆包围盒左上角）
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Axis 坐标轴
type Axis int32

const (
	AxisX Axis = iota
	AxisY
)

// Get 取点在指定坐标轴上的分量
func (p Point) Get(axis Axis) int {
	if axis == AxisX {
		return p.X
	}
	return p.Y
}

// With 返回指定坐标轴分量被替换后的点
func (p Point) With(axis Axis, v int) Point {
	if axis == AxisX {
		p.X = v
	} else {
		p.Y = v
	}
	return p
}

// Cross 返回与axis垂直的坐标轴
func (axis Axis) Cross() Axis {
	if axis == AxisX {
		return AxisY
	}
	return AxisX
}
