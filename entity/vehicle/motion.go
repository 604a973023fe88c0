package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// pose 推进开始前的车辆快照
type pose struct {
	index     int
	position  entity.Point
	direction entity.Approach
}

// Update 更新阶段，所有车辆推进一步
// 参数：signal-信号灯状态
// 算法说明：
// 1. 先记录全部车辆的位置与朝向快照，跟车与路口占用判断都基于快照
// 2. 按生成顺序逐车处理：超出边界的标记移除；需要跟车、红灯停车或等待路口清空的本步不动
// 3. 其余车辆依次判断是否驶过路口、是否转弯，然后沿当前朝向前进
// 4. 移除在Prepare中统一执行，不影响本次遍历
func (m *Manager) Update(signal entity.ISignal) {
	vehicles := m.vehicles.Data()
	snapshot := lo.Map(vehicles, func(v *Vehicle, i int) pose {
		return pose{index: i, position: v.position, direction: v.direction}
	})
	byDirection := lo.GroupBy(snapshot, func(p pose) entity.Approach {
		return p.direction
	})
	guard := m.ctx.RuntimeConfig().GuardIntersection()
	now := m.ctx.Clock().Time()

	for i, v := range vehicles {
		if m.layout.OffCanvas(v.position) {
			m.vehicles.Remove(v)
			m.stats.Despawned++
			m.stats.TransitTime += now - v.spawnedAt
			log.Tracef("t=%.2f: vehicle %d left at %v", now, v.id, v.position)
			continue
		}
		if m.followsLeader(i, v, byDirection[v.direction]) {
			continue
		}
		light := signal.LightState(v.direction)
		atStopLine := m.layout.AtStopLine(v.direction, v.position)
		if !v.passed && light != entity.Green && atStopLine {
			continue
		}
		if guard && light == entity.Green && atStopLine && m.crossTraffic(i, v.direction, snapshot) {
			continue
		}
		m.move(v)
	}
}

// followsLeader 同朝向快照中是否有前车距离过近
func (m *Manager) followsLeader(i int, v *Vehicle, sameDirection []pose) bool {
	return lo.ContainsBy(sameDirection, func(o pose) bool {
		return o.index != i && m.layout.Follows(v.direction, v.position, o.position)
	})
}

// crossTraffic 快照中是否有其他朝向的车辆占用路口
func (m *Manager) crossTraffic(i int, direction entity.Approach, snapshot []pose) bool {
	return lo.ContainsBy(snapshot, func(o pose) bool {
		return o.index != i && o.direction != direction && m.layout.InIntersection(o.position)
	})
}

// move 驶过判定、转弯与前进
func (m *Manager) move(v *Vehicle) {
	if !v.passed && m.layout.HasPassed(v.direction, v.route, v.position) {
		v.passed = true
	}
	if v.passed && !v.turned {
		if t, ok := m.layout.Turn(v.direction, v.route); ok && m.layout.TurnTriggered(v.direction, t, v.position) {
			log.Tracef("vehicle %d turns %v -> %v at %v", v.id, v.direction, t.To, v.position)
			v.direction = t.To
			v.position = t.Snap
			v.turned = true
		}
	}
	v.position = m.layout.Advance(v.direction, v.position)
}
