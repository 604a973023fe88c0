package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// Spawn 在进口道a生成一辆车
// 功能：按冷却时间与生成点净空限制生成车辆，路线由随机数引擎决定
// 参数：a-进口道
// 返回：是否成功生成，被拒绝时静默返回false
// 算法说明：
// 1. 距上次成功生成（任意进口道）不足冷却时间时拒绝
// 2. 同进口道有车辆距生成边缘过近时拒绝
// 3. 抽取路线，放置在生成点，更新上次生成时间
// 说明：生成不会发生在车辆推进过程中，新车立即加入集合
func (m *Manager) Spawn(a entity.Approach) bool {
	now := m.ctx.Clock().Time()
	cooldown := m.ctx.RuntimeConfig().All.Spawn.Cooldown
	if m.hasSpawned && !clock.AtLeast(now-m.lastSpawn, cooldown) {
		m.stats.Rejected++
		log.Tracef("t=%.2f: spawn %v rejected, cooling down", now, a)
		return false
	}
	blocked := lo.ContainsBy(m.vehicles.Data(), func(v *Vehicle) bool {
		return v.direction == a && m.layout.BlocksSpawn(a, v.position)
	})
	if blocked {
		m.stats.Rejected++
		log.Tracef("t=%.2f: spawn %v rejected, entry occupied", now, a)
		return false
	}
	v := newVehicle(m.nextID, a, m.route(), m.layout.SpawnPoint(a), now)
	m.nextID++
	m.vehicles.Add(v)
	m.vehicles.Prepare()
	m.hasSpawned = true
	m.lastSpawn = now
	m.stats.Spawned++
	log.Debugf("t=%.2f: spawn vehicle %d on %v, route %v", now, v.id, a, v.route)
	return true
}

// SpawnRandom 在随机进口道生成一辆车
func (m *Manager) SpawnRandom() bool {
	return m.Spawn(entity.Approaches[m.generator.Intn(len(entity.Approaches))])
}

// route 抽取路线：未配置权重时均匀分布
func (m *Manager) route() entity.Route {
	weights := m.ctx.RuntimeConfig().All.Spawn.RouteWeights
	if len(weights) == 0 {
		return entity.Routes[m.generator.Intn(len(entity.Routes))]
	}
	return entity.Routes[m.generator.DiscreteDistribution(weights)]
}
