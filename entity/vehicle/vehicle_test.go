package vehicle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/layout"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

type testContext struct {
	clock *clock.Clock
	rc    *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                  { return c.clock }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.rc }

// lights 固定的信号灯状态
type lights [4]entity.LightState

func (l lights) LightState(a entity.Approach) entity.LightState { return l[a] }

var (
	allRed   = lights{entity.Red, entity.Red, entity.Red, entity.Red}
	allGreen = lights{entity.Green, entity.Green, entity.Green, entity.Green}
)

type fixture struct {
	ctx     *testContext
	layout  *layout.Layout
	manager *vehicle.Manager
}

func newFixture(t *testing.T, mutate func(c *config.Config)) *fixture {
	t.Helper()
	c := config.Default()
	c.Control.Step.Interval = 0.25
	c.Spawn.Seed = 7
	if mutate != nil {
		mutate(&c)
	}
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	l, err := layout.New(rc.All.Layout)
	require.NoError(t, err)
	ctx := &testContext{clock: clock.New(rc.C.Step), rc: rc}
	return &fixture{
		ctx:     ctx,
		layout:  l,
		manager: vehicle.NewManager(ctx, l, randengine.New(rc.All.Spawn.Seed)),
	}
}

// step 推进一个tick
func (f *fixture) step(signal entity.ISignal) {
	f.ctx.clock.Tick()
	f.manager.Update(signal)
	f.manager.Prepare()
}

func (f *fixture) find(id int32) (entity.IVehicle, bool) {
	for _, v := range f.manager.Vehicles() {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

func routes(r entity.Route) func(c *config.Config) {
	return func(c *config.Config) {
		c.Spawn.RouteWeights = []float64{0, 0, 0}
		c.Spawn.RouteWeights[r] = 1
	}
}

func TestSpawnPosition(t *testing.T) {
	f := newFixture(t, nil)
	expected := map[entity.Approach]entity.Point{
		entity.North: {X: 421, Y: 800},
		entity.South: {X: 455, Y: -35},
		entity.East:  {X: -25, Y: 366},
		entity.West:  {X: 900, Y: 400},
	}
	for i, a := range entity.Approaches {
		require.True(t, f.manager.Spawn(a), a.String())
		v := f.manager.Vehicles()[i]
		assert.Equal(t, int32(i), v.ID())
		assert.Equal(t, expected[a], v.Position())
		assert.Equal(t, a, v.Direction())
		assert.Equal(t, a, v.Origin())
		assert.False(t, v.Passed())
		assert.False(t, v.Turned())
		for range 4 {
			f.ctx.clock.Tick()
		}
	}
	assert.Equal(t, 4, f.manager.Stats().Spawned)
}

func TestSpawnCooldown(t *testing.T) {
	f := newFixture(t, nil)
	assert.True(t, f.manager.Spawn(entity.North))
	assert.False(t, f.manager.Spawn(entity.South))
	for range 3 {
		f.ctx.clock.Tick()
	}
	assert.False(t, f.manager.Spawn(entity.East))
	f.ctx.clock.Tick()
	assert.True(t, f.manager.Spawn(entity.East))
	assert.Equal(t, 2, f.manager.Len())
	assert.Equal(t, 2, f.manager.Stats().Rejected)
}

func TestSpawnCooldownDefaultInterval(t *testing.T) {
	// DT=1/60时相隔60步的两个时刻之差可能略小于1秒
	for k := range int32(400) {
		f := newFixture(t, func(c *config.Config) {
			c.Control.Step.Interval = 1.0 / 60
			c.Control.Step.Start = k
		})
		require.True(t, f.manager.Spawn(entity.North))
		for range 59 {
			f.ctx.clock.Tick()
		}
		require.False(t, f.manager.Spawn(entity.East), "start step %d", k)
		f.ctx.clock.Tick()
		require.True(t, f.manager.Spawn(entity.East), "start step %d", k)
	}
}

func TestInitialCooldown(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Control.Step.Start = 10
		c.Spawn.InitialCooldown = true
	})
	assert.False(t, f.manager.Spawn(entity.North))
	for range 3 {
		f.ctx.clock.Tick()
	}
	assert.False(t, f.manager.Spawn(entity.North))
	f.ctx.clock.Tick()
	assert.True(t, f.manager.Spawn(entity.North))
	assert.Equal(t, 2, f.manager.Stats().Rejected)

	// 默认不处于冷却
	f = newFixture(t, nil)
	assert.True(t, f.manager.Spawn(entity.North))
}

func TestSpawnClearance(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.manager.Spawn(entity.North))
	for range 4 {
		f.ctx.clock.Tick()
	}
	// 北向车辆仍在生成边缘附近
	assert.False(t, f.manager.Spawn(entity.North))
	assert.True(t, f.manager.Spawn(entity.South))
}

func TestSpawnDeterministic(t *testing.T) {
	run := func() []entity.VehiclePose {
		f := newFixture(t, nil)
		for range 40 {
			f.manager.SpawnRandom()
			f.step(allGreen)
		}
		return f.manager.Poses()
	}
	first := run()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, run())
}

func TestRouteWeights(t *testing.T) {
	f := newFixture(t, routes(entity.Right))
	for _, a := range entity.Approaches {
		require.True(t, f.manager.Spawn(a))
		for range 4 {
			f.ctx.clock.Tick()
		}
	}
	for _, v := range f.manager.Vehicles() {
		assert.Equal(t, entity.Right, v.Route())
	}
}

func TestStopAtRedLight(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.manager.Spawn(entity.North))
	for range 300 {
		f.step(allRed)
	}
	v := f.manager.Vehicles()[0]
	assert.Equal(t, entity.Point{X: 421, Y: 434}, v.Position())
	assert.False(t, v.Passed())
}

func TestQueueSeparation(t *testing.T) {
	f := newFixture(t, nil)
	d := f.ctx.rc.All.Layout.MinVehicleDistance
	speed := f.ctx.rc.All.Layout.VehicleSpeed
	for range 2000 {
		f.manager.Spawn(entity.North)
		f.step(allRed)
		vs := f.manager.Vehicles()
		for i, a := range vs {
			for j, b := range vs {
				if i == j {
					continue
				}
				if gap, ok := f.layout.Gap(entity.North, a.Position(), b.Position()); ok {
					assert.GreaterOrEqual(t, gap, d-speed)
				}
			}
		}
	}
	assert.Greater(t, f.manager.Len(), 3)
}

func TestNorthLeftTurn(t *testing.T) {
	f := newFixture(t, routes(entity.Left))
	require.True(t, f.manager.Spawn(entity.North))
	id := f.manager.Vehicles()[0].ID()
	turns := 0
	last := entity.North
	for range 300 {
		f.step(allGreen)
		v, ok := f.find(id)
		require.True(t, ok)
		if v.Direction() != last {
			turns++
			last = v.Direction()
			assert.Equal(t, entity.West, v.Direction())
			assert.True(t, v.Passed())
			assert.True(t, v.Turned())
			// 对齐到西行车道后前进一步
			assert.Equal(t, entity.Point{X: 419, Y: 400}, v.Position())
		}
	}
	assert.Equal(t, 1, turns)
}

func TestDespawn(t *testing.T) {
	f := newFixture(t, routes(entity.Straight))
	require.True(t, f.manager.Spawn(entity.North))
	for range 460 {
		f.step(allGreen)
	}
	assert.Equal(t, 0, f.manager.Len())
	stats := f.manager.Stats()
	assert.Equal(t, 1, stats.Despawned)
	assert.Greater(t, stats.MeanTransitTime(), 100.0)
}

func TestIntersectionGuard(t *testing.T) {
	run := func(guard bool) entity.Point {
		f := newFixture(t, func(c *config.Config) {
			c.Control.IntersectionGuard = &guard
			c.Spawn.RouteWeights = []float64{1, 0, 0}
		})
		require.True(t, f.manager.Spawn(entity.East))
		for range 40 {
			f.step(allGreen)
		}
		require.True(t, f.manager.Spawn(entity.North))
		for range 190 {
			f.step(allGreen)
		}
		v, ok := f.find(1)
		require.True(t, ok)
		return v.Position()
	}
	// 东向车辆占用路口时，北向车辆在停车带等待
	assert.Equal(t, entity.Point{X: 421, Y: 434}, run(true))
	assert.Equal(t, entity.Point{X: 421, Y: 420}, run(false))
}

func TestRandomTrafficInvariants(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Spawn.Cooldown = 0.5
	})
	type record struct {
		route      entity.Route
		direction  entity.Approach
		dirChanges int
		turned     bool
	}
	records := map[int32]*record{}
	for tick := range 4000 {
		signal := allRed
		if tick/150%2 == 1 {
			signal = allGreen
		}
		f.manager.SpawnRandom()
		held := map[int32]entity.Point{}
		for _, v := range f.manager.Vehicles() {
			if !v.Passed() && signal.LightState(v.Direction()) == entity.Red && f.layout.AtStopLine(v.Direction(), v.Position()) {
				held[v.ID()] = v.Position()
			}
		}
		f.step(signal)
		for _, v := range f.manager.Vehicles() {
			if p, ok := held[v.ID()]; ok {
				assert.Equal(t, p, v.Position(), "vehicle %d moved on red", v.ID())
			}
			r, ok := records[v.ID()]
			if !ok {
				records[v.ID()] = &record{route: v.Route(), direction: v.Origin(), turned: v.Turned()}
				r = records[v.ID()]
			}
			assert.Equal(t, r.route, v.Route())
			if v.Direction() != r.direction {
				r.dirChanges++
				r.direction = v.Direction()
			}
			assert.LessOrEqual(t, r.dirChanges, 1)
			if r.turned {
				assert.True(t, v.Turned())
			}
			r.turned = v.Turned()
			if v.Turned() {
				assert.True(t, v.Passed())
			}
		}
	}
	assert.Greater(t, f.manager.Stats().Despawned, 0)
}
