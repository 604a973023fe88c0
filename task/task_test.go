package task_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

func testConfig() config.Config {
	c := config.Default()
	c.Control.Step.Interval = 0.25
	c.Control.FPS = 0
	return c
}

func newContext(t *testing.T, c config.Config, sink task.RenderSink) *task.Context {
	t.Helper()
	ctx, err := task.NewContext(c, sink)
	require.NoError(t, err)
	return ctx
}

type recordingSink struct {
	snapshots []task.Snapshot
	err       error
}

func (s *recordingSink) Render(snap task.Snapshot) error {
	s.snapshots = append(s.snapshots, snap)
	return s.err
}

func TestInvalidConfig(t *testing.T) {
	c := testConfig()
	c.Control.Policy = "max_pressure"
	_, err := task.NewContext(c, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	c = testConfig()
	c.Signal.InitialGreen = "middle"
	_, err = task.NewContext(c, nil)
	assert.ErrorIs(t, err, entity.ErrUnknownApproach)
}

func TestInitialSnapshot(t *testing.T) {
	ctx := newContext(t, testConfig(), nil)
	snap := ctx.RenderSnapshot()
	assert.Equal(t, int32(0), snap.Step)
	assert.Equal(t, "priority", snap.Policy)
	assert.Empty(t, snap.Vehicles)
	states := lo.Map(snap.Lights[:], func(l entity.LightView, _ int) entity.LightState { return l.State })
	assert.Equal(t, []entity.LightState{entity.Red, entity.Red, entity.Green, entity.Red}, states)
}

func TestIdleBlackout(t *testing.T) {
	ctx := newContext(t, testConfig(), nil)
	ctx.AdvanceTick()
	for _, l := range ctx.RenderSnapshot().Lights {
		assert.Equal(t, entity.Red, l.State)
	}
}

func TestSpawnAndPause(t *testing.T) {
	ctx := newContext(t, testConfig(), nil)
	ctx.RequestSpawn(entity.North)
	ctx.AdvanceTick()
	snap := ctx.RenderSnapshot()
	require.Len(t, snap.Vehicles, 1)
	// 北向排队1辆，东向无车，绿灯切换到北向
	assert.Equal(t, entity.Green, snap.Lights[entity.North].State)
	assert.Equal(t, entity.Point{X: 421, Y: 798}, snap.Vehicles[0].Position)

	ctx.TogglePause()
	for range 10 {
		ctx.AdvanceTick()
	}
	snap = ctx.RenderSnapshot()
	assert.True(t, snap.Paused)
	assert.Equal(t, int32(11), snap.Step)
	assert.Equal(t, entity.Point{X: 421, Y: 798}, snap.Vehicles[0].Position)

	ctx.TogglePause()
	ctx.AdvanceTick()
	snap = ctx.RenderSnapshot()
	assert.False(t, snap.Paused)
	assert.Equal(t, entity.Point{X: 421, Y: 796}, snap.Vehicles[0].Position)
}

func TestCommandsFIFO(t *testing.T) {
	ctx := newContext(t, testConfig(), nil)
	ctx.RequestSpawn(entity.West)
	ctx.RequestSpawn(entity.South)
	ctx.AdvanceTick()
	snap := ctx.RenderSnapshot()
	require.Len(t, snap.Vehicles, 1)
	assert.Equal(t, entity.West, snap.Vehicles[0].Origin)
	assert.Equal(t, 1, ctx.Stats().Rejected)
}

func TestRunStopsAtTotal(t *testing.T) {
	c := testConfig()
	c.Control.Step.Total = 100
	sink := &recordingSink{}
	ctx := newContext(t, c, sink)
	require.NoError(t, ctx.Run(context.Background()))
	assert.Len(t, sink.snapshots, 100)
	assert.Equal(t, int32(100), ctx.Stats().Steps)
	assert.Equal(t, int32(100), sink.snapshots[99].Step)
}

func TestRunRenderError(t *testing.T) {
	c := testConfig()
	c.Control.Step.Total = 100
	sink := &recordingSink{err: errors.New("display lost")}
	ctx := newContext(t, c, sink)
	err := ctx.Run(context.Background())
	assert.ErrorIs(t, err, task.ErrRenderSink)
	assert.Len(t, sink.snapshots, 1)
}

func TestRunCancel(t *testing.T) {
	sink := &recordingSink{}
	ctx := newContext(t, testConfig(), sink)
	runCtx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, ctx.Run(runCtx))
	assert.Empty(t, sink.snapshots)
}

func TestDeterministicRuns(t *testing.T) {
	c := testConfig()
	c.Spawn.Seed = 42
	c.Spawn.RandomRate = 1.5
	run := func() task.Snapshot {
		ctx := newContext(t, c, nil)
		for range 2000 {
			ctx.AdvanceTick()
		}
		return ctx.RenderSnapshot()
	}
	first := run()
	assert.NotEmpty(t, first.Vehicles)
	assert.Equal(t, first, run())
}

type recordingInput struct {
	commands []string
}

func (r *recordingInput) RequestSpawn(a entity.Approach) {
	r.commands = append(r.commands, a.String())
}

func (r *recordingInput) RequestSpawnRandom() {
	r.commands = append(r.commands, "random")
}

func (r *recordingInput) TogglePause() {
	r.commands = append(r.commands, "pause")
}

func TestLineInput(t *testing.T) {
	in := &recordingInput{}
	err := task.LineInput(strings.NewReader("n\n\nUp\nleft\nr\np\nbogus\nq\ns\n"), in)
	assert.ErrorIs(t, err, task.ErrQuit)
	assert.Equal(t, []string{"north", "north", "west", "random", "pause"}, in.commands)

	in = &recordingInput{}
	assert.NoError(t, task.LineInput(strings.NewReader("e\nw"), in))
	assert.Equal(t, []string{"east", "west"}, in.commands)
}

func TestDemand(t *testing.T) {
	d := task.NewDemand(4, 1)
	n := lo.CountBy(lo.Range(10), func(int) bool { return d.Step(0.25) })
	assert.Equal(t, 10, n)

	d = task.NewDemand(0, 1)
	n = lo.CountBy(lo.Range(10), func(int) bool { return d.Step(0.25) })
	assert.Zero(t, n)
}

func TestDemandWithFullQueue(t *testing.T) {
	c := testConfig()
	c.Spawn.RandomRate = 1e6
	ctx := newContext(t, c, nil)
	// 填满命令队列
	for range 1024 {
		ctx.RequestSpawn(entity.West)
	}
	done := make(chan struct{})
	go func() {
		ctx.AdvanceTick()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tick blocked on a full command queue")
	}
	// 外部命令先执行，自动生成请求因冷却被拒绝
	s := ctx.Stats()
	assert.Equal(t, 1, s.Spawned)
	assert.Equal(t, 1024, s.Rejected)
	assert.Equal(t, 1, s.Vehicles)
}

func TestLogSink(t *testing.T) {
	ctx := newContext(t, testConfig(), nil)
	assert.NoError(t, task.LogSink{Interval: 1}.Render(ctx.RenderSnapshot()))
	assert.NoError(t, task.LogSink{}.Render(ctx.RenderSnapshot()))
}

func TestRunBatch(t *testing.T) {
	c := testConfig()
	c.Spawn.Seed = 10
	c.Spawn.RandomRate = 2
	c.Control.Step.Total = 1200
	report, err := task.RunBatch(c, 3)
	require.NoError(t, err)
	require.Len(t, report.Runs, 3)
	assert.Equal(t, "priority", report.Policy)
	assert.Equal(t, []uint64{10, 11, 12}, lo.Map(report.Runs, func(r task.RunReport, _ int) uint64 { return r.Seed }))
	assert.Len(t, lo.Uniq(lo.Map(report.Runs, func(r task.RunReport, _ int) string { return r.ID })), 3)
	for _, r := range report.Runs {
		assert.Empty(t, r.Error)
		assert.Equal(t, int32(1200), r.Stats.Steps)
		assert.Positive(t, r.Stats.Spawned)
	}

	var buf bytes.Buffer
	require.NoError(t, task.WriteReport(&buf, report))
	assert.Contains(t, buf.String(), "runs:")
	assert.Contains(t, buf.String(), "policy: priority")
}

func TestRunBatchUnbounded(t *testing.T) {
	_, err := task.RunBatch(testConfig(), 2)
	assert.ErrorIs(t, err, task.ErrUnboundedBatch)
}
