package clock_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

func TestTick(t *testing.T) {
	c := clock.New(config.ControlStep{Interval: 0.5, Total: 3})
	assert.Equal(t, 0.0, c.Time())
	assert.False(t, c.Done())
	c.Tick()
	c.Tick()
	assert.Equal(t, 1.0, c.Time())
	assert.False(t, c.Done())
	c.Tick()
	assert.True(t, c.Done())
	assert.Equal(t, "00:00:01.50", c.String())
}

func TestUnbounded(t *testing.T) {
	c := clock.New(config.ControlStep{Interval: 1})
	for range 7300 {
		c.Tick()
	}
	assert.False(t, c.Done())
	h, m, s := c.GetHourMinuteSecond()
	assert.Equal(t, 2, h)
	assert.Equal(t, 1, m)
	assert.Equal(t, 40.0, s)
}

func TestNow(t *testing.T) {
	c := clock.New(config.ControlStep{Interval: 0.25, Start: 8})
	res, err := c.Now(context.Background(), connect.NewRequest(&clockv1.NowRequest{}))
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Msg.T)
}

func TestAtLeast(t *testing.T) {
	c := clock.New(config.ControlStep{Interval: 1.0 / 60, Start: 7})
	start := c.Time()
	for range 59 {
		c.Tick()
	}
	assert.False(t, clock.AtLeast(c.Time()-start, 1))
	c.Tick()
	assert.True(t, clock.AtLeast(c.Time()-start, 1))
	assert.True(t, clock.AtLeast(1.5, 1))
	assert.False(t, clock.AtLeast(0.999, 1))
}
