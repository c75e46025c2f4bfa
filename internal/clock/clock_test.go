package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	var ticks, expiries atomic.Int32

	c := New(5*time.Millisecond,
		func(remaining int) { ticks.Add(1) },
		func() { expiries.Add(1) },
	)

	c.Start(25 * time.Millisecond)

	require.Eventually(t, func() bool { return expiries.Load() == 1 }, time.Second, time.Millisecond)

	// Give a superseded run time to misfire if the guard were broken.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), expiries.Load())
	assert.Equal(t, int32(4), ticks.Load(), "a 5-tick budget reports 4 intermediate ticks")
}

func TestCountdownStopPreventsExpiry(t *testing.T) {
	var expiries atomic.Int32

	c := New(10*time.Millisecond, nil, func() { expiries.Add(1) })
	c.Start(30 * time.Millisecond)
	c.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), expiries.Load())
}

func TestCountdownStopWhenIdle(t *testing.T) {
	c := New(10*time.Millisecond, nil, nil)
	c.Stop()
	c.Stop()
}

func TestCountdownResetSupersedesInFlightRun(t *testing.T) {
	var expiries atomic.Int32

	c := New(20*time.Millisecond, nil, func() { expiries.Add(1) })
	c.Start(40 * time.Millisecond)
	c.Reset(400 * time.Millisecond)

	// The original 2-tick budget would have expired well inside this
	// window; only the reset run may fire.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), expiries.Load())

	require.Eventually(t, func() bool { return expiries.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestCountdownRemaining(t *testing.T) {
	c := New(10*time.Millisecond, nil, nil)
	c.Start(100 * time.Millisecond)
	assert.Equal(t, 10, c.Remaining())
	c.Stop()
}

func TestCountdownMinimumOneTick(t *testing.T) {
	var expiries atomic.Int32

	c := New(10*time.Millisecond, nil, func() { expiries.Add(1) })
	// A budget below one resolution still gets a single tick.
	c.Start(time.Millisecond)
	assert.Equal(t, 1, c.Remaining())

	require.Eventually(t, func() bool { return expiries.Load() == 1 }, time.Second, time.Millisecond)
}
