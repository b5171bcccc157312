package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	logger := zap.NewNop().Sugar()
	return New(logger, time.Millisecond)
}

func TestCollectorCounters(t *testing.T) {
	c := newTestCollector(t)
	c.StartClock()

	c.AddSubmitted(5)
	c.AddSuccess()
	c.AddSuccess()
	c.AddError("(network - timeout)")
	c.AddProcessed(3)

	snap := c.Snapshot()
	require.EqualValues(t, 5, snap.Submitted)
	require.EqualValues(t, 2, snap.Successes)
	require.EqualValues(t, 1, snap.Errors)
	require.EqualValues(t, 3, snap.Processed)
	require.Equal(t, int64(1), snap.ErrorTypes["(network - timeout)"])
}

func TestProcessedEqualsSuccessesPlusErrorsInvariant(t *testing.T) {
	c := newTestCollector(t)
	c.StartClock()

	for i := 0; i < 7; i++ {
		c.AddSuccess()
		c.AddProcessed(1)
	}
	for i := 0; i < 3; i++ {
		c.AddError("(network - refused)")
		c.AddProcessed(1)
	}

	snap := c.Snapshot()
	require.EqualValues(t, snap.Successes+snap.Errors, snap.Processed)
}

func TestPrintPeriodicRateLimited(t *testing.T) {
	c := New(zap.NewNop().Sugar(), time.Hour)
	c.StartClock()
	// First call should be allowed (burst of 1), subsequent calls suppressed.
	c.PrintPeriodic(4)
	// No assertion on output since this logs via zap; the rate limiter
	// itself is exercised directly to confirm it denies a fast second call.
	require.False(t, c.limiter.Allow())
}
