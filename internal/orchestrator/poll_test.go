package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
)

// fakeClock advances only when slept on, so polls run instantly in tests.
type fakeClock struct {
	t      time.Time
	sleeps int
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	c.t = c.t.Add(d)
	return nil
}

// scriptedObserver returns the given states in order, then keeps returning
// the last one.
func scriptedObserver(states ...rds.InstanceState) (StateObserver, *int) {
	count := new(int)
	return func(ctx context.Context) (rds.InstanceState, error) {
		i := *count
		*count++
		if i >= len(states) {
			i = len(states) - 1
		}
		return states[i], nil
	}, count
}

func testPoller(clock *fakeClock) *StatePoller {
	return &StatePoller{
		Interval: 15 * time.Second,
		Timeout:  10 * time.Minute,
		sleep:    clock.sleep,
		now:      clock.now,
	}
}

func TestStatePoller_ReachesTarget(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
	observe, count := scriptedObserver(rds.StateStarting, rds.StateStarting, rds.StateAvailable)

	err := testPoller(clock).WaitFor(context.Background(), observe, rds.StateAvailable)
	require.NoError(t, err)
	assert.Equal(t, 3, *count, "success after exactly 3 observations")
	assert.Equal(t, 2, clock.sleeps)
}

func TestStatePoller_ImmediateSuccessNoSleep(t *testing.T) {
	clock := &fakeClock{}
	observe, count := scriptedObserver(rds.StateStopped)

	err := testPoller(clock).WaitFor(context.Background(), observe, rds.StateStopped)
	require.NoError(t, err)
	assert.Equal(t, 1, *count)
	assert.Zero(t, clock.sleeps)
}

func TestStatePoller_UnknownStateFailsFast(t *testing.T) {
	clock := &fakeClock{}
	observe, count := scriptedObserver(rds.StateStarting, rds.StateUnknown)

	err := testPoller(clock).WaitFor(context.Background(), observe, rds.StateAvailable)
	require.Error(t, err)

	var unexpected *UnexpectedStateError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, rds.StateUnknown, unexpected.State)
	assert.Equal(t, 2, *count, "fails on the second observation without further polling")
}

func TestStatePoller_WrongTerminalStateFailsFast(t *testing.T) {
	clock := &fakeClock{}
	observe, _ := scriptedObserver(rds.StateStopped)

	err := testPoller(clock).WaitFor(context.Background(), observe, rds.StateAvailable)

	var unexpected *UnexpectedStateError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, rds.StateStopped, unexpected.State)
	assert.Zero(t, clock.sleeps, "a terminal-but-wrong state is never waited on")
}

func TestStatePoller_Timeout(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
	poller := testPoller(clock)
	poller.Timeout = time.Minute
	observe, _ := scriptedObserver(rds.StateStarting)

	err := poller.WaitFor(context.Background(), observe, rds.StateAvailable)
	require.Error(t, err)

	var timeout *PollTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, rds.StateStarting, timeout.LastState)
	assert.Equal(t, rds.StateAvailable, timeout.Target)
	assert.LessOrEqual(t, timeout.Elapsed, poller.Timeout)
}

func TestStatePoller_ObserverErrorStopsPolling(t *testing.T) {
	clock := &fakeClock{}
	boom := errors.New("describe failed")
	calls := 0
	observe := func(ctx context.Context) (rds.InstanceState, error) {
		calls++
		return rds.StateUnknown, boom
	}

	err := testPoller(clock).WaitFor(context.Background(), observe, rds.StateAvailable)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "observation errors are not retried")
}
