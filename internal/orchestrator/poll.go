package orchestrator

import (
	"context"
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/internal/rds"
	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"
)

// StateObserver reports the database's current state. Observation errors
// end the poll immediately; the poller never retries a failed describe.
type StateObserver func(ctx context.Context) (rds.InstanceState, error)

// StatePoller waits for the database to reach a target terminal state by
// observing it on a fixed interval. The database owns its transitions; the
// poller only watches.
//
// On each tick: the target state returns success immediately; a transient
// state (starting, stopping) keeps polling; anything else fails fast with
// UnexpectedStateError, since a terminal-but-wrong state will not resolve
// by waiting. When the next tick would exceed the deadline the poll fails
// with PollTimeoutError carrying the last observed state.
type StatePoller struct {
	Interval time.Duration
	Timeout  time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewStatePoller returns a poller with the given fixed interval and maximum
// elapsed duration.
func NewStatePoller(interval, timeout time.Duration) *StatePoller {
	return &StatePoller{
		Interval: interval,
		Timeout:  timeout,
		sleep:    ctxSleep,
		now:      time.Now,
	}
}

// WaitFor polls observe until the database reaches target.
func (p *StatePoller) WaitFor(ctx context.Context, observe StateObserver, target rds.InstanceState) error {
	start := p.now()
	for {
		state, err := observe(ctx)
		if err != nil {
			return err
		}
		if state == target {
			logging.Info("Orchestrator", "Database reached target state %q", target)
			return nil
		}
		if !state.Transient() {
			return &UnexpectedStateError{State: state, Target: target}
		}

		elapsed := p.now().Sub(start)
		if elapsed+p.Interval > p.Timeout {
			return &PollTimeoutError{Target: target, LastState: state, Elapsed: elapsed}
		}

		logging.Info("Orchestrator", "Database is %q, waiting %s for %q (elapsed %s)",
			state, p.Interval, target, elapsed.Round(time.Second))
		if err := p.sleep(ctx, p.Interval); err != nil {
			return err
		}
	}
}

// ctxSleep blocks for d or until the context is cancelled.
func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
