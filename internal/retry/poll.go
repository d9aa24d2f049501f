// Package retry runs a predicate on a fixed interval until it reports
// completion, fails, or a time budget runs out.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/bctools/bctools/internal/clock"
	"github.com/bctools/bctools/internal/messages"
)

// ErrInvalidInterval is returned when a Schedule would poll without pausing.
var ErrInvalidInterval = errors.New(messages.RetryInvalidInterval)

// Schedule controls the timing of Poll.
type Schedule struct {
	// InitialDelay is waited once before the first check.
	InitialDelay time.Duration
	// Interval is waited between checks. Must be positive.
	Interval time.Duration
	// Timeout bounds the elapsed time, measured from Since. Once a check
	// completes at or past the budget, Poll stops with TimedOut set.
	Timeout time.Duration
	// Since is the reference point for Timeout. Zero means the moment
	// Poll is called.
	Since time.Time
}

// Result describes how a Poll call ended.
type Result struct {
	Attempts int
	Elapsed  time.Duration
	TimedOut bool
}

// Check is called once per attempt. It returns done=true to stop polling.
// A non-nil error stops polling and is returned unchanged.
type Check func(ctx context.Context) (done bool, err error)

// Poll waits InitialDelay, then calls check until it reports done, returns
// an error, or the Timeout budget is spent. Waits honor ctx cancellation.
func Poll(ctx context.Context, clk clock.Clock, schedule Schedule, check Check) (Result, error) {
	if schedule.Interval <= 0 {
		return Result{}, ErrInvalidInterval
	}
	if clk == nil {
		clk = clock.Real()
	}
	start := schedule.Since
	if start.IsZero() {
		start = clk.Now()
	}

	var result Result
	if err := wait(ctx, clk, schedule.InitialDelay); err != nil {
		result.Elapsed = clk.Now().Sub(start)
		return result, err
	}

	for {
		result.Attempts++
		done, err := check(ctx)
		result.Elapsed = clk.Now().Sub(start)
		if err != nil || done {
			return result, err
		}
		if result.Elapsed >= schedule.Timeout {
			result.TimedOut = true
			return result, nil
		}
		if err := wait(ctx, clk, schedule.Interval); err != nil {
			result.Elapsed = clk.Now().Sub(start)
			return result, err
		}
	}
}

// wait blocks for d on clk or until ctx is done.
func wait(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clk.After(d):
		return nil
	}
}
