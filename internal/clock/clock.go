// Package clock provides an injectable time source so waits can run on
// virtual time in tests.
//
// Production code holds a Clock and calls Now and After instead of the
// time package. Real() is backed by the standard library; Fake() advances
// only when a caller waits on it or when Advance is called.
package clock

import (
	"sync"
	"time"
)

// Clock abstracts the time operations used by the pipeline commands.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// FakeClock is a deterministic Clock. Every call to After moves the
// clock forward by the requested duration and fires at once, so a
// sequence of waits completes without blocking while Now reflects the
// total time waited.
//
// FakeClock is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waits   []time.Duration
}

// Fake returns a FakeClock starting at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After advances the clock by d, records the wait, and returns a channel
// that has already received the new time. Non-positive durations are
// recorded as zero-length waits.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	c.current = c.current.Add(d)
	c.waits = append(c.waits, d)

	channel := make(chan time.Time, 1)
	channel <- c.current
	return channel
}

// Advance moves the clock forward by d without recording a wait. It
// simulates time spent outside of waits, such as slow network calls.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Waits returns a copy of every duration passed to After, in order.
func (c *FakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waits))
	copy(out, c.waits)
	return out
}

// Waited returns the sum of all recorded waits.
func (c *FakeClock) Waited() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.waits {
		total += d
	}
	return total
}
