package testing

import (
	"context"
	"sync"
	"time"
)

// FakeClock is a provisioning.Clock whose Sleep returns immediately and
// advances Now by the requested duration.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFakeClock creates a FakeClock starting at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now implements provisioning.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep implements provisioning.Clock.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	return nil
}

// Sleeps returns every requested sleep, in order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

// Elapsed returns the sum of all sleeps.
func (c *FakeClock) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range c.Sleeps() {
		total += d
	}
	return total
}

// CountSleeps returns how many sleeps of exactly d were requested.
func (c *FakeClock) CountSleeps(d time.Duration) int {
	n := 0
	for _, s := range c.Sleeps() {
		if s == d {
			n++
		}
	}
	return n
}
