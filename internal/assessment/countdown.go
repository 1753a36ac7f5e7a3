package assessment

import "time"

// DefaultDuration is the time limit for one assessment.
const DefaultDuration = 20 * time.Minute

// WarningThreshold is when the remaining time is displayed as urgent.
const WarningThreshold = 5 * time.Minute

// Countdown is a cancellable one-second countdown. Every Start and Stop
// bumps its ID; ticks scheduled under an older ID are ignored, so a timer
// can never fire against a session that has moved on.
type Countdown struct {
	total     int
	remaining int
	running   bool
	expired   bool
	id        int
}

// NewCountdown creates a stopped countdown of d, rounded down to seconds.
func NewCountdown(d time.Duration) *Countdown {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &Countdown{total: secs, remaining: secs}
}

// Start begins counting and returns the tick ID to schedule with. Starting
// an expired countdown is a no-op that returns the current ID.
func (c *Countdown) Start() int {
	if c.expired || c.running {
		return c.id
	}
	c.id++
	c.running = true
	return c.id
}

// Stop halts the countdown. Pending ticks become stale.
func (c *Countdown) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.id++
}

// Tick consumes one second for tick id. It returns true exactly once: on
// the tick that brings the remaining time to zero.
func (c *Countdown) Tick(id int) bool {
	if !c.running || id != c.id {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		return false
	}
	c.running = false
	c.expired = true
	c.id++
	return true
}

// ID returns the current tick ID.
func (c *Countdown) ID() int { return c.id }

// Running reports whether ticks are being consumed.
func (c *Countdown) Running() bool { return c.running }

// Expired reports whether the countdown reached zero.
func (c *Countdown) Expired() bool { return c.expired }

// Remaining returns the time left.
func (c *Countdown) Remaining() time.Duration {
	return time.Duration(c.remaining) * time.Second
}

// Urgent reports whether the remaining time is under WarningThreshold.
func (c *Countdown) Urgent() bool {
	return c.Remaining() < WarningThreshold
}
