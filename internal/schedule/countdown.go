// Package schedule provides the cooperative time machines the controller
// polls every tick: one-shot countdowns, on/off blink patterns, and the
// louvre sweep. Nothing here owns a goroutine or reads the wall clock; the
// current time is always injected, which keeps the control loop and its
// tests deterministic.
package schedule

import "time"

// Countdown is armed once and reports due exactly once, unless built to
// repeat. A countdown is constructed per state visit and discarded on exit,
// so a stale deadline can never fire into a later visit.
type Countdown struct {
	duration time.Duration
	deadline time.Time
	repeat   bool
	armed    bool
}

// NewCountdown arms a one-shot countdown ending at now+d.
func NewCountdown(now time.Time, d time.Duration) *Countdown {
	return &Countdown{duration: d, deadline: now.Add(d), armed: true}
}

// NewRepeating arms a countdown that re-arms itself each time it fires.
func NewRepeating(now time.Time, d time.Duration) *Countdown {
	c := NewCountdown(now, d)
	c.repeat = true
	return c
}

// Due reports whether the deadline has passed. A one-shot disarms on fire; a
// repeating countdown schedules the next deadline from the current one.
func (c *Countdown) Due(now time.Time) bool {
	if c == nil || !c.armed || now.Before(c.deadline) {
		return false
	}
	if c.repeat {
		c.deadline = c.deadline.Add(c.duration)
	} else {
		c.armed = false
	}
	return true
}

// Rearm restarts the countdown from now with its original duration.
func (c *Countdown) Rearm(now time.Time) {
	c.deadline = now.Add(c.duration)
	c.armed = true
}

// Remaining returns the time left, clamped at zero.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if c == nil || !c.armed {
		return 0
	}
	if d := c.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
