package schedule

import "time"

// Sweeper walks a servo angle back and forth between two limits, one degree
// per interval. Like Blinker it is polled: Tick reports when the angle moved
// and the caller forwards it to the actuator.
type Sweeper struct {
	min, max int
	interval time.Duration
	last     time.Time
	angle    int
	dir      int
	running  bool
}

// NewSweeper builds a stopped sweeper over [min, max] degrees.
func NewSweeper(min, max int, interval time.Duration) *Sweeper {
	return &Sweeper{min: min, max: max, interval: interval}
}

// Start begins sweeping upward from the lower limit.
func (s *Sweeper) Start(now time.Time) {
	s.running = true
	s.angle = s.min
	s.dir = 1
	s.last = now
}

// Stop freezes the sweep at its current angle.
func (s *Sweeper) Stop() {
	s.running = false
}

// Running reports whether the sweep is active.
func (s *Sweeper) Running() bool {
	return s != nil && s.running
}

// Angle returns the current angle in degrees.
func (s *Sweeper) Angle() int {
	if s == nil {
		return 0
	}
	return s.angle
}

// Tick advances the sweep to now, one degree per elapsed interval, bouncing
// at the limits.
func (s *Sweeper) Tick(now time.Time) (moved bool, angle int) {
	if s == nil || !s.running {
		return false, 0
	}
	start := s.angle
	for now.Sub(s.last) >= s.interval {
		s.last = s.last.Add(s.interval)
		s.angle += s.dir
		if s.angle >= s.max {
			s.angle = s.max
			s.dir = -1
		} else if s.angle <= s.min {
			s.angle = s.min
			s.dir = 1
		}
	}
	return s.angle != start, s.angle
}
