package schedule

import "time"

// Blinker alternates between a lit phase and a dark phase of independent
// lengths. The caller applies the first "on" itself after Start and then
// mirrors every change Tick reports to the output.
type Blinker struct {
	on, off    time.Duration
	phaseStart time.Time
	lit        bool
	running    bool
}

// NewBlinker builds a stopped blinker with the given phase lengths.
func NewBlinker(on, off time.Duration) *Blinker {
	return &Blinker{on: on, off: off}
}

// Start begins a fresh lit phase at now.
func (b *Blinker) Start(now time.Time) {
	b.running = true
	b.lit = true
	b.phaseStart = now
}

// Stop halts the pattern and leaves the logical output dark.
func (b *Blinker) Stop() {
	b.running = false
	b.lit = false
}

// Running reports whether the pattern is active.
func (b *Blinker) Running() bool {
	return b != nil && b.running
}

// Lit reports the current logical output.
func (b *Blinker) Lit() bool {
	return b != nil && b.lit
}

// Tick advances the pattern to now. Phases are advanced additively so a slow
// poll cannot stretch the duty cycle. The boolean reports whether the
// logical output flipped since the last call.
func (b *Blinker) Tick(now time.Time) (changed bool, lit bool) {
	if b == nil || !b.running {
		return false, false
	}
	was := b.lit
	for {
		phase := b.off
		if b.lit {
			phase = b.on
		}
		if now.Sub(b.phaseStart) < phase {
			break
		}
		b.phaseStart = b.phaseStart.Add(phase)
		b.lit = !b.lit
	}
	return b.lit != was, b.lit
}
