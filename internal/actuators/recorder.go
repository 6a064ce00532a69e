package actuators

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder is an in-memory Sink for tests. It tracks the visible state of
// every actuator and journals each command so tests can assert ordering and
// exactly-once behavior.
type Recorder struct {
	mu       sync.Mutex
	fanOn    bool
	lit      map[Color]bool
	buzzerOn bool
	angle    int
	attached bool
	journal  []string
	err      error
}

func NewRecorder() *Recorder {
	return &Recorder{lit: make(map[Color]bool)}
}

// SetErr makes every subsequent command fail with err until cleared with nil.
// State and journal are not updated while failing.
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Fan(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.fanOn = on
	r.journal = append(r.journal, fmt.Sprintf("fan %s", onOff(on)))
	return nil
}

func (r *Recorder) Indicator(c Color, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.lit[c] = on
	r.journal = append(r.journal, fmt.Sprintf("%s %s", strings.ToLower(string(c)), onOff(on)))
	return nil
}

func (r *Recorder) Buzzer(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.buzzerOn = on
	r.journal = append(r.journal, fmt.Sprintf("buzzer %s", onOff(on)))
	return nil
}

func (r *Recorder) Louvre(angleDeg int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.angle = angleDeg
	r.attached = true
	r.journal = append(r.journal, fmt.Sprintf("louvre %d", angleDeg))
	return nil
}

func (r *Recorder) DetachLouvre() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.attached = false
	r.journal = append(r.journal, "louvre detach")
	return nil
}

func (r *Recorder) FanOn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fanOn
}

func (r *Recorder) Lit(c Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lit[c]
}

func (r *Recorder) BuzzerOn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buzzerOn
}

func (r *Recorder) Angle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.angle
}

func (r *Recorder) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}

// Journal returns a copy of the command log.
func (r *Recorder) Journal() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.journal))
	copy(out, r.journal)
	return out
}

// Count returns how many journal entries start with prefix.
func (r *Recorder) Count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.journal {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// Reset clears the journal but keeps actuator state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal = nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
