// Package input normalizes the device's heterogeneous stimuli (debug command
// bytes, keypad presses, tag scans, motion pulses) into the raw inputs the
// control loop drains each tick, and holds the single-slot event latch the
// supervisor consumes from.
package input

import (
	"github.com/rhony-martinez/proyecto-ac/internal/fsm"
)

// Kind discriminates raw inputs.
type Kind uint8

const (
	KindCommand Kind = iota // single byte from the debug command channel
	KindKey                 // keypad key press
	KindTag                 // RFID tag scan
	KindMotion              // PIR pulse
)

// Input is one raw stimulus. Byte carries command and key values; UID is set
// for tag scans only.
type Input struct {
	Kind Kind
	Byte byte
	UID  []byte
}

// DecodeCommand maps the single-character debug channel onto canonical
// events: '0' through '7' name the eight real events in declaration order.
// Anything else is not a command and is ignored by the caller.
func DecodeCommand(b byte) (fsm.Event, bool) {
	switch b {
	case '0':
		return fsm.EventLockCondition, true
	case '1':
		return fsm.EventUnlockKey, true
	case '2':
		return fsm.EventCredentialAccepted, true
	case '3':
		return fsm.EventTimeExpired, true
	case '4':
		return fsm.EventComfortBelowLow, true
	case '5':
		return fsm.EventComfortAboveHigh, true
	case '6':
		return fsm.EventSustainedOverheat, true
	case '7':
		return fsm.EventMotionDetected, true
	default:
		return fsm.EventNone, false
	}
}

// Latch holds at most one pending event between ticks. The first producer
// wins; later offers in the same tick are dropped until Take clears the
// slot. The latch belongs to the control loop goroutine and is not locked.
type Latch struct {
	ev fsm.Event
}

// Offer latches ev unless a pending event already occupies the slot.
// Offering NONE never latches. Reports whether the event was accepted.
func (l *Latch) Offer(ev fsm.Event) bool {
	if ev == fsm.EventNone || ev == "" {
		return false
	}
	if l.ev != "" && l.ev != fsm.EventNone {
		return false
	}
	l.ev = ev
	return true
}

// Take returns the pending event and clears the slot. With nothing pending
// it returns NONE. The slot is cleared even when no transition will match:
// an event is consumed by the cycle that saw it.
func (l *Latch) Take() fsm.Event {
	ev := l.ev
	l.ev = fsm.EventNone
	if ev == "" {
		return fsm.EventNone
	}
	return ev
}

// Pending peeks at the slot without consuming it.
func (l *Latch) Pending() fsm.Event {
	if l.ev == "" {
		return fsm.EventNone
	}
	return l.ev
}
