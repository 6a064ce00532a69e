// Package credentials implements the keypad unlock contract: a fixed
// six-key code captured one key at a time while the control loop keeps
// running. The blocking capture of the original firmware becomes a session
// the loop feeds and polls.
package credentials

import (
	"errors"
	"time"
)

const (
	// SecretLength is the fixed code size the capture contract pins.
	SecretLength = 6

	// DefaultIdleTimeout clears a half-entered code.
	DefaultIdleTimeout = 15 * time.Second
)

// ErrBadSecretLength rejects configured secrets of the wrong size.
var ErrBadSecretLength = errors.New("credentials: secret must be exactly 6 keys")

// Session collects key presses toward one attempt. It carries no goroutine
// and no clock; the loop injects time.
type Session struct {
	secret  string
	buf     []byte
	idle    time.Duration
	lastKey time.Time
}

// NewSession opens a capture session against the configured secret.
func NewSession(secret string, now time.Time, idle time.Duration) (*Session, error) {
	if len(secret) != SecretLength {
		return nil, ErrBadSecretLength
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Session{
		secret:  secret,
		buf:     make([]byte, 0, SecretLength),
		idle:    idle,
		lastKey: now,
	}, nil
}

// Press feeds one key. When the sixth key lands the attempt concludes:
// done reports that, ok reports the comparison. Keys are compared
// elementwise with a short-circuit on the first mismatch; no hashing, no
// constant-time guarantee. The buffer resets for the next attempt either
// way.
func (s *Session) Press(k byte, now time.Time) (done, ok bool) {
	s.lastKey = now
	s.buf = append(s.buf, k)
	if len(s.buf) < SecretLength {
		return false, false
	}
	ok = s.match()
	s.buf = s.buf[:0]
	return true, ok
}

func (s *Session) match() bool {
	for i := 0; i < SecretLength; i++ {
		if s.buf[i] != s.secret[i] {
			return false
		}
	}
	return true
}

// ExpireIdle clears a partially entered code once the idle window passes
// with no key activity. It reports whether anything was cleared; expiry
// never changes control state, the occupant simply starts over.
func (s *Session) ExpireIdle(now time.Time) bool {
	if len(s.buf) == 0 {
		return false
	}
	if now.Sub(s.lastKey) < s.idle {
		return false
	}
	s.buf = s.buf[:0]
	return true
}

// Entered returns how many keys are currently buffered.
func (s *Session) Entered() int {
	return len(s.buf)
}
