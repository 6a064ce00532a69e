package registry

import "time"

// Naming flow constants.
const (
	// NamingTimeout cancels a registration nobody finishes.
	NamingTimeout = 15 * time.Second

	commitKey = '#'
)

// NamingSession collects a display name for a freshly scanned unknown tag.
// The commit key finishes it; the watchdog cancels it. Like every session
// in this codebase it is fed and polled by the control loop, never blocking.
type NamingSession struct {
	uid      []byte
	buf      []byte
	deadline time.Time
}

// NewNamingSession starts naming the given UID at now.
func NewNamingSession(uid []byte, now time.Time) *NamingSession {
	return &NamingSession{
		uid:      append([]byte(nil), uid...),
		deadline: now.Add(NamingTimeout),
	}
}

// Feed consumes one byte. done reports a commit, and name carries the
// collected text only then. Commits with nothing typed are ignored, as are
// non-printable bytes and anything past the name capacity.
func (n *NamingSession) Feed(b byte) (done bool, name string) {
	if b == commitKey {
		if len(n.buf) == 0 {
			return false, ""
		}
		return true, string(n.buf)
	}
	if b < 0x20 || b > 0x7E {
		return false, ""
	}
	if len(n.buf) >= MaxNameLen {
		return false, ""
	}
	n.buf = append(n.buf, b)
	return false, ""
}

// Expired reports whether the watchdog has run out.
func (n *NamingSession) Expired(now time.Time) bool {
	return !now.Before(n.deadline)
}

// UID returns the tag being named.
func (n *NamingSession) UID() []byte {
	return n.uid
}
