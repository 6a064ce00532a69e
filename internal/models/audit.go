package models

import "time"

// Audit event types.
const (
	EventStartup     = "STARTUP"
	EventShutdown    = "SHUTDOWN"
	EventTransition  = "TRANSITION"
	EventAuthOK      = "AUTH_OK"
	EventAuthFail    = "AUTH_FAIL"
	EventTagSeen     = "TAG_SEEN"
	EventTagStored   = "TAG_STORED"
	EventTagTimeout  = "TAG_TIMEOUT"
	EventOverheat    = "OVERHEAT"
	EventSensorFault = "SENSOR_FAULT"
)

// AuditEvent is a single append-only log entry.
type AuditEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
