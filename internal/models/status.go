package models

import "time"

// StatusSnapshot is the single persisted row describing the controller as of
// the last transition or comfort evaluation. It is a snapshot, not a series.
type StatusSnapshot struct {
	ID             int       `json:"id"`
	State          string    `json:"state"`           // START | CONFIGURING | MONITORING | COMFORT_LOW | COMFORT_HIGH | ALARM | LOCKED
	LastPMV        float64   `json:"last_pmv"`        // clamped to [-3, +3]
	PMVConverged   bool      `json:"pmv_converged"`   // false when the surface-temperature solve hit the iteration cap
	OverheatCount  int       `json:"overheat_count"`  // consecutive hot COMFORT_HIGH entries
	FailedAttempts int       `json:"failed_attempts"` // credential attempts failed since last START entry
	FanOn          bool      `json:"fan_on"`
	UpdatedAt      time.Time `json:"updated_at"`
}
