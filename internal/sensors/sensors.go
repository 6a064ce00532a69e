// Package sensors defines the environmental reading the controller consumes
// and its sources. Invalid fields are carried as NaN rather than errors so
// one dead probe degrades a reading instead of killing the cycle.
package sensors

import "math"

// Reading is one environmental sample.
type Reading struct {
	AirTemp     float64 // °C
	Humidity    float64 // %RH
	LightPct    float64 // %, 0..100
	RadiantTemp float64 // °C, globe probe; NaN falls back to AirTemp downstream
}

// Valid reports whether the reading can feed a comfort evaluation: air
// temperature and humidity must be finite. Light and the radiant probe are
// optional extras.
func (r Reading) Valid() bool {
	return finite(r.AirTemp) && finite(r.Humidity)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Invalid returns a reading with every field NaN.
func Invalid() Reading {
	n := math.NaN()
	return Reading{AirTemp: n, Humidity: n, LightPct: n, RadiantTemp: n}
}

// Reader is a source of readings.
type Reader interface {
	Read() (Reading, error)
}
