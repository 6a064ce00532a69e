// Package envsim provides a first-order thermal model of a monitored room.
// It stands in for the real hardware on both ends: the controller samples it
// as a sensors.Reader and drives it as an actuators.Sink, which closes the
// loop so the whole system can run without GPIO.
package envsim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/actuators"
	"github.com/rhony-martinez/proyecto-ac/internal/sensors"
)

// Model defaults. Alpha couples the room to the outside air per step, Beta
// scales the fan's cooling effect, Gamma lags the radiant surfaces behind the
// air.
const (
	DefaultAlpha = 0.02
	DefaultBeta  = 0.5
	DefaultGamma = 0.05

	DefaultOutsideTemp     = 32.0
	DefaultInitialTemp     = 26.0
	DefaultOutsideHumidity = 60.0
	DefaultInitialHumidity = 50.0
	DefaultLightPct        = 40.0

	// An open louvre admits outside air, boosting the coupling up to +50%.
	louvreCouplingBoost = 0.5
	// The fan dries the room slightly while it runs, %RH per step.
	fanDryPerStep = 0.05
)

type Config struct {
	Alpha           float64
	Beta            float64
	Gamma           float64
	OutsideTemp     float64
	InitialTemp     float64
	OutsideHumidity float64
	InitialHumidity float64
	LightPct        float64
}

func (c *Config) applyDefaults() {
	if c.Alpha == 0 {
		c.Alpha = DefaultAlpha
	}
	if c.Beta == 0 {
		c.Beta = DefaultBeta
	}
	if c.Gamma == 0 {
		c.Gamma = DefaultGamma
	}
	if c.OutsideTemp == 0 {
		c.OutsideTemp = DefaultOutsideTemp
	}
	if c.InitialTemp == 0 {
		c.InitialTemp = DefaultInitialTemp
	}
	if c.OutsideHumidity == 0 {
		c.OutsideHumidity = DefaultOutsideHumidity
	}
	if c.InitialHumidity == 0 {
		c.InitialHumidity = DefaultInitialHumidity
	}
	if c.LightPct == 0 {
		c.LightPct = DefaultLightPct
	}
}

// Room is the simulated zone. All methods are safe for concurrent use; the
// controller loop and the stepping goroutine touch it from different sides.
type Room struct {
	mu sync.Mutex

	alpha, beta, gamma float64
	tOut, hOut         float64

	tIn      float64
	tRad     float64
	humidity float64
	lightPct float64

	fanOn    bool
	angle    int
	attached bool
	lit      map[actuators.Color]bool
	buzzerOn bool
}

func NewRoom(cfg Config) *Room {
	cfg.applyDefaults()
	return &Room{
		alpha:    cfg.Alpha,
		beta:     cfg.Beta,
		gamma:    cfg.Gamma,
		tOut:     cfg.OutsideTemp,
		hOut:     cfg.OutsideHumidity,
		tIn:      cfg.InitialTemp,
		tRad:     cfg.InitialTemp,
		humidity: cfg.InitialHumidity,
		lightPct: cfg.LightPct,
		lit:      make(map[actuators.Color]bool),
	}
}

// Step advances the model by one interval.
func (r *Room) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	alpha := r.alpha
	if r.attached {
		alpha *= 1 + float64(r.angle)/180*louvreCouplingBoost
	}
	effect := 0.0
	if r.fanOn {
		effect = -1.0
	}

	next := r.tIn + alpha*(r.tOut-r.tIn) + r.beta*effect
	if !math.IsNaN(next) && !math.IsInf(next, 0) {
		r.tIn = next
	}
	r.tRad += r.gamma * (r.tIn - r.tRad)

	r.humidity += r.alpha * (r.hOut - r.humidity)
	if r.fanOn {
		r.humidity -= fanDryPerStep
	}
	r.humidity = clamp(r.humidity, 0, 100)
}

// Run steps the model at the given interval until ctx is canceled.
func (r *Room) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Step()
		}
	}
}

// Read implements sensors.Reader.
func (r *Room) Read() (sensors.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sensors.Reading{
		AirTemp:     r.tIn,
		Humidity:    r.humidity,
		LightPct:    r.lightPct,
		RadiantTemp: r.tRad,
	}, nil
}

// Fan implements actuators.Sink.
func (r *Room) Fan(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fanOn = on
	return nil
}

func (r *Room) Indicator(c actuators.Color, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lit[c] = on
	return nil
}

func (r *Room) Buzzer(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buzzerOn = on
	return nil
}

func (r *Room) Louvre(angleDeg int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.angle = int(clamp(float64(angleDeg), 0, 180))
	r.attached = true
	return nil
}

func (r *Room) DetachLouvre() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = false
	return nil
}

// SetOutside moves the outside conditions mid-run.
func (r *Room) SetOutside(tempC, humidityPct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tOut = tempC
	r.hOut = clamp(humidityPct, 0, 100)
}

// SetLight sets the ambient light level.
func (r *Room) SetLight(pct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lightPct = clamp(pct, 0, 100)
}

// AirTemp returns the current indoor temperature.
func (r *Room) AirTemp() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tIn
}

func (r *Room) FanOn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fanOn
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
