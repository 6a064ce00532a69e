// Package comfort implements the Fanger predicted-mean-vote (PMV) model used
// to classify the monitored space. Everything here is pure computation: no
// I/O, no clocks, no shared state. Compute is deterministic for a given
// Sample.
package comfort

import "math"

// ----------- Model constants -----------
const (
	// Canonical occupant assumptions. Deployments may override them through
	// configuration; these are the documented defaults.
	DefaultMetabolicRate = 69.78 // W/m², sedentary 1.2 met
	DefaultExternalWork  = 0.0   // W/m²
	DefaultClothing      = 0.5   // clo, light indoor clothing
	DefaultAirVelocity   = 0.1   // m/s, still indoor air

	// MetUnit converts met units to W/m² of body surface.
	MetUnit = 58.15

	kelvinOffset  = 273.0 // offset used by the surface balance
	maxIterations = 100   // hard cap on the surface-temperature solve
	tclTolerance  = 1e-4  // °C, convergence threshold between iterates

	scaleMin = -3.0 // PMV thermal sensation scale bounds
	scaleMax = 3.0

	// Comfort category boundaries. Fixed policy, not configuration.
	bandLow  = -1.0
	bandHigh = 1.0
)

// Sample is one set of environmental and occupant inputs. Values are taken
// by copy and never mutated.
type Sample struct {
	AirTemp      float64 // °C
	RadiantTemp  float64 // mean radiant temperature, °C
	RelHumidity  float64 // %
	AirVelocity  float64 // m/s
	Metabolic    float64 // W/m²
	ExternalWork float64 // W/m²
	Clothing     float64 // clo
}

// Result carries the clamped vote plus solver diagnostics.
type Result struct {
	PMV        float64 // clamped to [-3, +3]
	Tcl        float64 // clothing surface temperature at the fixed point, °C
	Iterations int
	Converged  bool // false when the solve hit the iteration cap
}

// Band labels which side of the comfort envelope a vote falls on.
type Band string

const (
	BandBelow  Band = "BELOW"
	BandWithin Band = "WITHIN"
	BandAbove  Band = "ABOVE"
)

// BandOf classifies a clamped vote against the fixed ±1 category boundaries.
func BandOf(pmv float64) Band {
	switch {
	case pmv < bandLow:
		return BandBelow
	case pmv > bandHigh:
		return BandAbove
	default:
		return BandWithin
	}
}

// Compute evaluates the PMV for one sample.
//
// The clothing surface temperature tcl satisfies
//
//	tcl = 35.7 - 0.028*(M-W) - icl*(R + C)
//
// with R the radiative and C the convective exchange at the clothing
// surface. The balance is solved by the damped successive-average iteration
// (the ISO 7730 reference form): substituting the right-hand side directly
// oscillates and overflows for heavy clothing at large surface-air deltas,
// while the damped form reaches the same fixed point everywhere the direct
// form converges. The iterate starts at the air temperature and stops once
// consecutive values agree within 1e-4 °C or after 100 rounds, whichever
// comes first; hitting the cap is reported, not fatal.
func Compute(s Sample) Result {
	mw := s.Metabolic - s.ExternalWork
	icl := 0.155 * s.Clothing
	pa := vaporPressure(s.AirTemp, s.RelHumidity)
	fcl := clothingAreaFactor(icl)

	taa := s.AirTemp + kelvinOffset
	tra := s.RadiantTemp + kelvinOffset

	// Surface balance rearranged on a tcl/100 scale so the fourth powers
	// stay in comfortable float range.
	p1 := icl * fcl
	p2 := p1 * 3.96
	p3 := p1 * 100
	p4 := p1 * taa
	p5 := 308.7 - 0.028*mw + p2*math.Pow(tra/100, 4)

	xn := taa / 100
	xf := xn
	var hc float64
	iterations := 0
	converged := false
	for iterations < maxIterations {
		xf = (xf + xn) / 2
		hc = convectionCoeff(100*xf-taa, s.AirVelocity)
		xn = (p5 + p4*hc - p2*math.Pow(xf, 4)) / (100 + p3*hc)
		iterations++
		if math.Abs(100*xn-100*xf) <= tclTolerance {
			converged = true
			break
		}
	}
	tcl := 100*xn - kelvinOffset

	hc = convectionCoeff(tcl-s.AirTemp, s.AirVelocity)
	radiation := 3.96e-8 * fcl * (math.Pow(tcl+kelvinOffset, 4) - math.Pow(tra, 4))
	convection := fcl * hc * (tcl - s.AirTemp)
	diffusion := 3.05e-3 * (5733 - 6.99*mw - pa)
	sweat := 0.42 * (mw - 58.15)
	latent := 1.7e-5 * s.Metabolic * (5867 - pa)
	respiration := 0.0014 * s.Metabolic * (34 - s.AirTemp)

	sensitivity := 0.303*math.Exp(-0.036*s.Metabolic) + 0.028
	pmv := sensitivity * (mw - diffusion - sweat - latent - respiration - radiation - convection)

	return Result{
		PMV:        clamp(pmv),
		Tcl:        tcl,
		Iterations: iterations,
		Converged:  converged,
	}
}

// vaporPressure returns the partial water vapor pressure for the reference
// saturation curve. The scale matches the vote expression above, so both
// must change together or neither.
func vaporPressure(airTemp, relHumidity float64) float64 {
	return relHumidity / 100 * math.Exp(16.6536-4030.183/(airTemp+235))
}

// clothingAreaFactor is the clothed/nude surface area ratio.
func clothingAreaFactor(icl float64) float64 {
	if icl <= 0.078 {
		return 1.0 + 1.29*icl
	}
	return 1.05 + 0.645*icl
}

// convectionCoeff picks between natural convection over the surface-air
// delta and forced convection over the air velocity. Forced wins ties;
// natural is chosen only when strictly larger. The comparison direction is
// observable near the crossover and must not change.
func convectionCoeff(surfaceDelta, velocity float64) float64 {
	natural := 2.38 * math.Pow(math.Abs(surfaceDelta), 0.25)
	forced := 12.1 * math.Sqrt(velocity)
	if natural > forced {
		return natural
	}
	return forced
}

func clamp(pmv float64) float64 {
	if pmv < scaleMin {
		return scaleMin
	}
	if pmv > scaleMax {
		return scaleMax
	}
	return pmv
}
