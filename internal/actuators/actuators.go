// Package actuators abstracts the output hardware the controller drives:
// fan relay, indicator LEDs, buzzer and the louvre servo.
package actuators

// Color selects one of the indicator LEDs.
type Color string

const (
	ColorRed   Color = "RED"
	ColorGreen Color = "GREEN"
	ColorBlue  Color = "BLUE"
)

// Sink receives actuator commands. Implementations must tolerate repeated
// commands with the same value; the controller does not deduplicate.
type Sink interface {
	Fan(on bool) error
	Indicator(c Color, on bool) error
	Buzzer(on bool) error
	// Louvre positions the servo in degrees, clamped to 0..180.
	Louvre(angleDeg int) error
	// DetachLouvre stops driving the servo so it holds no torque.
	DetachLouvre() error
}
