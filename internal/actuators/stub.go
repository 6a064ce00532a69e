//go:build !linux

package actuators

import "errors"

var errNotSupported = errors.New("actuators: real sink requires linux gpio character devices")

// RealConfig names the hardware attached to the controller.
type RealConfig struct {
	ChipName  string
	FanPin    int
	RedPin    int
	GreenPin  int
	BluePin   int
	BuzzerPin int

	PWMChipPath string
	PWMChannel  int
}

// Real is not available on non-Linux platforms.
type Real struct{}

// NewReal returns an error on non-Linux platforms.
func NewReal(RealConfig) (*Real, error) {
	return nil, errNotSupported
}

func (r *Real) Fan(bool) error { return errNotSupported }

func (r *Real) Indicator(Color, bool) error { return errNotSupported }

func (r *Real) Buzzer(bool) error { return errNotSupported }

func (r *Real) Louvre(int) error { return errNotSupported }

func (r *Real) DetachLouvre() error { return errNotSupported }

func (r *Real) Close() error { return nil }
