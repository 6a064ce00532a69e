//go:build linux

package actuators

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/warthog618/go-gpiocdev"
)

// Servo timing for a standard 50 Hz hobby servo: 500 µs pulse at 0°,
// 2500 µs at 180°.
const (
	servoPeriodNs   = 20_000_000
	servoMinPulseNs = 500_000
	servoMaxPulseNs = 2_500_000
)

// RealConfig names the hardware attached to the controller.
type RealConfig struct {
	ChipName  string // e.g. gpiochip0
	FanPin    int
	RedPin    int
	GreenPin  int
	BluePin   int
	BuzzerPin int
	// PWMChipPath is the sysfs pwm chip directory, e.g. /sys/class/pwm/pwmchip0.
	PWMChipPath string
	PWMChannel  int
}

// Real drives the hardware through the Linux GPIO character device and the
// sysfs PWM interface.
type Real struct {
	chip     *gpiocdev.Chip
	fan      *gpiocdev.Line
	leds     map[Color]*gpiocdev.Line
	buzzer   *gpiocdev.Line
	pwmDir   string
	attached bool
}

// NewReal claims every output line, driving each low.
func NewReal(cfg RealConfig) (*Real, error) {
	chip, err := gpiocdev.NewChip(cfg.ChipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &Real{
		chip:   chip,
		leds:   make(map[Color]*gpiocdev.Line),
		pwmDir: filepath.Join(cfg.PWMChipPath, fmt.Sprintf("pwm%d", cfg.PWMChannel)),
	}

	request := func(pin int, what string) (*gpiocdev.Line, error) {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", what, pin, err)
		}
		return line, nil
	}

	if r.fan, err = request(cfg.FanPin, "fan"); err != nil {
		return nil, err
	}
	for _, p := range []struct {
		color Color
		pin   int
	}{
		{ColorRed, cfg.RedPin},
		{ColorGreen, cfg.GreenPin},
		{ColorBlue, cfg.BluePin},
	} {
		line, err := request(p.pin, string(p.color))
		if err != nil {
			return nil, err
		}
		r.leds[p.color] = line
	}
	if r.buzzer, err = request(cfg.BuzzerPin, "buzzer"); err != nil {
		return nil, err
	}

	if err := exportPWM(cfg.PWMChipPath, cfg.PWMChannel); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Real) Fan(on bool) error {
	return setLine(r.fan, "fan", on)
}

func (r *Real) Indicator(c Color, on bool) error {
	line, ok := r.leds[c]
	if !ok {
		return fmt.Errorf("unknown indicator %q", c)
	}
	return setLine(line, string(c), on)
}

func (r *Real) Buzzer(on bool) error {
	return setLine(r.buzzer, "buzzer", on)
}

func (r *Real) Louvre(angleDeg int) error {
	if angleDeg < 0 {
		angleDeg = 0
	} else if angleDeg > 180 {
		angleDeg = 180
	}
	if !r.attached {
		if err := writeSysfs(filepath.Join(r.pwmDir, "period"), servoPeriodNs); err != nil {
			return fmt.Errorf("set servo period: %w", err)
		}
		if err := writeSysfs(filepath.Join(r.pwmDir, "enable"), 1); err != nil {
			return fmt.Errorf("enable servo: %w", err)
		}
		r.attached = true
	}
	duty := servoMinPulseNs + angleDeg*(servoMaxPulseNs-servoMinPulseNs)/180
	if err := writeSysfs(filepath.Join(r.pwmDir, "duty_cycle"), duty); err != nil {
		return fmt.Errorf("set servo angle %d: %w", angleDeg, err)
	}
	return nil
}

func (r *Real) DetachLouvre() error {
	if !r.attached {
		return nil
	}
	r.attached = false
	if err := writeSysfs(filepath.Join(r.pwmDir, "enable"), 0); err != nil {
		return fmt.Errorf("disable servo: %w", err)
	}
	return nil
}

// Close forces every output low, detaches the servo and releases the lines.
// Lines are reconfigured to input first so nothing keeps driving after exit.
func (r *Real) Close() error {
	var errs []error
	release := func(line *gpiocdev.Line, what string) {
		if line == nil {
			return
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", what, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", what, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", what, err))
		}
	}

	release(r.fan, "fan")
	for c, line := range r.leds {
		release(line, string(c))
	}
	release(r.buzzer, "buzzer")

	if err := r.DetachLouvre(); err != nil {
		errs = append(errs, err)
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func setLine(line *gpiocdev.Line, what string, on bool) error {
	if line == nil {
		return fmt.Errorf("%s line not claimed", what)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s: %w", what, err)
	}
	return nil
}

// exportPWM makes pwm<channel> appear under the chip directory. An already
// exported channel is fine.
func exportPWM(chipPath string, channel int) error {
	dir := filepath.Join(chipPath, fmt.Sprintf("pwm%d", channel))
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := writeSysfs(filepath.Join(chipPath, "export"), channel); err != nil {
		if _, statErr := os.Stat(dir); statErr == nil {
			return nil
		}
		return fmt.Errorf("export pwm channel %d: %w", channel, err)
	}
	return nil
}

func writeSysfs(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0o644)
}
