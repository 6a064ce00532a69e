// Package config loads configs/config.yml through viper. Every key has a
// code default so the daemon boots without a config file at all.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log      Log      `mapstructure:"log"`
	DB       DB       `mapstructure:"db"`
	Tick     Tick     `mapstructure:"tick"`
	Serial   Serial   `mapstructure:"serial"`
	Auth     Auth     `mapstructure:"auth"`
	Comfort  Comfort  `mapstructure:"comfort"`
	Registry Registry `mapstructure:"registry"`
	Sim      Sim      `mapstructure:"sim"`
	Pins     Pins     `mapstructure:"pins"`
	Sensors  Sensors  `mapstructure:"sensors"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type Tick struct {
	Interval time.Duration `mapstructure:"interval"`
}

type Serial struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
	Baud    int    `mapstructure:"baud"`
}

type Auth struct {
	Secret      string        `mapstructure:"secret"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	UnlockKey   string        `mapstructure:"unlock_key"`
	CaptureIdle time.Duration `mapstructure:"capture_idle"`
}

// Comfort holds the fixed personal factors of the PMV sample. Met is in met
// units (1 met = 58.15 W/m² of body surface).
type Comfort struct {
	Met         float64 `mapstructure:"met"`
	Clo         float64 `mapstructure:"clo"`
	AirVelocity float64 `mapstructure:"air_velocity"`
}

type Registry struct {
	Path  string `mapstructure:"path"`
	Slots int    `mapstructure:"slots"`
}

type Sim struct {
	Enabled     bool    `mapstructure:"enabled"`
	OutsideTemp float64 `mapstructure:"t_out"`
	Alpha       float64 `mapstructure:"alpha"`
	Beta        float64 `mapstructure:"beta"`
	HumidityOut float64 `mapstructure:"humidity_out"`
	LightPct    float64 `mapstructure:"light_pct"`
}

type Pins struct {
	Chip       string `mapstructure:"chip"`
	Fan        int    `mapstructure:"fan"`
	Red        int    `mapstructure:"red"`
	Green      int    `mapstructure:"green"`
	Blue       int    `mapstructure:"blue"`
	Buzzer     int    `mapstructure:"buzzer"`
	PIR        int    `mapstructure:"pir"`
	PWMChip    string `mapstructure:"pwmchip"`
	PWMChannel int    `mapstructure:"pwmchannel"`
}

type Sensors struct {
	AirPath      string  `mapstructure:"air_path"`
	GlobePath    string  `mapstructure:"globe_path"`
	HumidityPath string  `mapstructure:"humidity_path"`
	LightPath    string  `mapstructure:"light_path"`
	LightMax     float64 `mapstructure:"light_max"`
}

var (
	ErrBadSecret = errors.New("config: auth.secret must be exactly 6 characters")
	ErrBadTick   = errors.New("config: tick.interval must be positive")
	ErrBadSlots  = errors.New("config: registry.slots must be positive")
)

// ErrNotFound reports whether err means the config file itself was missing,
// which callers treat as "run on defaults".
func ErrNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "comfort.db")
	v.SetDefault("tick.interval", 10*time.Millisecond)
	v.SetDefault("serial.enabled", false)
	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("auth.secret", "147147")
	v.SetDefault("auth.max_attempts", 1)
	v.SetDefault("auth.unlock_key", "*")
	v.SetDefault("auth.capture_idle", 15*time.Second)
	v.SetDefault("comfort.met", 1.2)
	v.SetDefault("comfort.clo", 0.5)
	v.SetDefault("comfort.air_velocity", 0.1)
	v.SetDefault("registry.path", "registry.bin")
	v.SetDefault("registry.slots", 16)
	v.SetDefault("sim.enabled", true)
	v.SetDefault("sim.t_out", 32.0)
	v.SetDefault("sim.alpha", 0.02)
	v.SetDefault("sim.beta", 0.5)
	v.SetDefault("sim.humidity_out", 60.0)
	v.SetDefault("sim.light_pct", 40.0)
	v.SetDefault("pins.chip", "gpiochip0")
	v.SetDefault("pins.fan", 17)
	v.SetDefault("pins.red", 22)
	v.SetDefault("pins.green", 23)
	v.SetDefault("pins.blue", 24)
	v.SetDefault("pins.buzzer", 25)
	v.SetDefault("pins.pir", 27)
	v.SetDefault("pins.pwmchip", "/sys/class/pwm/pwmchip0")
	v.SetDefault("pins.pwmchannel", 0)
	v.SetDefault("sensors.air_path", "")
	v.SetDefault("sensors.globe_path", "")
	v.SetDefault("sensors.humidity_path", "")
	v.SetDefault("sensors.light_path", "")
	v.SetDefault("sensors.light_max", 1000.0)
}

// Load reads the config file at path (a directory holding config.yml) and
// unmarshals it over the defaults. A missing file is not an error; the
// returned bool says whether a file was actually read.
func Load(path string) (Config, bool, error) {
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path) // <path>/config.yml
	v.SetConfigName("config")

	read := true
	if err := v.ReadInConfig(); err != nil {
		if !ErrNotFound(err) {
			return Config{}, false, fmt.Errorf("read config: %w", err)
		}
		read = false
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, read, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, read, err
	}
	return cfg, read, nil
}

func (c Config) Validate() error {
	if len(c.Auth.Secret) != 6 {
		return ErrBadSecret
	}
	if c.Tick.Interval <= 0 {
		return ErrBadTick
	}
	if c.Registry.Slots <= 0 {
		return ErrBadSlots
	}
	return nil
}
