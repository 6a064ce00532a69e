package sensors

import (
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultLightFullScale is the illuminance, in lux, mapped to 100%.
const DefaultLightFullScale = 1000.0

// Files reads each field from its own sysfs path: 1-wire w1_slave images for
// the air and globe probes, iio values for humidity and illuminance. An empty
// path or an unreadable source yields NaN for that field only.
type Files struct {
	AirPath      string // w1_slave of the air probe
	GlobePath    string // w1_slave of the globe probe
	HumidityPath string // iio in_humidityrelative_input
	LightPath    string // iio in_illuminance_input
	LightMax     float64
}

// Read never fails; per-field validity travels inside the Reading.
func (f *Files) Read() (Reading, error) {
	full := f.LightMax
	if full <= 0 {
		full = DefaultLightFullScale
	}
	return Reading{
		AirTemp:     readW1(f.AirPath),
		RadiantTemp: readW1(f.GlobePath),
		Humidity:    readScalar(f.HumidityPath),
		LightPct:    clampPct(readScalar(f.LightPath) / full * 100),
	}, nil
}

// readW1 parses a w1_slave image. The kernel prints two lines: the first ends
// in YES when the CRC checked out, the second carries t=<milli-degrees>.
func readW1(path string) float64 {
	if path == "" {
		return math.NaN()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return math.NaN()
	}
	lines := strings.SplitN(strings.TrimSpace(string(raw)), "\n", 2)
	if len(lines) < 2 || !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return math.NaN()
	}
	i := strings.LastIndex(lines[1], "t=")
	if i < 0 {
		return math.NaN()
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][i+2:]))
	if err != nil {
		return math.NaN()
	}
	return float64(milli) / 1000
}

func readScalar(path string) float64 {
	if path == "" {
		return math.NaN()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func clampPct(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
