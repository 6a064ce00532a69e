//go:build !linux

package input

import (
	"errors"

	"github.com/rhony-martinez/proyecto-ac/internal/logger"
)

// PIRSource is not available off Linux; motion comes in through the input
// queue (tests, simulator) instead.
type PIRSource struct{}

// OpenPIR always fails on non-Linux platforms.
func OpenPIR(string, int, chan<- Input, *logger.Logger) (*PIRSource, error) {
	return nil, errors.New("input: pir requires linux gpio character devices")
}

// Close is a no-op on non-Linux platforms.
func (*PIRSource) Close() error {
	return nil
}
