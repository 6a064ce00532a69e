package input

import (
	"context"
	"fmt"

	"go.bug.st/serial"

	"github.com/rhony-martinez/proyecto-ac/internal/logger"
)

// SerialSource reads the single-character debug command channel from a
// serial port (9600 8N1 by contract).
type SerialSource struct {
	port serial.Port
	name string
	log  *logger.Logger
}

// OpenSerial opens the named port at the given baud rate.
func OpenSerial(name string, baud int, log *logger.Logger) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("input: open serial %s: %w", name, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SerialSource{port: port, name: name, log: log}, nil
}

// Run pumps bytes into out until the port fails or ctx is canceled. CR and
// LF are line-terminal framing noise and are skipped; every other byte is
// forwarded as a command input (the control loop decides whether a byte is
// a command or feeds an active naming session). A full queue drops the byte
// rather than stall the port.
func (s *SerialSource) Run(ctx context.Context, out chan<- Input) {
	buf := make([]byte, 64)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Errorw("serial read failed", "port", s.name, "error", err)
			}
			return
		}
		for _, b := range buf[:n] {
			if b == '\r' || b == '\n' {
				continue
			}
			select {
			case out <- Input{Kind: KindCommand, Byte: b}:
			case <-ctx.Done():
				return
			default:
				s.log.Warnw("input queue full, dropping byte", "byte", b)
			}
		}
	}
}

// Close closes the port, unblocking a pending Read.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
