//go:build linux

package input

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/rhony-martinez/proyecto-ac/internal/logger"
)

// PIRSource watches a motion sensor line and emits one motion input per
// rising edge.
type PIRSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// OpenPIR requests the PIR line with pull-down and a rising-edge handler
// that feeds out. Edges arriving faster than the loop drains are dropped;
// motion is level-triggered at the sensor and repeats on its own.
func OpenPIR(chipName string, offset int, out chan<- Input, log *logger.Logger) (*PIRSource, error) {
	if log == nil {
		log = logger.Nop()
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("input: open gpio chip %s: %w", chipName, err)
	}
	line, err := chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			select {
			case out <- Input{Kind: KindMotion}:
			default:
				log.Debugw("motion pulse dropped, queue full")
			}
		}),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("input: request pir line %d: %w", offset, err)
	}
	return &PIRSource{chip: chip, line: line}, nil
}

// Close releases the line and chip.
func (p *PIRSource) Close() error {
	var firstErr error
	if p.line != nil {
		if err := p.line.Close(); err != nil {
			firstErr = fmt.Errorf("input: close pir line: %w", err)
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("input: close gpio chip: %w", err)
		}
	}
	return firstErr
}
