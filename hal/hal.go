package hal

import (
	"errors"

	"github.com/gmsotavio/librertos/kernel"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// HAL provides the only contact point between the kernel demo and the
// outside world: the interrupt-mask port the kernel runs on, a logger
// and the board LEDs.
type HAL interface {
	Port() kernel.Port
	Logger() Logger
	LEDs() []LED
}
