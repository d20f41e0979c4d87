//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"

	"github.com/gmsotavio/librertos/kernel"
)

const hostLEDCount = 4

type hostHAL struct {
	irq    *hostIRQ
	logger *hostLogger
	leds   []LED
}

// New returns a host HAL implementation.
func New() HAL {
	logger := &hostLogger{w: os.Stdout}
	leds := make([]LED, hostLEDCount)
	for i := range leds {
		leds[i] = &hostLED{name: fmt.Sprintf("LED%d", i), logger: logger}
	}
	return &hostHAL{
		irq:    &hostIRQ{},
		logger: logger,
		leds:   leds,
	}
}

func (h *hostHAL) Port() kernel.Port { return h.irq }
func (h *hostHAL) Logger() Logger    { return h.logger }
func (h *hostHAL) LEDs() []LED       { return h.leds }

// hostIRQ maps the interrupt mask onto a mutex. While the kernel holds a
// critical section, a simulated interrupt source (the ticker goroutine,
// the window loop) blocks on entry, like a masked IRQ staying pending
// until interrupts are re-enabled.
type hostIRQ struct {
	mu sync.Mutex
}

func (p *hostIRQ) DisableInterrupts() kernel.InterruptState {
	p.mu.Lock()
	return 0
}

func (p *hostIRQ) RestoreInterrupts(kernel.InterruptState) {
	p.mu.Unlock()
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	name   string
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	changed := !l.on
	l.on = true
	l.mu.Unlock()
	if changed {
		l.logger.WriteLineString(l.name + ": HIGH")
	}
}

func (l *hostLED) Low() {
	l.mu.Lock()
	changed := l.on
	l.on = false
	l.mu.Unlock()
	if changed {
		l.logger.WriteLineString(l.name + ": LOW")
	}
}

// State reports the LED level; the window renderer polls it.
func (l *hostLED) State() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}
