//go:build tinygo

package hal

import (
	"image/color"
	"machine"
	"runtime/interrupt"

	"tinygo.org/x/drivers/ws2812"

	"github.com/gmsotavio/librertos/kernel"
)

type tinyHAL struct {
	irq    irqPort
	logger *uartLogger
	leds   []LED
}

// New returns a HAL for the running board.
//
// UART: UART0 on the board default pins, 115200 8N1. The board status
// LED is LED 0; boards with an RGB pixel can add it with NewWithNeopixel.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &tinyHAL{
		logger: &uartLogger{uart: uart},
		leds:   []LED{&pinLED{pin: ledPin}},
	}
}

// NewWithNeopixel returns the board HAL with a ws2812 pixel on pin as a
// second LED.
func NewWithNeopixel(pin machine.Pin) HAL {
	h := New().(*tinyHAL)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	h.leds = append(h.leds, &ws2812LED{dev: ws2812.New(pin)})
	return h
}

func (h *tinyHAL) Port() kernel.Port { return &h.irq }
func (h *tinyHAL) Logger() Logger    { return h.logger }
func (h *tinyHAL) LEDs() []LED       { return h.leds }

// irqPort maps the kernel critical section onto the interrupt mask.
type irqPort struct{}

func (irqPort) DisableInterrupts() kernel.InterruptState {
	return kernel.InterruptState(interrupt.Disable())
}

func (irqPort) RestoreInterrupts(s kernel.InterruptState) {
	interrupt.Restore(interrupt.State(s))
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	l.WriteLineBytes([]byte(s))
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.Write([]byte("\r\n"))
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type ws2812LED struct {
	dev ws2812.Device
}

func (l *ws2812LED) High() {
	l.dev.WriteColors([]color.RGBA{{R: 0x20, G: 0x00, B: 0x00, A: 0xFF}})
}

func (l *ws2812LED) Low() {
	l.dev.WriteColors([]color.RGBA{{A: 0xFF}})
}
