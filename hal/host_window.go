//go:build !tinygo

package hal

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gmsotavio/librertos/internal/buildinfo"
)

const (
	ledCell = 48
	ledGap  = 16
)

// RunWindow starts a desktop window that shows the simulated board LEDs
// while stepping the demo. It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error) error {
	h := New().(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	w := ledGap + len(h.leds)*(ledCell+ledGap)
	hgt := ledCell + 2*ledGap
	ebiten.SetWindowTitle("librertos (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*2, hgt*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h    *hostHAL
	step func() error
}

func (g *hostGame) Update() error {
	if g.step != nil {
		return g.step()
	}
	return nil
}

var (
	panelColor  = color.RGBA{0x20, 0x24, 0x28, 0xFF}
	ledOffColor = color.RGBA{0x38, 0x20, 0x20, 0xFF}
	ledOnColor  = color.RGBA{0xE8, 0x40, 0x30, 0xFF}
)

func (g *hostGame) Draw(screen *ebiten.Image) {
	screen.Fill(panelColor)
	for i, led := range g.h.leds {
		c := ledOffColor
		if led.(*hostLED).State() {
			c = ledOnColor
		}
		x := ledGap + i*(ledCell+ledGap)
		r := image.Rect(x, ledGap, x+ledCell, ledGap+ledCell)
		screen.SubImage(r).(*ebiten.Image).Fill(c)
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ledGap + len(g.h.leds)*(ledCell+ledGap), ledCell + 2*ledGap
}
