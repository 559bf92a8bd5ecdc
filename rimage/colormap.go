package rimage

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Colormap maps an 8-bit scalar to a color.
type Colormap [256]Color

// At returns the color for v.
func (cm *Colormap) At(v uint8) Color {
	return cm[v]
}

type colormapStop struct {
	pos float64
	c   colorful.Color
}

// Dark blue through cyan, yellow and red to dark red, the classic "jet" ramp.
var jetStops = []colormapStop{
	{0, colorful.Color{R: 0, G: 0, B: 0.5}},
	{0.125, colorful.Color{R: 0, G: 0, B: 1}},
	{0.375, colorful.Color{R: 0, G: 1, B: 1}},
	{0.625, colorful.Color{R: 1, G: 1, B: 0}},
	{0.875, colorful.Color{R: 1, G: 0, B: 0}},
	{1, colorful.Color{R: 0.5, G: 0, B: 0}},
}

var (
	jetOnce sync.Once
	jet     *Colormap
)

// Jet returns the shared jet colormap.
func Jet() *Colormap {
	jetOnce.Do(func() {
		jet = newColormap(jetStops)
	})
	return jet
}

// newColormap linearly interpolates (in RGB) between sorted stops covering [0, 1].
func newColormap(stops []colormapStop) *Colormap {
	cm := &Colormap{}
	seg := 0
	for v := 0; v < len(cm); v++ {
		t := float64(v) / 255
		for seg < len(stops)-2 && t > stops[seg+1].pos {
			seg++
		}
		a, b := stops[seg], stops[seg+1]
		frac := (t - a.pos) / (b.pos - a.pos)
		cm[v] = newColorFromColorful(a.c.BlendRgb(b.c, frac))
	}
	return cm
}
