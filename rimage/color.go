package rimage

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 3-channel 8-bit sample.
type Color struct {
	R, G, B uint8
}

// NewColor returns a Color from its channels.
func NewColor(r, g, b uint8) Color {
	return Color{r, g, b}
}

// NewColorFromColor converts any color.Color, dropping alpha.
func NewColorFromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func (c Color) String() string {
	return fmt.Sprintf("(%3d,%3d,%3d)", c.R, c.G, c.B)
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%.2x%.2x%.2x", c.R, c.G, c.B)
}

// RGBA implements color.Color. The color is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = 0xffff
	return
}

// Gray returns the luma of the color.
func (c Color) Gray() uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

// Scale multiplies every channel by num/den, rounding to nearest.
func (c Color) Scale(num, den int) Color {
	s := func(v uint8) uint8 {
		return uint8((int(v)*num + den/2) / den)
	}
	return Color{s(c.R), s(c.G), s(c.B)}
}

func newColorFromColorful(cc colorful.Color) Color {
	r, g, b := cc.Clamped().RGB255()
	return Color{r, g, b}
}

// TheColorModel converts any color into a Color.
var TheColorModel = color.ModelFunc(func(c color.Color) color.Color {
	return NewColorFromColor(c)
})

// Some commonly used colors.
var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
	Green = Color{0, 255, 0}
)
