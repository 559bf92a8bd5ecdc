package rimage

import (
	"image"
	"image/color"
)

// Image is a fixed-size 3-channel 8-bit image, stored row-major.
type Image struct {
	data          []Color
	width, height int
}

// NewImage returns a black image.
func NewImage(width, height int) *Image {
	return &Image{
		data:   make([]Color, width*height),
		width:  width,
		height: height,
	}
}

// ConvertImage converts any image.Image into an Image whose origin is (0, 0).
func ConvertImage(img image.Image) *Image {
	if ii, ok := img.(*Image); ok {
		return ii
	}
	bounds := img.Bounds()
	out := NewImage(bounds.Dx(), bounds.Dy())
	switch ii := img.(type) {
	case *image.RGBA:
		for y := 0; y < out.height; y++ {
			for x := 0; x < out.width; x++ {
				c := ii.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				out.setXY(x, y, Color{c.R, c.G, c.B})
			}
		}
	case *image.NRGBA:
		for y := 0; y < out.height; y++ {
			for x := 0; x < out.width; x++ {
				c := ii.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				out.setXY(x, y, Color{c.R, c.G, c.B})
			}
		}
	default:
		for y := 0; y < out.height; y++ {
			for x := 0; x < out.width; x++ {
				out.setXY(x, y, NewColorFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
			}
		}
	}
	return out
}

// ColorModel returns the Color model.
func (i *Image) ColorModel() color.Model {
	return TheColorModel
}

// In returns whether (x, y) is inside the image.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

func (i *Image) kxy(x, y int) int {
	return (y * i.width) + x
}

// Bounds returns the image bounds, always anchored at (0, 0).
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// Width returns the horizontal size.
func (i *Image) Width() int {
	return i.width
}

// Height returns the vertical size.
func (i *Image) Height() int {
	return i.height
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	if !i.In(x, y) {
		return Color{}
	}
	return i.data[i.kxy(x, y)]
}

// Get returns the color at p.
func (i *Image) Get(p image.Point) Color {
	return i.data[i.kxy(p.X, p.Y)]
}

// GetXY returns the color at (x, y).
func (i *Image) GetXY(x, y int) Color {
	return i.data[i.kxy(x, y)]
}

func (i *Image) setXY(x, y int, c Color) {
	i.data[i.kxy(x, y)] = c
}

// SetXY sets the color at (x, y).
func (i *Image) SetXY(x, y int, c Color) {
	i.setXY(x, y, c)
}

// Set sets the color at p.
func (i *Image) Set(p image.Point, c Color) {
	i.setXY(p.X, p.Y, c)
}

// Fill paints every pixel with c.
func (i *Image) Fill(c Color) {
	for k := range i.data {
		i.data[k] = c
	}
}

// Clone returns a deep copy of the image.
func (i *Image) Clone() *Image {
	data := make([]Color, len(i.data))
	copy(data, i.data)
	return &Image{data: data, width: i.width, height: i.height}
}

// Equal returns whether both images have the same size and pixels.
func (i *Image) Equal(other *Image) bool {
	if i.width != other.width || i.height != other.height {
		return false
	}
	for k, c := range i.data {
		if other.data[k] != c {
			return false
		}
	}
	return true
}

// ToRGBA returns a standard library copy of the image, e.g. for drawing or encoding.
func (i *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(i.Bounds())
	for y := 0; y < i.height; y++ {
		for x := 0; x < i.width; x++ {
			c := i.GetXY(x, y)
			out.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 255})
		}
	}
	return out
}
