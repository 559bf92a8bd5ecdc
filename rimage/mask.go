package rimage

import "image"

// Mask is a boolean per-pixel grid, derived from a single frame.
type Mask struct {
	width, height int
	data          []bool
}

// NewMask returns an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, data: make([]bool, width*height)}
}

// Width returns the horizontal size.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the vertical size.
func (m *Mask) Height() int {
	return m.height
}

// Bounds returns the rectangle covering the mask.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Get returns the mask value at (x, y).
func (m *Mask) Get(x, y int) bool {
	return m.data[(y*m.width)+x]
}

// Set sets the mask value at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.data[(y*m.width)+x] = v
}

// Count returns the number of true pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Fraction returns the share of true pixels, zero for an empty mask.
func (m *Mask) Fraction() float64 {
	if len(m.data) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.data))
}
