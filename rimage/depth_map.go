package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// Depth is the distance in millimeters reported for a single pixel. Zero means the sensor had no
// reading for that pixel.
type Depth int16

// MaxDepth is the largest distance a DepthMap can hold.
const MaxDepth = Depth(math.MaxInt16)

// DepthMap is a fixed-size grid of millimeter distances, stored row-major.
type DepthMap struct {
	width  int
	height int

	data []Depth
}

// NewEmptyDepthMap returns a zeroed (all invalid) depth map.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// HasData returns whether the map has any pixels at all.
func (dm *DepthMap) HasData() bool {
	return dm.width > 0 && dm.height > 0 && dm.data != nil
}

// Width returns the horizontal size of the map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the vertical size of the map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the rectangle covering the map.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// Contains returns whether (x, y) addresses a pixel of the map.
func (dm *DepthMap) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// Get returns the depth at the given point.
func (dm *DepthMap) Get(p image.Point) Depth {
	return dm.data[dm.kxy(p.X, p.Y)]
}

// GetDepth returns the depth at (x, y).
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[dm.kxy(x, y)]
}

// Set sets the depth at (x, y).
func (dm *DepthMap) Set(x, y int, val Depth) {
	dm.data[dm.kxy(x, y)] = val
}

// Clone returns a deep copy of the map.
func (dm *DepthMap) Clone() *DepthMap {
	data := make([]Depth, len(dm.data))
	copy(data, dm.data)
	return &DepthMap{width: dm.width, height: dm.height, data: data}
}

// MinMax returns the smallest and largest valid depths. Both are zero if nothing is valid.
func (dm *DepthMap) MinMax() (Depth, Depth) {
	minDepth := MaxDepth
	maxDepth := Depth(0)
	found := false

	for _, z := range dm.data {
		if z == 0 {
			continue
		}
		found = true
		minDepth = min(minDepth, z)
		maxDepth = max(maxDepth, z)
	}

	if !found {
		return 0, 0
	}
	return minDepth, maxDepth
}

// ValidMask marks every pixel that has a reading.
func (dm *DepthMap) ValidMask() *Mask {
	mask := NewMask(dm.width, dm.height)
	for k, z := range dm.data {
		mask.data[k] = z != 0
	}
	return mask
}

// InRangeMask marks every valid pixel whose depth lies in [lo, hi] inclusive.
func (dm *DepthMap) InRangeMask(lo, hi int) *Mask {
	mask := NewMask(dm.width, dm.height)
	for k, z := range dm.data {
		d := int(z)
		mask.data[k] = z != 0 && d >= lo && d <= hi
	}
	return mask
}

// ToGray16Picture renders the map as a 16-bit gray image holding the raw millimeter values.
// Negative depths are written as zero.
func (dm *DepthMap) ToGray16Picture() *image.Gray16 {
	img := image.NewGray16(dm.Bounds())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			z := dm.GetDepth(x, y)
			if z < 0 {
				z = 0
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(z)})
		}
	}
	return img
}

// ConvertImageToDepthMap takes an image and figures out if it's already a DepthMap or a
// gray image holding millimeters. Gray16 values above MaxDepth are clamped. Any other image type
// is interpreted through its 16-bit luminance.
func ConvertImageToDepthMap(img image.Image) (*DepthMap, error) {
	if img == nil {
		return nil, errors.New("cannot convert nil image to depth map")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.Errorf("cannot convert empty image %v to depth map", bounds)
	}
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())

	switch ii := img.(type) {
	case *DepthMap:
		return ii.Clone(), nil
	case *image.Gray16:
		for y := 0; y < dm.height; y++ {
			for x := 0; x < dm.width; x++ {
				dm.Set(x, y, clampToDepth(int(ii.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)))
			}
		}
	case *image.Gray:
		for y := 0; y < dm.height; y++ {
			for x := 0; x < dm.width; x++ {
				dm.Set(x, y, Depth(ii.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
	default:
		for y := 0; y < dm.height; y++ {
			for x := 0; x < dm.width; x++ {
				g := color.Gray16Model.Convert(ii.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				dm.Set(x, y, clampToDepth(int(g.Y)))
			}
		}
	}
	return dm, nil
}

func clampToDepth(v int) Depth {
	if v > int(MaxDepth) {
		return MaxDepth
	}
	return Depth(v)
}

// The following make a DepthMap usable wherever an image.Image is accepted, e.g. an image writer.

// ColorModel returns the 16-bit gray model.
func (dm *DepthMap) ColorModel() color.Model {
	return color.Gray16Model
}

// At returns the depth at (x, y) as a 16-bit gray value.
func (dm *DepthMap) At(x, y int) color.Color {
	if !dm.Contains(x, y) {
		return color.Gray16{}
	}
	z := dm.GetDepth(x, y)
	if z < 0 {
		z = 0
	}
	return color.Gray16{Y: uint16(z)}
}
