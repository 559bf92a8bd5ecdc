package rimage

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrNonPositiveRange is returned when a depth window has no width to normalize over.
var ErrNonPositiveRange = errors.New("depth range must be positive")

// ScaleDepth linearly rescales d so that low maps to 0 and low+span maps to 255, clamping
// everything outside. span must be positive.
func ScaleDepth(d Depth, low, span int) uint8 {
	v := math.Round(float64(int(d)-low) * 255.0 / float64(span))
	return uint8(lo.Clamp(v, 0, 255))
}

// Colorize maps every valid pixel of dm through cmap after rescaling it into the [low, low+span]
// window. Invalid pixels stay black. The returned mask marks the valid pixels.
func Colorize(dm *DepthMap, low, span int, cmap *Colormap) (*Image, *Mask, error) {
	if span <= 0 {
		return nil, nil, errors.Wrapf(ErrNonPositiveRange, "got %d", span)
	}

	out := NewImage(dm.Width(), dm.Height())
	valid := dm.ValidMask()
	for k, ok := range valid.data {
		if ok {
			out.data[k] = cmap.At(ScaleDepth(dm.data[k], low, span))
		}
	}
	return out, valid, nil
}
