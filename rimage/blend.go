package rimage

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrMaskSize is returned when a mask does not cover the image it is applied to.
var ErrMaskSize = errors.New("mask and image sizes differ")

// Blend highlights the masked pixels of img. The result is
//
//	ratio/100 * img + (1 - ratio/100) * (img where mask else black)
//
// so masked pixels always keep their color and the rest fade towards black as ratio drops. ratio
// is clamped to [0, 100]. At 100 the output equals img, at 0 it equals the masked image.
func Blend(img *Image, mask *Mask, ratio int) (*Image, error) {
	if img.Width() != mask.Width() || img.Height() != mask.Height() {
		return nil, errors.Wrapf(ErrMaskSize, "image %v mask %v", img.Bounds(), mask.Bounds())
	}
	ratio = lo.Clamp(ratio, 0, 100)

	out := NewImage(img.Width(), img.Height())
	for k, c := range img.data {
		if mask.data[k] {
			out.data[k] = c
			continue
		}
		out.data[k] = c.Scale(ratio, 100)
	}
	return out, nil
}

// ApplyMask returns img with every unmasked pixel set to black.
func ApplyMask(img *Image, mask *Mask) (*Image, error) {
	return Blend(img, mask, 0)
}
