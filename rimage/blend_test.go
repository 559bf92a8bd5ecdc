package rimage

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func gradientImage(width, height int) *Image {
	img := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetXY(x, y, Color{uint8(x * 20), uint8(y * 30), uint8(255 - x*y)})
		}
	}
	return img
}

func TestBlendAllInRange(t *testing.T) {
	dm := NewEmptyDepthMap(8, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			dm.Set(x, y, 500)
		}
	}
	img := gradientImage(8, 6)
	inRange := dm.InRangeMask(0, 1000)
	test.That(t, inRange.Count(), test.ShouldEqual, 48)

	full, err := Blend(img, inRange, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, full.Equal(img), test.ShouldBeTrue)

	masked, err := ApplyMask(img, inRange)
	test.That(t, err, test.ShouldBeNil)
	none, err := Blend(img, inRange, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, none.Equal(masked), test.ShouldBeTrue)
	test.That(t, none.Equal(img), test.ShouldBeTrue)
}

func TestBlendFadesOutOfRange(t *testing.T) {
	dm := NewEmptyDepthMap(2, 1)
	dm.Set(0, 0, 500)
	dm.Set(1, 0, 3000)
	img := NewImage(2, 1)
	img.SetXY(0, 0, Color{200, 100, 50})
	img.SetXY(1, 0, Color{200, 100, 50})
	inRange := dm.InRangeMask(0, 1000)

	out, err := Blend(img, inRange, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.GetXY(1, 0), test.ShouldResemble, Color{200, 100, 50})

	out, err = Blend(img, inRange, 50)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.GetXY(0, 0), test.ShouldResemble, Color{200, 100, 50})
	test.That(t, out.GetXY(1, 0), test.ShouldResemble, Color{100, 50, 25})

	out, err = Blend(img, inRange, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.GetXY(0, 0), test.ShouldResemble, Color{200, 100, 50})
	test.That(t, out.GetXY(1, 0), test.ShouldResemble, Black)

	// out of bounds ratios are clamped
	over, err := Blend(img, inRange, 250)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, over.Equal(img), test.ShouldBeTrue)
	under, err := Blend(img, inRange, -3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, under.GetXY(1, 0), test.ShouldResemble, Black)
}

func TestBlendSizeMismatch(t *testing.T) {
	_, err := Blend(NewImage(4, 4), NewMask(4, 3), 50)
	test.That(t, errors.Is(err, ErrMaskSize), test.ShouldBeTrue)
}
