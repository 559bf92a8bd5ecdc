package rimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestDepthMapBasics(t *testing.T) {
	dm := NewEmptyDepthMap(4, 3)
	test.That(t, dm.HasData(), test.ShouldBeTrue)
	test.That(t, dm.Width(), test.ShouldEqual, 4)
	test.That(t, dm.Height(), test.ShouldEqual, 3)
	test.That(t, dm.Contains(3, 2), test.ShouldBeTrue)
	test.That(t, dm.Contains(4, 2), test.ShouldBeFalse)
	test.That(t, dm.Contains(-1, 0), test.ShouldBeFalse)

	minD, maxD := dm.MinMax()
	test.That(t, minD, test.ShouldEqual, 0)
	test.That(t, maxD, test.ShouldEqual, 0)

	dm.Set(1, 2, 700)
	dm.Set(3, 0, 1200)
	dm.Set(0, 0, 300)
	test.That(t, dm.GetDepth(1, 2), test.ShouldEqual, 700)
	test.That(t, dm.Get(image.Pt(3, 0)), test.ShouldEqual, 1200)

	minD, maxD = dm.MinMax()
	test.That(t, minD, test.ShouldEqual, 300)
	test.That(t, maxD, test.ShouldEqual, 1200)

	clone := dm.Clone()
	clone.Set(1, 2, 1)
	test.That(t, dm.GetDepth(1, 2), test.ShouldEqual, 700)

	test.That(t, dm.ValidMask().Count(), test.ShouldEqual, 3)
	inRange := dm.InRangeMask(300, 700)
	test.That(t, inRange.Count(), test.ShouldEqual, 2)
	test.That(t, inRange.Get(0, 0), test.ShouldBeTrue)
	test.That(t, inRange.Get(1, 2), test.ShouldBeTrue)
	test.That(t, inRange.Get(3, 0), test.ShouldBeFalse)
	// an invalid pixel is never in range even if zero is inside the window
	test.That(t, dm.InRangeMask(0, 100).Count(), test.ShouldEqual, 0)
}

func TestGray16RoundTrip(t *testing.T) {
	dm := NewEmptyDepthMap(3, 2)
	dm.Set(0, 0, 1)
	dm.Set(2, 1, 6000)
	dm.Set(1, 1, -4)

	gray := dm.ToGray16Picture()
	test.That(t, gray.Gray16At(2, 1).Y, test.ShouldEqual, 6000)
	test.That(t, gray.Gray16At(1, 1).Y, test.ShouldEqual, 0)

	back, err := ConvertImageToDepthMap(gray)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.GetDepth(0, 0), test.ShouldEqual, 1)
	test.That(t, back.GetDepth(2, 1), test.ShouldEqual, 6000)
	test.That(t, back.GetDepth(1, 1), test.ShouldEqual, 0)

	big := image.NewGray16(image.Rect(0, 0, 1, 1))
	big.SetGray16(0, 0, color.Gray16{Y: 60000})
	clamped, err := ConvertImageToDepthMap(big)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, clamped.GetDepth(0, 0), test.ShouldEqual, MaxDepth)

	_, err = ConvertImageToDepthMap(nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ConvertImageToDepthMap(image.NewGray16(image.Rectangle{}))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConvertImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	src.SetRGBA(11, 11, color.RGBA{1, 2, 3, 255})
	img := ConvertImage(src)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 3, 2))
	test.That(t, img.GetXY(1, 1), test.ShouldResemble, Color{1, 2, 3})
	test.That(t, ConvertImage(img), test.ShouldEqual, img)

	rgba := img.ToRGBA()
	test.That(t, rgba.RGBAAt(1, 1), test.ShouldResemble, color.RGBA{1, 2, 3, 255})
	test.That(t, NewColorFromColor(color.RGBA{9, 8, 7, 255}), test.ShouldResemble, Color{9, 8, 7})
	test.That(t, Color{255, 0, 16}.Hex(), test.ShouldEqual, "#ff0010")
}
