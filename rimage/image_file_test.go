package rimage

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestDepthPNGRoundTrip(t *testing.T) {
	dm := NewEmptyDepthMap(5, 4)
	dm.Set(0, 0, 420)
	dm.Set(4, 3, 9999)

	fn := filepath.Join(t.TempDir(), "frame_d.png")
	test.That(t, WriteImageToFile(fn, dm), test.ShouldBeNil)

	back, err := NewDepthMapFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Width(), test.ShouldEqual, 5)
	test.That(t, back.Height(), test.ShouldEqual, 4)
	test.That(t, back.GetDepth(0, 0), test.ShouldEqual, 420)
	test.That(t, back.GetDepth(4, 3), test.ShouldEqual, 9999)
	test.That(t, back.GetDepth(2, 2), test.ShouldEqual, 0)
}

func TestColorRoundTripLossless(t *testing.T) {
	img := NewImage(4, 3)
	img.SetXY(1, 1, Color{10, 200, 30})
	img.SetXY(3, 2, Color{255, 1, 128})

	dir := t.TempDir()
	for _, name := range []string{"frame_c.png", "frame_c.qoi", "frame_c.ppm"} {
		fn := filepath.Join(dir, name)
		test.That(t, WriteImageToFile(fn, img), test.ShouldBeNil)

		back, err := NewImageFromFile(fn)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back.Equal(img), test.ShouldBeTrue)
	}
}

func TestWriteImageToFileJPEG(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "frame_c.jpg")
	test.That(t, WriteImageToFile(fn, gradientImage(16, 16)), test.ShouldBeNil)
	back, err := NewImageFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Bounds(), test.ShouldResemble, image.Rect(0, 0, 16, 16))
}

func TestImageFileErrors(t *testing.T) {
	dir := t.TempDir()
	err := WriteImageToFile(filepath.Join(dir, "frame.xyz"), NewImage(1, 1))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewImageFromFile(filepath.Join(dir, "missing.png"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing.png")

	_, err = NewDepthMapFromFile(filepath.Join(dir, "missing_d.png"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing_d.png")

	garbage := filepath.Join(dir, "garbage.png")
	test.That(t, os.WriteFile(garbage, []byte("not a png"), 0o600), test.ShouldBeNil)
	_, err = NewDepthMapFromFile(garbage)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDepthFromEightBitGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 77})
	dm, err := ConvertImageToDepthMap(gray)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dm.GetDepth(1, 0), test.ShouldEqual, 77)
	test.That(t, dm.GetDepth(0, 0), test.ShouldEqual, 0)
}
