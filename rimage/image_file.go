package rimage

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
)

// NewImageFromFile returns an image read in from the given file. Anything the registered
// decoders understand (png, jpeg, gif, bmp, tiff, qoi, ppm) is accepted.
func NewImageFromFile(fn string) (*Image, error) {
	img, err := imaging.Open(fn, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "can't read image %q", fn)
	}
	return ConvertImage(img), nil
}

// NewDepthMapFromFile reads a depth map from an image file. 16-bit gray PNGs are read losslessly
// as millimeters.
func NewDepthMapFromFile(fn string) (dm *DepthMap, err error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read depth image %q", fn)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	// imaging's orientation fix redraws into NRGBA, so depth is decoded as is.
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode depth image %q", fn)
	}
	return ConvertImageToDepthMap(img)
}

// WriteImageToFile writes the image to a file, picking the encoding from the extension: .png,
// .jpg/.jpeg, .gif, .bmp and .tif/.tiff go through imaging, .qoi and .ppm through their
// dedicated encoders.
func WriteImageToFile(path string, img image.Image) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".qoi", ".ppm":
	default:
		if _, err := imaging.FormatFromExtension(ext); err != nil {
			return errors.Wrapf(err, "can't write %q", path)
		}
		return imaging.Save(img, path, imaging.PNGCompressionLevel(png.BestSpeed))
	}

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	if ext == ".qoi" {
		return qoi.Encode(f, img)
	}
	return ppm.Encode(f, img)
}
