package inject

import (
	"image"

	"go.viam.com/kinectviewer/viewer"
)

// ImageWriter is an injected image writer.
type ImageWriter struct {
	viewer.ImageWriter
	SaveFunc func(path string, img image.Image) error
}

// Save calls the injected Save or the real version.
func (w *ImageWriter) Save(path string, img image.Image) error {
	if w.SaveFunc == nil {
		return w.ImageWriter.Save(path, img)
	}
	return w.SaveFunc(path, img)
}
