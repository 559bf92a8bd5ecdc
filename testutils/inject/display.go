package inject

import (
	"context"
	"image"

	"go.viam.com/kinectviewer/viewer"
)

// Display is an injected display.
type Display struct {
	viewer.Display
	PresentFunc            func(ctx context.Context, img image.Image) error
	AdjustableValueFunc    func(name string) int
	SetAdjustableValueFunc func(name string, value int)
}

// Present calls the injected Present or the real version.
func (d *Display) Present(ctx context.Context, img image.Image) error {
	if d.PresentFunc == nil {
		return d.Display.Present(ctx, img)
	}
	return d.PresentFunc(ctx, img)
}

// AdjustableValue calls the injected AdjustableValue or the real version.
func (d *Display) AdjustableValue(name string) int {
	if d.AdjustableValueFunc == nil {
		return d.Display.AdjustableValue(name)
	}
	return d.AdjustableValueFunc(name)
}

// SetAdjustableValue calls the injected SetAdjustableValue or the real version.
func (d *Display) SetAdjustableValue(name string, value int) {
	if d.SetAdjustableValueFunc == nil {
		d.Display.SetAdjustableValue(name, value)
		return
	}
	d.SetAdjustableValueFunc(name, value)
}
