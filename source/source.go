// Package source provides the frame sources the viewer pulls distance and color frames from.
package source

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/rimage"
)

// ErrExhausted is returned by a source that has no more frames to give.
var ErrExhausted = errors.New("frame source exhausted")

// Mode selects which streams a source should produce.
type Mode struct {
	Depth calibration.DepthMode
	Color calibration.ColorMode
}

// IsDefault returns whether the mode asks for registered depth and visible color.
func (m Mode) IsDefault() bool {
	return m.Depth == calibration.DepthAligned && m.Color == calibration.ColorVisible
}

// A FrameSource produces pairs of same-sized distance and color frames. NextFrame blocks until
// a pair is available. The returned frames belong to the caller.
type FrameSource interface {
	NextFrame(ctx context.Context, mode Mode) (*rimage.DepthMap, *rimage.Image, error)
	Close(ctx context.Context) error
}

type limitedSource struct {
	FrameSource
	remaining int
}

// Limit wraps src so that it returns ErrExhausted after n frames have been produced. Failed
// acquisitions do not count.
func Limit(src FrameSource, n int) FrameSource {
	return &limitedSource{FrameSource: src, remaining: n}
}

func (ls *limitedSource) NextFrame(ctx context.Context, mode Mode) (*rimage.DepthMap, *rimage.Image, error) {
	if ls.remaining <= 0 {
		return nil, nil, ErrExhausted
	}
	dm, img, err := ls.FrameSource.NextFrame(ctx, mode)
	if err != nil {
		return nil, nil, err
	}
	ls.remaining--
	return dm, img, nil
}

// checkPair ensures a frame pair can be drawn together.
func checkPair(dm *rimage.DepthMap, img *rimage.Image) error {
	if dm.Width() != img.Width() || dm.Height() != img.Height() {
		return errors.Errorf("depth frame is %dx%d but color frame is %dx%d",
			dm.Width(), dm.Height(), img.Width(), img.Height())
	}
	if !dm.HasData() {
		return errors.New("empty frame")
	}
	return nil
}
