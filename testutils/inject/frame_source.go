// Package inject provides fakes whose behavior is set per test through function fields.
package inject

import (
	"context"

	"go.viam.com/kinectviewer/rimage"
	"go.viam.com/kinectviewer/source"
)

// FrameSource is an injected frame source.
type FrameSource struct {
	source.FrameSource
	NextFrameFunc func(ctx context.Context, mode source.Mode) (*rimage.DepthMap, *rimage.Image, error)
	CloseFunc     func(ctx context.Context) error
}

// NextFrame calls the injected NextFrame or the real version.
func (fs *FrameSource) NextFrame(ctx context.Context, mode source.Mode) (*rimage.DepthMap, *rimage.Image, error) {
	if fs.NextFrameFunc == nil {
		return fs.FrameSource.NextFrame(ctx, mode)
	}
	return fs.NextFrameFunc(ctx, mode)
}

// Close calls the injected Close or the real version.
func (fs *FrameSource) Close(ctx context.Context) error {
	if fs.CloseFunc == nil {
		if fs.FrameSource == nil {
			return nil
		}
		return fs.FrameSource.Close(ctx)
	}
	return fs.CloseFunc(ctx)
}
