package source

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/rimage"
)

// Sizes and distances of the synthetic scene.
const (
	SyntheticWidth  = 640
	SyntheticHeight = 480

	// SyntheticShadow is the width of the band on the left edge that has no readings.
	SyntheticShadow = 8
	// SyntheticParallax is how far raw depth is shifted from the registered frame.
	SyntheticParallax = 12

	syntheticWallNear = 2500
	syntheticWallFar  = 3500
	syntheticBallNear = 900
	syntheticBallFar  = 1600
)

func init() {
	RegisterDevice("synthetic", func(ctx context.Context, index int, logger logging.Logger) (FrameSource, error) {
		return NewSyntheticSource(SyntheticWidth, SyntheticHeight), nil
	})
}

// SyntheticSource renders an animated scene: a sloped back wall and a ball swinging toward and
// away from the sensor. It never fails.
type SyntheticSource struct {
	width, height int
	frame         int
}

// NewSyntheticSource returns a synthetic source producing frames of the given size.
func NewSyntheticSource(width, height int) *SyntheticSource {
	return &SyntheticSource{width: width, height: height}
}

// Frame returns how many frames have been produced.
func (ss *SyntheticSource) Frame() int {
	return ss.frame
}

// ball returns the center, radius and distance of the ball in frame n.
func (ss *SyntheticSource) ball(n int) (cx, cy, r float64, d int) {
	phase := float64(n) / 60 * 2 * math.Pi
	cx = float64(ss.width) * (0.5 + 0.3*math.Sin(phase))
	cy = float64(ss.height) * 0.5
	r = float64(min(ss.width, ss.height)) / 8
	d = syntheticBallNear + int(float64(syntheticBallFar-syntheticBallNear)*(0.5+0.5*math.Cos(phase)))
	return cx, cy, r, d
}

// NextFrame renders the next frame of the scene.
func (ss *SyntheticSource) NextFrame(ctx context.Context, mode Mode) (*rimage.DepthMap, *rimage.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if ss.width <= 0 || ss.height <= 0 {
		return nil, nil, errors.Errorf("invalid synthetic frame size %dx%d", ss.width, ss.height)
	}
	cx, cy, r, ballDepth := ss.ball(ss.frame)
	ss.frame++

	dm := rimage.NewEmptyDepthMap(ss.width, ss.height)
	img := rimage.NewImage(ss.width, ss.height)
	for y := 0; y < ss.height; y++ {
		for x := 0; x < ss.width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			inBall := dx*dx+dy*dy <= r*r

			var d int
			var c rimage.Color
			if inBall {
				// bulge toward the sensor at the center
				d = ballDepth - int(r-math.Sqrt(r*r-dx*dx-dy*dy))
				c = rimage.NewColor(220, 40, 40)
			} else {
				d = syntheticWallNear + (syntheticWallFar-syntheticWallNear)*y/max(ss.height-1, 1)
				shade := uint8(80 + 100*x/max(ss.width-1, 1))
				c = rimage.NewColor(shade, shade, 200)
			}
			if x < SyntheticShadow {
				d = 0
			}
			dm.Set(x, y, rimage.Depth(d))

			if mode.Color == calibration.ColorInfrared {
				c = infraredAt(d)
			}
			img.SetXY(x, y, c)
		}
	}
	if mode.Depth == calibration.DepthRaw {
		dm = shiftRight(dm, SyntheticParallax)
	}
	return dm, img, nil
}

// infraredAt approximates the reflected intensity of a surface at distance d.
func infraredAt(d int) rimage.Color {
	if d <= 0 {
		return rimage.Black
	}
	v := uint8(lo.Clamp(255*syntheticBallNear/d, 0, 255))
	return rimage.NewColor(v, v, v)
}

// shiftRight moves every column of dm right by n pixels, leaving no readings behind.
func shiftRight(dm *rimage.DepthMap, n int) *rimage.DepthMap {
	out := rimage.NewEmptyDepthMap(dm.Width(), dm.Height())
	for y := 0; y < dm.Height(); y++ {
		for x := n; x < dm.Width(); x++ {
			out.Set(x, y, dm.GetDepth(x-n, y))
		}
	}
	return out
}

// Close does nothing.
func (ss *SyntheticSource) Close(ctx context.Context) error {
	return nil
}
