// Package viewer runs the render loop that turns frames into the calibrated multi-panel view.
package viewer

import (
	"context"
	"fmt"
	"image"
	"time"
	"unicode"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/canvas"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/probe"
	"go.viam.com/kinectviewer/rimage"
	"go.viam.com/kinectviewer/source"
)

// Controls lists the display values the loop reads every frame.
var Controls = []string{calibration.ControlMin, calibration.ControlRange, calibration.ControlBlend}

// Options tunes the loop.
type Options struct {
	Buckets         int
	BucketWidth     int
	LowPercentile   float64
	HighPercentile  float64
	HistoryCapacity int
	FollowPointer   bool
	// RetryDelay is how long to wait after a failed acquisition.
	RetryDelay time.Duration
}

// DefaultOptions returns the options the viewer starts with.
func DefaultOptions() Options {
	return Options{
		Buckets:         calibration.DefaultBuckets,
		BucketWidth:     calibration.DefaultBucketWidth,
		LowPercentile:   calibration.DefaultLowPercentile,
		HighPercentile:  calibration.DefaultHighPercentile,
		HistoryCapacity: probe.DefaultHistoryCapacity,
		RetryDelay:      15 * time.Millisecond,
	}
}

// Viewer owns the calibration state, probe and canvas, and drives them from one goroutine.
type Viewer struct {
	opts    Options
	src     source.FrameSource
	display Display
	input   InputSource
	saver   *Saver
	clock   clock.Clock
	logger  logging.Logger

	state   *calibration.State
	cmap    *rimage.Colormap
	canvas  *canvas.Canvas
	tracker *probe.Tracker

	frames    int
	failures  int
	lastDepth *rimage.DepthMap
	lastColor *rimage.Image
	lastHist  *calibration.Histogram
}

// New returns a viewer using state as its initial calibration. The display's adjustable values
// are set from state.
func New(
	opts Options,
	state *calibration.State,
	src source.FrameSource,
	display Display,
	input InputSource,
	saver *Saver,
	clk clock.Clock,
	logger logging.Logger,
) (*Viewer, error) {
	if opts.Buckets <= 0 || opts.BucketWidth <= 0 {
		return nil, errors.Errorf("histogram needs positive buckets and width, got %d x %d", opts.Buckets, opts.BucketWidth)
	}
	if opts.HistoryCapacity <= 0 {
		opts.HistoryCapacity = probe.DefaultHistoryCapacity
	}
	if state == nil {
		state = calibration.NewState()
	}
	if clk == nil {
		clk = clock.New()
	}
	v := &Viewer{
		opts:    opts,
		src:     src,
		display: display,
		input:   input,
		saver:   saver,
		clock:   clk,
		logger:  logger,
		state:   state,
		cmap:    rimage.Jet(),
	}
	v.pushControls()
	return v, nil
}

// State returns the calibration state. It must only be used from the loop goroutine or after
// Run returns.
func (v *Viewer) State() *calibration.State {
	return v.state
}

// Tracker returns the probe tracker, nil before the first frame.
func (v *Viewer) Tracker() *probe.Tracker {
	return v.tracker
}

// Canvas returns the canvas, nil before the first frame.
func (v *Viewer) Canvas() *canvas.Canvas {
	return v.canvas
}

// Frames returns how many frames were rendered.
func (v *Viewer) Frames() int {
	return v.frames
}

// Failures returns how many acquisitions failed.
func (v *Viewer) Failures() int {
	return v.failures
}

func (v *Viewer) pushControls() {
	for _, name := range Controls {
		if val, ok := v.state.Value(name); ok {
			v.display.SetAdjustableValue(name, val)
		}
	}
}

func (v *Viewer) pullControls() {
	for _, name := range Controls {
		// names come from Controls so Apply cannot fail
		_ = v.state.Apply(name, v.display.AdjustableValue(name))
	}
}

// Run renders frames until the operator quits, ctx is done or the source is exhausted. Failed
// acquisitions are logged and retried. A frame that cannot be laid out is fatal.
func (v *Viewer) Run(ctx context.Context) error {
	v.logger.Infow("viewer started", "window", v.state.Window.String(), "blend", v.state.Blend)
	defer func() {
		v.logger.Infow("viewer stopped", "frames", v.frames, "failures", v.failures)
	}()
	for {
		if ctx.Err() != nil {
			return nil
		}
		v.pullControls()
		mode := source.Mode{Depth: v.state.DepthMode, Color: v.state.ColorMode}
		dm, img, err := v.src.NextFrame(ctx, mode)
		switch {
		case errors.Is(err, source.ErrExhausted):
			v.logger.Info("frame source exhausted")
			return nil
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			v.failures++
			v.logger.Warnw("frame acquisition failed, skipping", "error", err)
			if v.opts.RetryDelay > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-v.clock.After(v.opts.RetryDelay):
				}
			}
		default:
			if err := v.renderFrame(dm, img); err != nil {
				return err
			}
			if err := v.display.Present(ctx, v.canvas.Image()); err != nil {
				v.logger.Warnw("cannot present frame", "error", err)
			}
		}

		if ev, ok := v.input.Poll(); ok {
			if quit := v.handleEvent(ev); quit {
				return nil
			}
		}
	}
}

func (v *Viewer) setup(frame image.Point) error {
	layout := canvas.NewLayout(frame, v.opts.Buckets, v.opts.HistoryCapacity)
	c, err := canvas.New(layout, v.opts.BucketWidth)
	if err != nil {
		return err
	}
	v.canvas = c
	v.tracker = probe.NewTracker(layout.ProbePlacement(), v.opts.HistoryCapacity, v.opts.FollowPointer)
	v.logger.Debugw("canvas ready", "frame", frame, "size", layout.Size())
	return nil
}

// renderFrame runs one frame through every stage and composes the canvas.
func (v *Viewer) renderFrame(dm *rimage.DepthMap, img *rimage.Image) error {
	frame := dm.Bounds().Size()
	if img.Bounds().Size() != frame {
		return errors.Wrapf(canvas.ErrDimensionMismatch, "depth frame is %v but color frame is %v", frame, img.Bounds().Size())
	}
	if v.canvas == nil {
		if err := v.setup(frame); err != nil {
			return err
		}
	} else if laidOut := v.canvas.Layout().Frame; frame != laidOut {
		return errors.Wrapf(canvas.ErrDimensionMismatch, "frame size changed from %v to %v", laidOut, frame)
	}

	window := v.state.EffectiveWindow(v.logger)
	colored, valid, err := rimage.Colorize(dm, window.Min, window.Range, v.cmap)
	if err != nil {
		return err
	}
	blended, err := rimage.Blend(img, dm.InRangeMask(window.Min, window.Max()), v.state.Blend)
	if err != nil {
		return err
	}
	hist, err := calibration.NewHistogram(dm, v.opts.Buckets, v.opts.BucketWidth)
	if err != nil {
		return err
	}
	sample, sampled := v.tracker.Sample(dm, img)

	v.frames++
	v.lastDepth, v.lastColor, v.lastHist = dm, img, hist

	layout := v.canvas.Layout()
	for _, p := range []struct {
		panel canvas.Panel
		img   image.Image
	}{
		{canvas.PanelColor, blended},
		{canvas.PanelDepth, colored},
		{canvas.PanelStatus, canvas.RenderText(v.canvas.Rect(canvas.PanelStatus).Size(), []string{v.statusLine(window, valid)})},
		{canvas.PanelHistogram, hist.Render(layout.HistogramHeight, window, v.cmap)},
		{canvas.PanelReadout, canvas.RenderText(v.canvas.Rect(canvas.PanelReadout).Size(), v.readout(sample, sampled))},
		{canvas.PanelHistory, v.tracker.History().Render(layout.HistoryHeight)},
	} {
		if err := v.canvas.Place(p.panel, p.img); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) statusLine(window calibration.Window, valid *rimage.Mask) string {
	return fmt.Sprintf("window %s   blend %d%%   valid %.0f%%   depth %s   color %s   frame %d",
		window, v.state.Blend, 100*valid.Fraction(), v.state.DepthMode, v.state.ColorMode, v.frames)
}

// readout describes the probe. It is empty when no point is set.
func (v *Viewer) readout(s probe.Sample, sampled bool) []string {
	pt := v.tracker.Point()
	if !pt.Set {
		return nil
	}
	if !sampled {
		return []string{fmt.Sprintf("x=%d y=%d outside frame", pt.X, pt.Y)}
	}
	lines := []string{
		fmt.Sprintf("x=%d y=%d", pt.X, pt.Y),
		fmt.Sprintf("rgb=(%d, %d, %d) %s", s.Color.R, s.Color.G, s.Color.B, s.Color.Hex()),
	}
	if s.Valid() {
		lines = append(lines, fmt.Sprintf("distance=%dmm", s.Depth))
	} else {
		lines = append(lines, "distance=no reading")
	}
	if sum, ok := v.tracker.History().Summarize(); ok {
		lines = append(lines,
			fmt.Sprintf("mean=%.0fmm sd=%.1fmm n=%d", sum.Mean, sum.StdDev, sum.Count),
			fmt.Sprintf("min=%.0fmm median=%.0fmm max=%.0fmm", sum.Min, sum.Median, sum.Max),
		)
	}
	return lines
}

// handleEvent applies one input event and reports whether the operator asked to quit.
func (v *Viewer) handleEvent(ev Event) bool {
	switch e := ev.(type) {
	case KeyEvent:
		return v.handleKey(e.Code)
	case ClickEvent:
		if v.tracker == nil {
			return false
		}
		if v.tracker.HandlePointer(e.X, e.Y, e.Press) {
			pt := v.tracker.Point()
			v.logger.Debugw("probe moved", "x", pt.X, "y", pt.Y)
		}
	}
	return false
}

func (v *Viewer) handleKey(code rune) bool {
	switch unicode.ToLower(code) {
	case KeyEscape, 'q':
		v.logger.Info("quit requested")
		return true
	case 's':
		v.save()
	case 'a':
		v.autoRange()
	case 'd':
		v.state.DepthMode = v.state.DepthMode.Toggle()
		v.logger.Infow("depth mode changed", "mode", v.state.DepthMode)
	case 'v':
		v.state.ColorMode = v.state.ColorMode.Toggle()
		v.logger.Infow("color mode changed", "mode", v.state.ColorMode)
	}
	return false
}

func (v *Viewer) save() {
	if v.saver == nil {
		v.logger.Warn("saving is not configured")
		return
	}
	if v.lastDepth == nil {
		v.logger.Warn("no frame to save yet")
		return
	}
	colorPath, depthPath, err := v.saver.Save(v.lastDepth, v.lastColor)
	if err != nil {
		v.logger.Errorw("cannot save frame", "error", err)
		return
	}
	v.logger.Infow("saved frame", "color", colorPath, "depth", depthPath)
}

func (v *Viewer) autoRange() {
	if v.lastHist == nil {
		v.logger.Warn("no frame to auto-range on yet")
		return
	}
	w, ok := calibration.AutoRange(v.lastHist, v.opts.LowPercentile, v.opts.HighPercentile, v.state.Window)
	if !ok {
		v.logger.Warn("no distance readings to auto-range on, keeping window")
		return
	}
	v.state.Window = w
	v.pushControls()
	v.logger.Infow("auto-ranged window", "window", w.String())
}
