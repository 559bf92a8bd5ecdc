// Package calibration holds the operator-adjustable depth window and the histogram based tools
// used to choose it.
package calibration

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/kinectviewer/logging"
)

const (
	// DefaultMin is the initial lower edge of the window in millimeters.
	DefaultMin = 0
	// DefaultRange is the initial width of the window in millimeters.
	DefaultRange = 5000
	// DefaultBlend is the initial blend ratio in percent.
	DefaultBlend = 50
	// TrackbarMax is the largest value the min and range controls can take.
	TrackbarMax = 10000
	// MinRange is what a non-positive range is clamped to.
	MinRange = 1
)

// Names of the adjustable controls exposed by a display.
const (
	ControlMin   = "min"
	ControlRange = "range"
	ControlBlend = "blend"
)

// Window is the [Min, Min+Range] distance interval, in millimeters, treated as in range.
type Window struct {
	Min   int `json:"min"`
	Range int `json:"range"`
}

// Max returns the upper edge of the window.
func (w Window) Max() int {
	return w.Min + w.Range
}

// Contains returns whether d lies inside the window, edges included.
func (w Window) Contains(d int) bool {
	return d >= w.Min && d <= w.Max()
}

// Normalized returns the window with a non-positive range clamped to MinRange, and whether it
// had to be clamped.
func (w Window) Normalized() (Window, bool) {
	if w.Range >= MinRange {
		return w, false
	}
	w.Range = MinRange
	return w, true
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d]mm", w.Min, w.Max())
}

// DepthMode selects how the frame source reports depth.
type DepthMode int

const (
	// DepthAligned is depth registered to the color camera.
	DepthAligned DepthMode = iota
	// DepthRaw is unregistered metric depth.
	DepthRaw
)

func (m DepthMode) String() string {
	if m == DepthRaw {
		return "raw"
	}
	return "aligned"
}

// Toggle returns the other mode.
func (m DepthMode) Toggle() DepthMode {
	if m == DepthRaw {
		return DepthAligned
	}
	return DepthRaw
}

// ColorMode selects what the color panel shows.
type ColorMode int

const (
	// ColorVisible is the visible light camera.
	ColorVisible ColorMode = iota
	// ColorInfrared is the infrared intensity image.
	ColorInfrared
)

func (m ColorMode) String() string {
	if m == ColorInfrared {
		return "infrared"
	}
	return "visible"
}

// Toggle returns the other mode.
func (m ColorMode) Toggle() ColorMode {
	if m == ColorInfrared {
		return ColorVisible
	}
	return ColorInfrared
}

// State is the calibration shared by the controls and every per-frame stage. It is owned by the
// render loop: controls and operator actions are applied to it between frames on the loop
// goroutine, so it carries no lock.
type State struct {
	Window    Window
	Blend     int
	DepthMode DepthMode
	ColorMode ColorMode

	warnedRange bool
}

// NewState returns a state holding the default window and blend.
func NewState() *State {
	return &State{
		Window: Window{Min: DefaultMin, Range: DefaultRange},
		Blend:  DefaultBlend,
	}
}

// EffectiveWindow returns the window the per-frame stages should use. A non-positive range is
// clamped to MinRange with a warning logged once per bad value.
func (s *State) EffectiveWindow(logger logging.Logger) Window {
	w, clamped := s.Window.Normalized()
	if !clamped {
		s.warnedRange = false
		return w
	}
	if !s.warnedRange {
		logger.Warnw("depth range must be positive, clamping", "range", s.Window.Range, "clamped", w.Range)
		s.warnedRange = true
	}
	return w
}

// Apply sets a named control value. Unknown names are reported as an error.
func (s *State) Apply(name string, value int) error {
	switch name {
	case ControlMin:
		s.Window.Min = value
	case ControlRange:
		s.Window.Range = value
	case ControlBlend:
		s.Blend = value
	default:
		return errors.Errorf("unknown control %q", name)
	}
	return nil
}

// Value returns a named control value.
func (s *State) Value(name string) (int, bool) {
	switch name {
	case ControlMin:
		return s.Window.Min, true
	case ControlRange:
		return s.Window.Range, true
	case ControlBlend:
		return s.Blend, true
	}
	return 0, false
}
