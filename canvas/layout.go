// Package canvas composes the viewer panels onto one fixed-size image.
package canvas

import (
	"image"

	"github.com/pkg/errors"

	"go.viam.com/kinectviewer/probe"
)

// Panel names a region of the canvas.
type Panel int

// The panels of the canvas.
const (
	PanelColor Panel = iota
	PanelDepth
	PanelStatus
	PanelHistogram
	PanelReadout
	PanelHistory
)

var panelNames = map[Panel]string{
	PanelColor:     "color",
	PanelDepth:     "depth",
	PanelStatus:    "status",
	PanelHistogram: "histogram",
	PanelReadout:   "readout",
	PanelHistory:   "history",
}

func (p Panel) String() string {
	if n, ok := panelNames[p]; ok {
		return n
	}
	return "unknown"
}

// Spacing of the layout, in pixels.
const (
	Margin       = 10
	HeaderHeight = 24
	StatusHeight = 20
	AxisHeight   = 18
)

// Default panel sizes.
const (
	DefaultHistogramHeight = 160
	DefaultReadoutWidth    = 300
	DefaultHistoryHeight   = 100
)

// Layout holds the panel sizes that determine where everything sits.
type Layout struct {
	// Frame is the sensor frame size shared by the color and depth panels.
	Frame           image.Point
	HistogramWidth  int
	HistogramHeight int
	ReadoutWidth    int
	HistoryWidth    int
	HistoryHeight   int
}

// NewLayout returns a layout for the given frame size, histogram bucket count and history
// capacity with default heights.
func NewLayout(frame image.Point, buckets, historyCapacity int) Layout {
	return Layout{
		Frame:           frame,
		HistogramWidth:  buckets,
		HistogramHeight: DefaultHistogramHeight,
		ReadoutWidth:    DefaultReadoutWidth,
		HistoryWidth:    historyCapacity,
		HistoryHeight:   DefaultHistoryHeight,
	}
}

// Validate ensures all sizes are positive.
func (l Layout) Validate() error {
	for name, v := range map[string]int{
		"frame width":      l.Frame.X,
		"frame height":     l.Frame.Y,
		"histogram width":  l.HistogramWidth,
		"histogram height": l.HistogramHeight,
		"readout width":    l.ReadoutWidth,
		"history width":    l.HistoryWidth,
		"history height":   l.HistoryHeight,
	} {
		if v <= 0 {
			return errors.Errorf("layout %s must be positive, got %d", name, v)
		}
	}
	return nil
}

// Rects returns the rectangle of every panel. Panels are disjoint.
func (l Layout) Rects() map[Panel]image.Rectangle {
	top := HeaderHeight
	color := image.Rect(Margin, top, Margin+l.Frame.X, top+l.Frame.Y)
	depth := color.Add(image.Pt(l.DepthOffset(), 0))

	statusTop := color.Max.Y + Margin
	histTop := statusTop + StatusHeight + Margin
	hist := image.Rect(Margin, histTop, Margin+l.HistogramWidth, histTop+l.HistogramHeight)
	readout := image.Rect(hist.Max.X+Margin, histTop, hist.Max.X+Margin+l.ReadoutWidth, hist.Max.Y)

	historyTop := hist.Max.Y + AxisHeight + Margin
	history := image.Rect(Margin, historyTop, Margin+l.HistoryWidth, historyTop+l.HistoryHeight)

	size := l.Size()
	return map[Panel]image.Rectangle{
		PanelColor:     color,
		PanelDepth:     depth,
		PanelStatus:    image.Rect(Margin, statusTop, size.X-Margin, statusTop+StatusHeight),
		PanelHistogram: hist,
		PanelReadout:   readout,
		PanelHistory:   history,
	}
}

// DepthOffset is the horizontal distance from the color panel to the depth panel.
func (l Layout) DepthOffset() int {
	return l.Frame.X + Margin
}

// Size returns the size of the whole canvas.
func (l Layout) Size() image.Point {
	width := max(
		2*l.Frame.X+3*Margin,
		l.HistogramWidth+l.ReadoutWidth+3*Margin,
		l.HistoryWidth+2*Margin,
	)
	height := HeaderHeight + l.Frame.Y + Margin + StatusHeight + Margin +
		l.HistogramHeight + AxisHeight + Margin + l.HistoryHeight + Margin
	return image.Pt(width, height)
}

// ProbePlacement describes the color and depth panels for mapping clicks to sensor pixels.
func (l Layout) ProbePlacement() probe.Placement {
	return probe.Placement{
		Origin:  image.Pt(Margin, HeaderHeight),
		OffsetX: l.DepthOffset(),
		Frame:   l.Frame,
	}
}
