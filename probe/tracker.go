package probe

import (
	"image"

	"go.viam.com/kinectviewer/rimage"
)

// Point is a sensor-frame pixel. Set is false until the operator picks a pixel.
type Point struct {
	X, Y int
	Set  bool
}

// Pt returns the point as an image.Point.
func (p Point) Pt() image.Point {
	return image.Pt(p.X, p.Y)
}

// Placement describes where the color and depth panels sit on the display. Both show the same
// sensor frame, the depth panel OffsetX pixels to the right of the color panel.
type Placement struct {
	// Origin is the top-left corner of the color panel on the display.
	Origin image.Point
	// OffsetX is the horizontal distance from the color panel to the depth panel.
	OffsetX int
	// Frame is the sensor frame size.
	Frame image.Point
}

// Map translates a display coordinate into a sensor-frame coordinate. A click on either panel
// addresses the same sensor pixel. Clicks outside both panels return false.
func (p Placement) Map(screen image.Point) (image.Point, bool) {
	local := screen.Sub(p.Origin)
	if local.X >= p.OffsetX && local.X < p.OffsetX+p.Frame.X {
		local.X -= p.OffsetX
	}
	if !local.In(image.Rectangle{Max: p.Frame}) {
		return image.Point{}, false
	}
	return local, true
}

// Sample is what was read at the probe point in one frame.
type Sample struct {
	Point Point
	Color rimage.Color
	Depth rimage.Depth
}

// Valid returns whether the sensor had a distance reading for the sample.
func (s Sample) Valid() bool {
	return s.Depth != 0
}

// Tracker owns the probe point and its history. Like the calibration state it is only touched
// from the render loop.
type Tracker struct {
	placement     Placement
	followPointer bool

	point   Point
	history *History
}

// NewTracker returns a tracker with no point set. With followPointer false only presses move the
// point; otherwise any pointer movement does.
func NewTracker(placement Placement, capacity int, followPointer bool) *Tracker {
	return &Tracker{
		placement:     placement,
		followPointer: followPointer,
		history:       NewHistory(capacity),
	}
}

// HandlePointer applies a pointer event at display coordinates (x, y). It returns whether the
// probe point moved.
func (t *Tracker) HandlePointer(x, y int, press bool) bool {
	if !press && !t.followPointer {
		return false
	}
	p, ok := t.placement.Map(image.Pt(x, y))
	if !ok {
		return false
	}
	t.point = Point{X: p.X, Y: p.Y, Set: true}
	return true
}

// Point returns the current probe point.
func (t *Tracker) Point() Point {
	return t.point
}

// Clear unsets the probe point. The history is kept.
func (t *Tracker) Clear() {
	t.point = Point{}
}

// History returns the sampled distance history.
func (t *Tracker) History() *History {
	return t.history
}

// Sample reads the probe point from the current frame pair and records a valid distance in the
// history. It returns false, recording nothing, when no point is set or the point lies outside
// either frame.
func (t *Tracker) Sample(dm *rimage.DepthMap, img *rimage.Image) (Sample, bool) {
	if !t.point.Set {
		return Sample{}, false
	}
	x, y := t.point.X, t.point.Y
	if !dm.Contains(x, y) || !img.In(x, y) {
		return Sample{}, false
	}

	s := Sample{Point: t.point, Color: img.GetXY(x, y), Depth: dm.GetDepth(x, y)}
	if s.Valid() {
		t.history.Push(s.Depth)
	}
	return s, true
}
