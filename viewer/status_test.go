package viewer

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/rimage"
)

func TestStatusLineShowsValidShare(t *testing.T) {
	v, err := New(DefaultOptions(), nil, nil, NewHeadlessDisplay(), NewEventQueue(1), nil, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	dm := rimage.NewEmptyDepthMap(4, 2)
	dm.Set(0, 0, 500)
	dm.Set(3, 1, 900)
	_, valid, err := rimage.Colorize(dm, 0, 1000, rimage.Jet())
	test.That(t, err, test.ShouldBeNil)

	line := v.statusLine(calibration.Window{Min: 0, Range: 1000}, valid)
	test.That(t, line, test.ShouldContainSubstring, "valid 25%")
	test.That(t, line, test.ShouldContainSubstring, "blend 50%")

	line = v.statusLine(calibration.Window{Min: 0, Range: 1000}, rimage.NewEmptyDepthMap(4, 2).ValidMask())
	test.That(t, line, test.ShouldContainSubstring, "valid 0%")
}
