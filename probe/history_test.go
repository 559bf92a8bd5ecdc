package probe

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/kinectviewer/rimage"
)

func TestHistoryWrapsAround(t *testing.T) {
	const n = 10
	h := NewHistory(n)
	test.That(t, h.Capacity(), test.ShouldEqual, n)

	for i := 1; i <= n+5; i++ {
		h.Push(rimage.Depth(i * 100))
	}
	test.That(t, h.Cursor(), test.ShouldEqual, 5)
	// the five newest samples overwrote the five oldest slots
	for i := 0; i < 5; i++ {
		test.That(t, h.At(i), test.ShouldEqual, rimage.Depth((n+1+i)*100))
	}
	for i := 5; i < n; i++ {
		test.That(t, h.At(i), test.ShouldEqual, rimage.Depth((i+1)*100))
	}

	ordered := h.Ordered()
	test.That(t, len(ordered), test.ShouldEqual, n)
	test.That(t, ordered[0], test.ShouldEqual, rimage.Depth(600))
	test.That(t, ordered[n-1], test.ShouldEqual, rimage.Depth(1500))
}

func TestHistoryDefaultCapacity(t *testing.T) {
	test.That(t, NewHistory(0).Capacity(), test.ShouldEqual, DefaultHistoryCapacity)
	test.That(t, NewHistory(-4).Capacity(), test.ShouldEqual, DefaultHistoryCapacity)
}

func TestHistoryRange(t *testing.T) {
	h := NewHistory(4)
	_, _, ok := h.Range()
	test.That(t, ok, test.ShouldBeFalse)

	h.Push(900)
	h.Push(300)
	h.Push(600)
	low, high, ok := h.Range()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, low, test.ShouldEqual, rimage.Depth(300))
	test.That(t, high, test.ShouldEqual, rimage.Depth(900))
	test.That(t, h.Samples(), test.ShouldResemble, []rimage.Depth{900, 300, 600})
}

func TestSparkline(t *testing.T) {
	h := NewHistory(4)
	test.That(t, h.Sparkline(), test.ShouldResemble, []float64{-1, -1, -1, -1})

	h.Push(1000)
	h.Push(1000)
	test.That(t, h.Sparkline(), test.ShouldResemble, []float64{0.5, 0.5, -1, -1})

	h.Push(2000)
	h.Push(1500)
	test.That(t, h.Sparkline(), test.ShouldResemble, []float64{0, 0, 1, 0.5})

	// oldest first after wrapping
	h.Push(3000)
	test.That(t, h.Sparkline(), test.ShouldResemble, []float64{0, 0.5, 0.25, 1})
}

func TestHistoryRender(t *testing.T) {
	h := NewHistory(3)
	h.Push(100)
	h.Push(200)

	img := h.Render(11)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 3)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 11)

	green := func(x, y int) bool {
		c := img.RGBAAt(x, y)
		return c.G == 255 && c.R == 0
	}
	// the unwritten slot is the oldest and stays background
	for y := 0; y < 11; y++ {
		test.That(t, green(0, y), test.ShouldBeFalse)
	}
	test.That(t, img.RGBAAt(0, 0).A, test.ShouldEqual, uint8(255))
	// low sample at the bottom, high at the top, joined in the last column
	test.That(t, green(1, 10), test.ShouldBeTrue)
	test.That(t, green(2, 0), test.ShouldBeTrue)
	test.That(t, green(2, 5), test.ShouldBeTrue)
	test.That(t, green(2, 10), test.ShouldBeTrue)
}

func TestSummarize(t *testing.T) {
	h := NewHistory(8)
	_, ok := h.Summarize()
	test.That(t, ok, test.ShouldBeFalse)

	for _, d := range []rimage.Depth{1000, 1100, 1200, 1300} {
		h.Push(d)
	}
	s, ok := h.Summarize()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, s.Count, test.ShouldEqual, 4)
	test.That(t, s.Mean, test.ShouldAlmostEqual, 1150)
	test.That(t, s.Median, test.ShouldAlmostEqual, 1150)
	test.That(t, s.Min, test.ShouldEqual, 1000.0)
	test.That(t, s.Max, test.ShouldEqual, 1300.0)
	// population standard deviation
	test.That(t, s.StdDev, test.ShouldAlmostEqual, 111.803, 0.001)
}
