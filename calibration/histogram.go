package calibration

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"go.viam.com/kinectviewer/rimage"
)

const (
	// DefaultBuckets is the number of histogram buckets.
	DefaultBuckets = 1200
	// DefaultBucketWidth is the width of one bucket in millimeters.
	DefaultBucketWidth = 5
)

// Histogram counts valid pixels per fixed-width distance bucket. Bucket i covers
// [i*BucketWidth, (i+1)*BucketWidth). Depths that are zero, negative or past the last bucket are
// not counted.
type Histogram struct {
	BucketWidth int
	Counts      []int
}

// NewHistogram builds a histogram of dm from scratch.
func NewHistogram(dm *rimage.DepthMap, buckets, bucketWidth int) (*Histogram, error) {
	if buckets <= 0 || bucketWidth <= 0 {
		return nil, errors.Errorf("histogram needs positive buckets and width, got %d x %d", buckets, bucketWidth)
	}
	h := &Histogram{BucketWidth: bucketWidth, Counts: make([]int, buckets)}
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			if idx := h.Bucket(int(dm.GetDepth(x, y))); idx >= 0 {
				h.Counts[idx]++
			}
		}
	}
	return h, nil
}

// Bucket returns the bucket index d falls into, or -1 when d is not counted.
func (h *Histogram) Bucket(d int) int {
	if d < 1 || d >= h.Span() {
		return -1
	}
	return d / h.BucketWidth
}

// Span returns the distance covered by all buckets.
func (h *Histogram) Span() int {
	return len(h.Counts) * h.BucketWidth
}

// Total returns the number of counted pixels.
func (h *Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Max returns the largest bucket count.
func (h *Histogram) Max() int {
	m := 0
	for _, c := range h.Counts {
		m = max(m, c)
	}
	return m
}

// Trim returns a copy with every bucket outside the window zeroed.
func (h *Histogram) Trim(w Window) *Histogram {
	out := &Histogram{BucketWidth: h.BucketWidth, Counts: make([]int, len(h.Counts))}
	first, last := w.Min/h.BucketWidth, w.Max()/h.BucketWidth
	for i, c := range h.Counts {
		if i >= first && i <= last {
			out.Counts[i] = c
		}
	}
	return out
}

// Render draws the histogram as a bar chart one pixel column per bucket and height pixels tall.
// The largest bucket reaches the top. Behind the bars the colormap gradient of the window is
// painted dimmed, and the bars themselves carry the full color of their distance. Two white
// ticks mark the window edges.
func (h *Histogram) Render(height int, w Window, cmap *rimage.Colormap) *image.RGBA {
	width := len(h.Counts)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	w, _ = w.Normalized()
	peak := h.Max()

	for x := 0; x < width; x++ {
		c := cmap.At(rimage.ScaleDepth(rimage.Depth(min(x*h.BucketWidth, int(rimage.MaxDepth))), w.Min, w.Range))
		bg := c.Scale(1, 4)
		bar := 0
		if peak > 0 {
			bar = (h.Counts[x]*height + peak/2) / peak
		}
		for y := 0; y < height; y++ {
			px := bg
			if y >= height-bar {
				px = c
			}
			img.SetRGBA(x, y, color.RGBA{px.R, px.G, px.B, 255})
		}
	}

	for _, edge := range []int{w.Min, w.Max()} {
		x := edge / h.BucketWidth
		if x < 0 || x >= width {
			continue
		}
		for y := 0; y < height; y++ {
			img.Set(x, y, rimage.White)
		}
	}
	return img
}
