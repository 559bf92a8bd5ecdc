// Package probe samples an operator selected pixel every frame and keeps a history of its
// distance.
package probe

import (
	"image"

	"github.com/samber/lo"

	"go.viam.com/kinectviewer/rimage"
)

// DefaultHistoryCapacity is the number of samples a history holds.
const DefaultHistoryCapacity = 800

// History is a fixed-capacity circular buffer of sampled distances. The cursor is the next slot
// to write, which is also the oldest sample once the buffer has wrapped. Slots never written hold
// zero and are ignored when computing ranges.
type History struct {
	values []rimage.Depth
	cursor int
}

// NewHistory returns an empty history. A non-positive capacity selects the default.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{values: make([]rimage.Depth, capacity)}
}

// Capacity returns the number of slots.
func (h *History) Capacity() int {
	return len(h.values)
}

// Cursor returns the slot the next sample goes into.
func (h *History) Cursor() int {
	return h.cursor
}

// Push writes d at the cursor and advances it, overwriting the oldest sample when full.
func (h *History) Push(d rimage.Depth) {
	h.values[h.cursor] = d
	h.cursor = (h.cursor + 1) % len(h.values)
}

// At returns the raw value of slot i.
func (h *History) At(i int) rimage.Depth {
	return h.values[i]
}

// Ordered returns all slots oldest first, starting at the cursor.
func (h *History) Ordered() []rimage.Depth {
	out := make([]rimage.Depth, 0, len(h.values))
	out = append(out, h.values[h.cursor:]...)
	return append(out, h.values[:h.cursor]...)
}

// Samples returns the written (non-zero) slots oldest first.
func (h *History) Samples() []rimage.Depth {
	return lo.Filter(h.Ordered(), func(d rimage.Depth, _ int) bool {
		return d != 0
	})
}

// Range returns the smallest and largest written samples, and false if nothing was written.
func (h *History) Range() (rimage.Depth, rimage.Depth, bool) {
	samples := h.Samples()
	if len(samples) == 0 {
		return 0, 0, false
	}
	return lo.Min(samples), lo.Max(samples), true
}

// Sparkline returns one normalized height per slot, oldest first, so a chart drawn from it
// scrolls as samples arrive. Written slots map to (v-min)/(max-min) over the written samples;
// when all samples are equal they sit at 0.5. Unwritten slots are reported as -1.
func (h *History) Sparkline() []float64 {
	ordered := h.Ordered()
	out := make([]float64, len(ordered))
	low, high, ok := h.Range()
	for i, d := range ordered {
		switch {
		case !ok || d == 0:
			out[i] = -1
		case high == low:
			out[i] = 0.5
		default:
			out[i] = float64(int(d)-int(low)) / float64(int(high)-int(low))
		}
	}
	return out
}

// Render draws the sparkline one column per slot, height pixels tall, with consecutive samples
// joined by vertical strokes.
func (h *History) Render(height int) *image.RGBA {
	line := h.Sparkline()
	img := image.NewRGBA(image.Rect(0, 0, len(line), height))
	for k := range img.Pix {
		if k%4 == 3 {
			img.Pix[k] = 255
		}
	}

	prev := -1
	for x, v := range line {
		if v < 0 {
			prev = -1
			continue
		}
		y := (height - 1) - int(v*float64(height-1)+0.5)
		from, to := y, y
		if prev >= 0 {
			from, to = min(y, prev), max(y, prev)
		}
		for yy := from; yy <= to; yy++ {
			img.Set(x, yy, rimage.Green)
		}
		prev = y
	}
	return img
}
