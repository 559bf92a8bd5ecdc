package calibration

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultLowPercentile is the mass trimmed from the near end by AutoRange.
	DefaultLowPercentile = 0.001
	// DefaultHighPercentile is the mass kept up to the far end by AutoRange.
	DefaultHighPercentile = 0.999
)

// AutoRange derives a window covering the central [pLo, pHi] share of the histogram mass.
//
// The cumulative sum is walked in bucket order. Min is the start of the first bucket whose
// cumulative mass exceeds pLo of the total. Range runs from that new Min to the start of the last
// bucket whose cumulative mass is still below pHi of the total. When that leaves no positive
// width the range becomes one bucket.
//
// An empty histogram returns current unchanged and false.
func AutoRange(h *Histogram, pLo, pHi float64, current Window) (Window, bool) {
	if len(h.Counts) == 0 {
		return current, false
	}
	counts := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		counts[i] = float64(c)
	}
	mass := floats.CumSum(make([]float64, len(counts)), counts)
	total := mass[len(mass)-1]
	if total == 0 {
		return current, false
	}

	lo := -1
	for i, m := range mass {
		if m > pLo*total {
			lo = i
			break
		}
	}
	hi := -1
	for j := len(mass) - 1; j >= 0; j-- {
		if mass[j] < pHi*total {
			hi = j
			break
		}
	}
	if lo < 0 {
		return current, false
	}

	out := Window{Min: lo * h.BucketWidth}
	out.Range = hi*h.BucketWidth - out.Min
	if out.Range <= 0 {
		out.Range = h.BucketWidth
	}
	return out, true
}
