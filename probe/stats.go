package probe

import (
	"github.com/montanaflynn/stats"
)

// Summary describes the written samples of a history.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// Summarize computes a Summary of the history. ok is false if nothing was written.
func (h *History) Summarize() (Summary, bool) {
	samples := h.Samples()
	if len(samples) == 0 {
		return Summary{}, false
	}
	data := make(stats.Float64Data, len(samples))
	for i, d := range samples {
		data[i] = float64(d)
	}

	// The inputs are non-empty, the only case these return an error for.
	mean, _ := data.Mean()
	stddev, _ := data.StandardDeviation()
	median, _ := data.Median()
	minV, _ := data.Min()
	maxV, _ := data.Max()
	return Summary{
		Count:  len(samples),
		Mean:   mean,
		StdDev: stddev,
		Median: median,
		Min:    minV,
		Max:    maxV,
	}, true
}
