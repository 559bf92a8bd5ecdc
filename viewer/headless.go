package viewer

import (
	"context"
	"image"
	"sync"
)

// HeadlessDisplay is a Display that shows nothing. It remembers adjustable values and the last
// presented image.
type HeadlessDisplay struct {
	mu        sync.Mutex
	values    map[string]int
	last      image.Image
	presented int
}

// NewHeadlessDisplay returns an empty headless display.
func NewHeadlessDisplay() *HeadlessDisplay {
	return &HeadlessDisplay{values: map[string]int{}}
}

// Present records img.
func (hd *HeadlessDisplay) Present(ctx context.Context, img image.Image) error {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	hd.last = img
	hd.presented++
	return nil
}

// AdjustableValue returns the stored value, zero if never set.
func (hd *HeadlessDisplay) AdjustableValue(name string) int {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	return hd.values[name]
}

// SetAdjustableValue stores a value.
func (hd *HeadlessDisplay) SetAdjustableValue(name string, value int) {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	hd.values[name] = value
}

// Presented returns how many images were presented and the last of them.
func (hd *HeadlessDisplay) Presented() (int, image.Image) {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	return hd.presented, hd.last
}
