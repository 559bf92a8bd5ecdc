package inject

import (
	"go.viam.com/kinectviewer/viewer"
)

// InputSource is an injected input source.
type InputSource struct {
	viewer.InputSource
	PollFunc func() (viewer.Event, bool)
}

// Poll calls the injected Poll or the real version.
func (i *InputSource) Poll() (viewer.Event, bool) {
	if i.PollFunc == nil {
		return i.InputSource.Poll()
	}
	return i.PollFunc()
}

// Script returns an input source that hands out one event per poll, in order, and nothing once
// they run out. A nil entry is a poll with nothing pending.
func Script(events ...viewer.Event) *InputSource {
	return &InputSource{PollFunc: func() (viewer.Event, bool) {
		if len(events) == 0 {
			return nil, false
		}
		ev := events[0]
		events = events[1:]
		return ev, ev != nil
	}}
}
