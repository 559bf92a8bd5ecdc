package viewer

import (
	"context"
	"image"
	"sync"

	"go.uber.org/atomic"
)

// An Event is operator input.
type Event interface {
	isEvent()
}

// KeyEscape is the code of the escape key.
const KeyEscape rune = 27

// KeyEvent is a key press.
type KeyEvent struct {
	Code rune
}

// ClickEvent is a pointer event at display coordinates. Press is false for plain movement.
type ClickEvent struct {
	X, Y  int
	Press bool
}

func (KeyEvent) isEvent()   {}
func (ClickEvent) isEvent() {}

// An InputSource hands out pending input. It must not block; false means there is nothing
// pending.
type InputSource interface {
	Poll() (Event, bool)
}

// A Display shows the canvas and owns the operator adjustable values.
type Display interface {
	Present(ctx context.Context, img image.Image) error
	AdjustableValue(name string) int
	SetAdjustableValue(name string, value int)
}

// An ImageWriter persists an image at a path.
type ImageWriter interface {
	Save(path string, img image.Image) error
}

// DefaultQueueSize is how many events an EventQueue holds before dropping new ones.
const DefaultQueueSize = 64

// EventQueue carries events from producers on any goroutine to the render loop. Pointer
// movement does not take queue space: only the latest move is kept, so a burst of moves never
// crowds out a key press.
type EventQueue struct {
	events  chan Event
	dropped atomic.Int64

	mu   sync.Mutex
	move *ClickEvent
}

// NewEventQueue returns a queue holding up to size events. A non-positive size selects the
// default.
func NewEventQueue(size int) *EventQueue {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &EventQueue{events: make(chan Event, size)}
}

// Push enqueues ev without blocking. It returns false, dropping the event, if the queue is full.
// A move replaces any move not yet polled and a press discards it.
func (q *EventQueue) Push(ev Event) bool {
	if click, ok := ev.(ClickEvent); ok {
		q.mu.Lock()
		if !click.Press {
			q.move = &click
			q.mu.Unlock()
			return true
		}
		q.move = nil
		q.mu.Unlock()
	}
	select {
	case q.events <- ev:
		return true
	default:
		q.dropped.Inc()
		return false
	}
}

// Poll dequeues the oldest event, if any. A pending move is handed out once no other event is
// waiting.
func (q *EventQueue) Poll() (Event, bool) {
	select {
	case ev := <-q.events:
		return ev, true
	default:
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.move == nil {
		return nil, false
	}
	ev := *q.move
	q.move = nil
	return ev, true
}

// Dropped returns how many events were dropped because the queue was full.
func (q *EventQueue) Dropped() int64 {
	return q.dropped.Load()
}
