package lfo

import (
	"errors"
	"fmt"
)

// Event is a discrete control message. Each event is one complete state
// transition of the oscillator.
type Event interface {
	fmt.Stringer
	event()
}

// SetParam updates the held scalar of one input.
type SetParam struct {
	Input Input
	Value float64
}

// SetLooping switches looping (true) or envelope (false) mode.
type SetLooping struct {
	On bool
}

// Trigger rewinds and resets; in envelope mode it starts a new run.
type Trigger struct{}

// SetPhase jumps to a phase in looping mode.
type SetPhase struct {
	Phase float64
}

func (SetParam) event()   {}
func (SetLooping) event() {}
func (Trigger) event()    {}
func (SetPhase) event()   {}

func (e SetParam) String() string { return fmt.Sprintf("%s %g", e.Input, e.Value) }
func (e SetLooping) String() string {
	if e.On {
		return "looping 1"
	}
	return "looping 0"
}
func (Trigger) String() string    { return "bang" }
func (e SetPhase) String() string { return fmt.Sprintf("phase %g", e.Phase) }

// Apply performs ev on the oscillator. The only error is
// ErrPhaseSetInEnvelope, in which case nothing changed.
func (o *Oscillator) Apply(ev Event) error {
	switch e := ev.(type) {
	case SetParam:
		o.SetHeld(e.Input, e.Value)
	case SetLooping:
		o.SetLooping(e.On)
	case Trigger:
		o.Trigger()
	case SetPhase:
		return o.SetPhase(e.Phase)
	case nil:
		return nil
	default:
		return fmt.Errorf("lfo: unsupported event %T", ev)
	}
	return nil
}

// DefaultQueueSize is the event capacity used by NewQueue when size <= 0.
const DefaultQueueSize = 256

// Queue hands control events from a control goroutine to the goroutine that
// renders samples. There may be any number of posters but only one drainer.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue holding up to size pending events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

// Post enqueues ev without blocking. It reports false if the queue is full
// and the event was dropped.
func (q *Queue) Post(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.ch) }

// Drain applies every pending event to o in posting order and returns how
// many were applied. It never blocks and must only be called between blocks.
// Rejected phase requests are logged and skipped.
func (q *Queue) Drain(o *Oscillator) int {
	n := 0
	for {
		select {
		case ev := <-q.ch:
			if err := o.Apply(ev); err != nil {
				if errors.Is(err, ErrPhaseSetInEnvelope) {
					o.logger.Warn("physicslfo: phase message only works in looping mode (send 'looping 1' first)", "phase", ev)
				} else {
					o.logger.Error("physicslfo: control event failed", "event", ev, "err", err)
				}
			}
			n++
		default:
			return n
		}
	}
}
