package graph

import (
	"context"
	"time"

	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// EventKind identifies a point in the life of a run.
type EventKind string

const (
	EventStepStart EventKind = "step_start"
	EventStepEnd   EventKind = "step_end"
	EventStepError EventKind = "step_error"
	EventDone      EventKind = "done"
)

// Event is delivered to listeners synchronously, in order.
type Event struct {
	Kind  EventKind
	State State
	// Appended holds the turns a step added. Set for EventStepEnd.
	Appended []message.Turn
	Err      error
	// Duration of the step. Set for EventStepEnd and EventStepError.
	Duration time.Duration
}

// Listener observes a run.
type Listener interface {
	OnEvent(ctx context.Context, event Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, event Event)

func (f ListenerFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// Mirror receives every turn appended during a run. store.Session
// implements it.
type Mirror interface {
	Record(ctx context.Context, turns ...message.Turn)
	Warnings() []error
}
