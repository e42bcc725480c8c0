package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// DefaultMaxSteps is the least step limit of a run without WithMaxSteps.
// Topologies whose own bound is larger raise it, so configured thresholds
// are never cut short.
const DefaultMaxSteps = 25

// Step consumes the whole log and proposes turns to append.
type Step interface {
	Run(ctx context.Context, turns []message.Turn) ([]message.Turn, error)
}

// StepFunc adapts a function to Step.
type StepFunc func(ctx context.Context, turns []message.Turn) ([]message.Turn, error)

func (f StepFunc) Run(ctx context.Context, turns []message.Turn) ([]message.Turn, error) {
	return f(ctx, turns)
}

// Controller drives a Topology, running the step bound to each state and
// appending its turns to the log. A Controller holds no per-run state and
// may be reused, but a single Log must not be shared by concurrent runs.
type Controller struct {
	topology    Topology
	steps       map[State]Step
	stepTimeout time.Duration
	maxSteps    int
	logger      log.Logger
	listeners   []Listener
}

// Option configures a Controller.
type Option func(*Controller)

// WithStepTimeout bounds every step. Zero means no timeout.
func WithStepTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.stepTimeout = d
	}
}

// WithMaxSteps caps the number of steps per run, replacing the limit
// derived from the topology.
func WithMaxSteps(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

func WithLogger(logger log.Logger) Option {
	return func(c *Controller) {
		c.logger = log.OrDefault(logger)
	}
}

func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// NewController binds steps to the states of topology. Every state that
// has an outgoing edge needs a step.
func NewController(topology Topology, steps map[State]Step, opts ...Option) (*Controller, error) {
	if topology == nil {
		return nil, fmt.Errorf("topology is required")
	}

	c := &Controller{
		topology: topology,
		steps:  make(map[State]Step, len(steps)),
		logger: log.Default(),
	}
	for state, step := range steps {
		c.steps[state] = step
	}
	for _, opt := range opts {
		opt(c)
	}

	required := []State{topology.Entry()}
	for _, e := range topology.Edges() {
		required = append(required, e.From, e.To)
	}
	for _, state := range required {
		if state == StateDone {
			continue
		}
		if c.steps[state] == nil {
			return nil, fmt.Errorf("%w: %s (topology %s)", ErrNoStep, state, topology.Name())
		}
	}
	return c, nil
}

// Topology returns the topology the controller drives.
func (c *Controller) Topology() Topology {
	return c.topology
}

// Result is the outcome of a run. It is returned even when the run fails,
// holding the log as far as it got.
type Result struct {
	Log *message.Log
	// Transitions lists every state entered, starting with the first and
	// ending with StateDone on success.
	Transitions []State
	Steps       int
	// Warnings are recovered failures, such as a persistence outage.
	Warnings []error
}

// FinalAssistant returns the newest assistant turn of the log.
func (r *Result) FinalAssistant() (message.Turn, bool) {
	if r == nil || r.Log == nil {
		return message.Turn{}, false
	}
	return r.Log.LastAssistant()
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	mirror Mirror
}

// WithMirror records every appended turn, typically into a store.Session.
func WithMirror(m Mirror) RunOption {
	return func(rc *runConfig) {
		rc.mirror = m
	}
}

// Run advances l until the topology reaches StateDone.
//
// Cancellation of ctx is only observed between steps. A step in flight runs
// to completion under its own timeout, and its turns are appended before
// Run returns the cancellation error.
func (c *Controller) Run(ctx context.Context, l *message.Log, opts ...RunOption) (res *Result, err error) {
	if l == nil {
		l = message.NewLog()
	}
	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}

	res = &Result{Log: l}
	defer func() {
		if rc.mirror != nil {
			res.Warnings = rc.mirror.Warnings()
		}
		c.notify(ctx, Event{Kind: EventDone, State: res.last(), Err: err})
	}()

	limit := c.stepLimit(l.View())
	state := c.topology.Start(l.View())
	res.Transitions = append(res.Transitions, state)
	c.logger.Debug("%s: starting in %s with %d turns", c.topology.Name(), state, l.Len())

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("run cancelled before %s: %w", state, err)
		}
		if res.Steps >= limit {
			return res, fmt.Errorf("%w: %d steps", ErrStepLimit, limit)
		}

		turns, err := c.runStep(ctx, state, l.View())
		if err != nil {
			return res, &StepError{State: state, Err: err}
		}

		l.Append(turns...)
		if rc.mirror != nil {
			rc.mirror.Record(context.WithoutCancel(ctx), turns...)
		}
		res.Steps++

		state = c.topology.Next(state, l.View())
		res.Transitions = append(res.Transitions, state)
	}

	c.logger.Debug("%s: done after %d steps, %d turns", c.topology.Name(), res.Steps, l.Len())
	return res, nil
}

func (c *Controller) stepLimit(turns []message.Turn) int {
	if c.maxSteps > 0 {
		return c.maxSteps
	}
	return max(DefaultMaxSteps, c.topology.MaxSteps(turns))
}

func (c *Controller) runStep(ctx context.Context, state State, turns []message.Turn) ([]message.Turn, error) {
	stepCtx := context.WithoutCancel(ctx)
	if c.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(stepCtx, c.stepTimeout)
		defer cancel()
	}

	c.notify(ctx, Event{Kind: EventStepStart, State: state})
	start := time.Now()

	out, err := c.steps[state].Run(stepCtx, turns)
	if err == nil {
		for _, t := range out {
			if verr := t.Validate(); verr != nil {
				err = fmt.Errorf("%w: %v", ErrInvalidTurn, verr)
				break
			}
		}
	}

	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error("%s: step %s failed after %s: %v", c.topology.Name(), state, elapsed, err)
		c.notify(ctx, Event{Kind: EventStepError, State: state, Err: err, Duration: elapsed})
		return nil, err
	}

	c.logger.Debug("%s: step %s appended %d turns in %s", c.topology.Name(), state, len(out), elapsed)
	c.notify(ctx, Event{Kind: EventStepEnd, State: state, Appended: out, Duration: elapsed})
	return out, nil
}

func (c *Controller) notify(ctx context.Context, event Event) {
	for _, l := range c.listeners {
		l.OnEvent(ctx, event)
	}
}

func (r *Result) last() State {
	if len(r.Transitions) == 0 {
		return ""
	}
	return r.Transitions[len(r.Transitions)-1]
}
