package prebuilt

import (
	"time"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/log"
)

// RunConfig holds the controller settings shared by every agent.
type RunConfig struct {
	// StepTimeout bounds each step. Zero means no timeout.
	StepTimeout time.Duration

	// MaxSteps guards against runaway loops. Zero means graph.DefaultMaxSteps.
	MaxSteps int

	Logger    log.Logger
	Listeners []graph.Listener
}

func (rc RunConfig) options() []graph.Option {
	opts := []graph.Option{graph.WithLogger(rc.Logger)}
	if rc.StepTimeout > 0 {
		opts = append(opts, graph.WithStepTimeout(rc.StepTimeout))
	}
	if rc.MaxSteps > 0 {
		opts = append(opts, graph.WithMaxSteps(rc.MaxSteps))
	}
	for _, l := range rc.Listeners {
		opts = append(opts, graph.WithListener(l))
	}
	return opts
}
