package prebuilt

import (
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/tool"
)

// ReactAgentConfig configures a tool-calling agent.
type ReactAgentConfig struct {
	Model llms.Model
	Tools []tool.Tool

	// SystemPrompt is an optional Go template placed before the
	// conversation on every call.
	SystemPrompt string
	Vars         map[string]any

	// MaxToolRounds caps the tool rounds per user turn. Zero means
	// graph.DefaultMaxToolRounds.
	MaxToolRounds int

	CallOptions []llms.CallOption
	Now         func() time.Time

	RunConfig
}

// CreateReactAgent builds a loop in which the model calls tools until it
// answers in plain text.
func CreateReactAgent(cfg ReactAgentConfig) (*graph.Controller, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	registry, err := tool.NewRegistry(cfg.Tools...)
	if err != nil {
		return nil, err
	}

	var choice any
	if registry.Len() > 0 {
		choice = "auto"
	}
	generate, err := NewGenerator(GeneratorConfig{
		Name:         "generate",
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Vars:         cfg.Vars,
		Tools:        registry.Definitions(),
		ToolChoice:   choice,
		CallOptions:  cfg.CallOptions,
		Now:          cfg.Now,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	return graph.NewController(
		graph.ReactLoop{MaxToolRounds: cfg.MaxToolRounds},
		map[graph.State]graph.Step{
			graph.StateGenerate:     generate,
			graph.StateExecuteTools: NewToolExecutor(registry, cfg.Logger),
		},
		cfg.options()...,
	)
}
