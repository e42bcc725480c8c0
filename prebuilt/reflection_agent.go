package prebuilt

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// ReflectionAgentConfig configures the reflection agent.
type ReflectionAgentConfig struct {
	// Model writes the drafts.
	Model llms.Model

	// ReflectionModel critiques them. If nil, Model is used.
	ReflectionModel llms.Model

	// MaxTurns ends the loop once the log holds more turns than this.
	// Zero means graph.DefaultMaxTurns.
	MaxTurns int

	// SystemPrompt and ReflectionPrompt override the default prompts.
	SystemPrompt     string
	ReflectionPrompt string

	CallOptions []llms.CallOption

	RunConfig
}

// CreateReflectionAgent builds a generate/reflect loop. Each critique is
// appended as a user turn and answered by a new draft until the log grows
// past MaxTurns.
func CreateReflectionAgent(cfg ReflectionAgentConfig) (*graph.Controller, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	reflectionModel := cfg.ReflectionModel
	if reflectionModel == nil {
		reflectionModel = cfg.Model
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultGenerationPrompt
	}

	generate, err := NewGenerator(GeneratorConfig{
		Name:         "generate",
		Model:        cfg.Model,
		SystemPrompt: systemPrompt,
		CallOptions:  cfg.CallOptions,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	reflect, err := NewReflector(ReflectorConfig{
		Model:       reflectionModel,
		Prompt:      cfg.ReflectionPrompt,
		CallOptions: cfg.CallOptions,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reflector: %w", err)
	}

	return graph.NewController(
		graph.ReflectionLoop{MaxTurns: cfg.MaxTurns},
		map[graph.State]graph.Step{
			graph.StateGenerate: generate,
			graph.StateReflect:  reflect,
		},
		cfg.options()...,
	)
}

// Reflect runs agent on a single request and returns the last draft.
func Reflect(ctx context.Context, agent *graph.Controller, request string, opts ...graph.RunOption) (string, *graph.Result, error) {
	res, err := agent.Run(ctx, message.NewLog(message.User(request)), opts...)
	if err != nil {
		return "", res, err
	}
	final, ok := res.FinalAssistant()
	if !ok {
		return "", res, fmt.Errorf("%w: run produced no draft", ErrMalformedResponse)
	}
	return final.Content, res, nil
}
