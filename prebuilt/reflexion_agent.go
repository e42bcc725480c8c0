package prebuilt

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/message"
	"github.com/nikolajIvanov/langchain-crash-course/tool"
)

// ReflexionAgentConfig configures the research agent.
type ReflexionAgentConfig struct {
	Model llms.Model

	// Searcher answers the search queries of each answer.
	Searcher tool.Searcher

	// MaxToolResults ends the loop once the log holds more tool results
	// than this. Zero means graph.DefaultMaxToolResults.
	MaxToolResults int

	CallOptions []llms.CallOption
	Now         func() time.Time

	RunConfig
}

// CreateReflexionAgent builds the respond / execute_tools / revise loop.
// The search queries of each structured answer run against Searcher and the
// results feed the next revision.
func CreateReflexionAgent(cfg ReflexionAgentConfig) (*graph.Controller, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	rc := ResearchConfig{
		Model:       cfg.Model,
		CallOptions: cfg.CallOptions,
		Now:         cfg.Now,
		Logger:      cfg.Logger,
	}
	respond, err := NewResponder(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create responder: %w", err)
	}
	revise, err := NewRevisor(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create revisor: %w", err)
	}

	registry, err := tool.NewRegistry(
		tool.NewResearch(AnswerQuestionTool, cfg.Searcher),
		tool.NewResearch(ReviseAnswerTool, cfg.Searcher),
	)
	if err != nil {
		return nil, err
	}

	return graph.NewController(
		graph.ReflexionLoop{MaxToolResults: cfg.MaxToolResults},
		map[graph.State]graph.Step{
			graph.StateRespond:      respond,
			graph.StateExecuteTools: NewToolExecutor(registry, cfg.Logger),
			graph.StateRevise:       revise,
		},
		cfg.options()...,
	)
}

// ResearchAnswer is the outcome of a reflexion run.
type ResearchAnswer struct {
	Answer     string
	References []string
}

// Research runs agent on question and extracts the final structured answer.
func Research(ctx context.Context, agent *graph.Controller, question string, opts ...graph.RunOption) (*ResearchAnswer, *graph.Result, error) {
	res, err := agent.Run(ctx, message.NewLog(message.User(question)), opts...)
	if err != nil {
		return nil, res, err
	}
	final, ok := res.FinalAssistant()
	if !ok {
		return nil, res, fmt.Errorf("%w: run produced no answer", ErrMalformedResponse)
	}
	answer, err := ExtractAnswer(final)
	if err != nil {
		return nil, res, err
	}
	return &ResearchAnswer{Answer: answer, References: ExtractReferences(final)}, res, nil
}
