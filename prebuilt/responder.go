package prebuilt

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// Names of the structured answer functions the research model must call.
const (
	AnswerQuestionTool = "AnswerQuestion"
	ReviseAnswerTool   = "ReviseAnswer"
)

func reflectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"missing": map[string]any{
				"type":        "string",
				"description": "Critique of what is missing.",
			},
			"superfluous": map[string]any{
				"type":        "string",
				"description": "Critique of what is superfluous.",
			},
		},
		"required": []string{"missing", "superfluous"},
	}
}

func answerProperties() map[string]any {
	return map[string]any{
		"answer": map[string]any{
			"type":        "string",
			"description": "~250 word detailed answer to the question.",
		},
		"reflection": reflectionSchema(),
		"search_queries": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "1-3 search queries for researching improvements to address the critique of your current answer.",
		},
	}
}

// AnswerQuestionDefinition is the function the first responder must call.
func AnswerQuestionDefinition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        AnswerQuestionTool,
			Description: "Answer the question.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": answerProperties(),
				"required":   []string{"answer", "reflection", "search_queries"},
			},
		},
	}
}

// ReviseAnswerDefinition extends AnswerQuestion with citations.
func ReviseAnswerDefinition() llms.Tool {
	props := answerProperties()
	props["references"] = map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "Citations motivating your updated answer.",
	}
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        ReviseAnswerTool,
			Description: "Revise your original answer to your question.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": props,
				"required":   []string{"answer", "reflection", "search_queries", "references"},
			},
		},
	}
}

// ResearchConfig configures the responder and the revisor.
type ResearchConfig struct {
	Model llms.Model
	// Instruction replaces the default first instruction of the prompt.
	Instruction string
	CallOptions []llms.CallOption
	Now         func() time.Time
	Logger      log.Logger
}

// StructuredStep is a generation step whose turn must call one specific
// function with a JSON object holding an "answer" string.
type StructuredStep struct {
	gen      *Generator
	toolName string
}

var _ graph.Step = (*StructuredStep)(nil)

// NewResponder returns the first step of the reflexion loop.
func NewResponder(cfg ResearchConfig) (*StructuredStep, error) {
	return newStructuredStep("respond", cfg, FirstResponderInstruction, AnswerQuestionDefinition())
}

// NewRevisor returns the step that rewrites the answer after research.
func NewRevisor(cfg ResearchConfig) (*StructuredStep, error) {
	return newStructuredStep("revise", cfg, RevisorInstruction, ReviseAnswerDefinition())
}

func newStructuredStep(name string, cfg ResearchConfig, instruction string, def llms.Tool) (*StructuredStep, error) {
	if cfg.Instruction != "" {
		instruction = cfg.Instruction
	}
	gen, err := NewGenerator(GeneratorConfig{
		Name:           name,
		Model:          cfg.Model,
		SystemPrompt:   ResearcherPrompt,
		Vars:           map[string]any{"first_instruction": instruction},
		TrailingPrompt: ResearcherTrailingPrompt,
		Tools:          []llms.Tool{def},
		ToolChoice: llms.ToolChoice{
			Type:     "function",
			Function: &llms.FunctionReference{Name: def.Function.Name},
		},
		CallOptions: cfg.CallOptions,
		Now:         cfg.Now,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &StructuredStep{gen: gen, toolName: def.Function.Name}, nil
}

// Run fails with a malformed GenerationError when the model answers
// without calling the expected function.
func (s *StructuredStep) Run(ctx context.Context, turns []message.Turn) ([]message.Turn, error) {
	turn, err := s.gen.generate(ctx, turns)
	if err != nil {
		return nil, err
	}

	if !turn.HasToolCalls() {
		return nil, newGenerationError(s.gen.Name(), fmt.Errorf("%w: expected a call to %s", ErrMalformedResponse, s.toolName))
	}
	call := turn.ToolCalls[0]
	if call.Name != s.toolName {
		return nil, newGenerationError(s.gen.Name(), fmt.Errorf("%w: expected a call to %s, got %s", ErrMalformedResponse, s.toolName, call.Name))
	}
	if _, err := answerOf(call); err != nil {
		return nil, newGenerationError(s.gen.Name(), err)
	}
	return []message.Turn{turn}, nil
}

// ExtractAnswer returns the "answer" argument of the first tool call of
// turn, the result of a reflexion run.
func ExtractAnswer(turn message.Turn) (string, error) {
	if !turn.HasToolCalls() {
		return "", fmt.Errorf("%w: turn has no tool calls", ErrMalformedResponse)
	}
	return answerOf(turn.ToolCalls[0])
}

// ExtractReferences returns the "references" argument of the first tool
// call of turn, if any.
func ExtractReferences(turn message.Turn) []string {
	if !turn.HasToolCalls() {
		return nil
	}
	var refs []string
	for _, r := range gjson.Get(turn.ToolCalls[0].Arguments, "references").Array() {
		refs = append(refs, r.String())
	}
	return refs
}

func answerOf(call message.ToolCall) (string, error) {
	if !gjson.Valid(call.Arguments) {
		return "", fmt.Errorf("%w: %s arguments are not valid JSON", ErrMalformedResponse, call.Name)
	}
	answer := gjson.Get(call.Arguments, "answer")
	if answer.Type != gjson.String {
		return "", fmt.Errorf("%w: %s arguments have no answer", ErrMalformedResponse, call.Name)
	}
	return answer.String(), nil
}
