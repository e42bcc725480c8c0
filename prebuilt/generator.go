package prebuilt

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// GeneratorConfig configures a model-backed step.
type GeneratorConfig struct {
	// Name identifies the step in errors and logs. Default "generate".
	Name string

	// Model produces the response.
	Model llms.Model

	// SystemPrompt is a Go template rendered with Vars and placed before
	// the conversation. The variable "time" holds the current time.
	SystemPrompt string
	Vars         map[string]any

	// TrailingPrompt is a system message placed after the conversation.
	TrailingPrompt string

	// Tools offered to the model and the tool choice sent with them.
	Tools      []llms.Tool
	ToolChoice any

	// CallOptions are passed to every GenerateContent call.
	CallOptions []llms.CallOption

	// Role of the produced turn. Default assistant.
	Role message.Role

	// Now is the clock behind the "time" variable. Default time.Now.
	Now func() time.Time

	// NewID names tool calls the provider left without an ID. Default
	// uuid.NewString.
	NewID func() string

	Logger log.Logger
}

// Generator renders the prompt, sends the log to the model and wraps the
// first choice as a turn.
type Generator struct {
	cfg    GeneratorConfig
	prompt *prompts.PromptTemplate
}

var _ graph.Step = (*Generator)(nil)

// NewGenerator checks the config and compiles the system prompt. A prompt
// referencing a variable missing from Vars is rejected here rather than on
// the first call.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Name == "" {
		cfg.Name = "generate"
	}
	if cfg.Role == "" {
		cfg.Role = message.RoleAssistant
	}
	if !cfg.Role.Valid() || cfg.Role == message.RoleTool {
		return nil, fmt.Errorf("generator cannot produce %q turns", cfg.Role)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	cfg.Logger = log.OrDefault(cfg.Logger)

	g := &Generator{cfg: cfg}
	if cfg.SystemPrompt != "" {
		vars := make([]string, 0, len(cfg.Vars))
		for k := range cfg.Vars {
			vars = append(vars, k)
		}
		sort.Strings(vars)

		now := cfg.Now
		tmpl := prompts.NewPromptTemplate(cfg.SystemPrompt, vars)
		tmpl.PartialVariables = map[string]any{
			"time": func() string { return now().Format(time.RFC3339) },
		}
		if _, err := tmpl.Format(cfg.Vars); err != nil {
			return nil, fmt.Errorf("invalid system prompt for %s: %w", cfg.Name, err)
		}
		g.prompt = &tmpl
	}
	return g, nil
}

// Name returns the step name.
func (g *Generator) Name() string {
	return g.cfg.Name
}

// Request builds the messages sent to the model for turns.
func (g *Generator) Request(turns []message.Turn) ([]llms.MessageContent, error) {
	msgs := make([]llms.MessageContent, 0, len(turns)+2)
	if g.prompt != nil {
		system, err := g.prompt.Format(g.cfg.Vars)
		if err != nil {
			return nil, fmt.Errorf("failed to render system prompt: %w", err)
		}
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	msgs = append(msgs, message.ToMessageContent(turns)...)
	if g.cfg.TrailingPrompt != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, g.cfg.TrailingPrompt))
	}
	return msgs, nil
}

// Run implements graph.Step. Failures are *GenerationError.
func (g *Generator) Run(ctx context.Context, turns []message.Turn) ([]message.Turn, error) {
	turn, err := g.generate(ctx, turns)
	if err != nil {
		return nil, err
	}
	return []message.Turn{turn}, nil
}

func (g *Generator) generate(ctx context.Context, turns []message.Turn, extra ...llms.CallOption) (message.Turn, error) {
	msgs, err := g.Request(turns)
	if err != nil {
		return message.Turn{}, newGenerationError(g.cfg.Name, err)
	}

	opts := append([]llms.CallOption(nil), g.cfg.CallOptions...)
	opts = append(opts, extra...)
	if len(g.cfg.Tools) > 0 {
		opts = append(opts, llms.WithTools(g.cfg.Tools))
		if g.cfg.ToolChoice != nil {
			opts = append(opts, llms.WithToolChoice(g.cfg.ToolChoice))
		}
	}

	g.cfg.Logger.Debug("%s: sending %d messages", g.cfg.Name, len(msgs))
	resp, err := g.cfg.Model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return message.Turn{}, newGenerationError(g.cfg.Name, fmt.Errorf("failed to generate response: %w", err))
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return message.Turn{}, newGenerationError(g.cfg.Name, fmt.Errorf("%w: no choices", ErrMalformedResponse))
	}

	turn := message.FromChoice(g.cfg.Role, resp.Choices[0], g.cfg.NewID)
	if turn.Role != message.RoleAssistant {
		turn.ToolCalls = nil
	}
	if turn.Content == "" && !turn.HasToolCalls() {
		return message.Turn{}, newGenerationError(g.cfg.Name, fmt.Errorf("%w: empty response", ErrMalformedResponse))
	}
	return turn, nil
}

// ReflectorConfig configures the critique step.
type ReflectorConfig struct {
	Model       llms.Model
	Prompt      string
	Vars        map[string]any
	CallOptions []llms.CallOption
	Logger      log.Logger
}

// NewReflector returns a step that critiques the latest draft. The
// critique is appended as a user turn, so the next generation treats it as
// fresh input rather than its own reasoning.
func NewReflector(cfg ReflectorConfig) (*Generator, error) {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultReflectionPrompt
	}
	return NewGenerator(GeneratorConfig{
		Name:         "reflect",
		Model:        cfg.Model,
		SystemPrompt: prompt,
		Vars:         cfg.Vars,
		CallOptions:  cfg.CallOptions,
		Role:         message.RoleUser,
		Logger:       cfg.Logger,
	})
}
