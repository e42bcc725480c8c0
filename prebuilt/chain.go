package prebuilt

import (
	"context"
	"fmt"
	"sort"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/sync/errgroup"

	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// ChatStep is a chain that formats a chat prompt, sends the messages to a
// model and stores the reply text under its output key. Unlike
// chains.LLMChain it keeps the message roles of the prompt.
type ChatStep struct {
	prompt    prompts.ChatPromptTemplate
	generator *Generator
	outputKey string
	memory    schema.Memory
}

var _ chains.Chain = (*ChatStep)(nil)

// ChatStepConfig configures a ChatStep.
type ChatStepConfig struct {
	// Name identifies the step in errors and logs. Default the output key.
	Name string

	Model  llms.Model
	Prompt prompts.ChatPromptTemplate

	// OutputKey names the reply in the output values. Default "text".
	OutputKey string

	CallOptions []llms.CallOption
	Logger      log.Logger
}

// NewChatStep creates a ChatStep.
func NewChatStep(cfg ChatStepConfig) (*ChatStep, error) {
	if len(cfg.Prompt.Messages) == 0 {
		return nil, fmt.Errorf("prompt has no messages")
	}
	if cfg.OutputKey == "" {
		cfg.OutputKey = "text"
	}
	if cfg.Name == "" {
		cfg.Name = cfg.OutputKey
	}
	g, err := NewGenerator(GeneratorConfig{
		Name:        cfg.Name,
		Model:       cfg.Model,
		CallOptions: cfg.CallOptions,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &ChatStep{
		prompt:    cfg.Prompt,
		generator: g,
		outputKey: cfg.OutputKey,
		memory:    memory.NewSimple(),
	}, nil
}

// Call renders the prompt with inputs and asks the model. Failures are
// *GenerationError.
func (s *ChatStep) Call(ctx context.Context, inputs map[string]any, options ...chains.ChainCallOption) (map[string]any, error) {
	msgs, err := s.prompt.FormatMessages(inputs)
	if err != nil {
		return nil, newGenerationError(s.generator.Name(), err)
	}
	turns := make([]message.Turn, 0, len(msgs))
	for _, m := range msgs {
		turn, err := chatTurn(m)
		if err != nil {
			return nil, newGenerationError(s.generator.Name(), err)
		}
		turns = append(turns, turn)
	}

	var extra []llms.CallOption
	if len(options) > 0 {
		extra = chains.GetLLMCallOptions(options...)
	}
	turn, err := s.generator.generate(ctx, turns, extra...)
	if err != nil {
		return nil, err
	}
	return map[string]any{s.outputKey: turn.Content}, nil
}

func (s *ChatStep) GetMemory() schema.Memory {
	return s.memory
}

func (s *ChatStep) GetInputKeys() []string {
	keys := s.prompt.GetInputVariables()
	sort.Strings(keys)
	return keys
}

func (s *ChatStep) GetOutputKeys() []string {
	return []string{s.outputKey}
}

func chatTurn(m llms.ChatMessage) (message.Turn, error) {
	switch m.GetType() {
	case llms.ChatMessageTypeSystem:
		return message.System(m.GetContent()), nil
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
		return message.User(m.GetContent()), nil
	case llms.ChatMessageTypeAI:
		return message.Assistant(m.GetContent()), nil
	default:
		return message.Turn{}, fmt.Errorf("unsupported prompt message type %q", m.GetType())
	}
}

// Parallel is a chain that runs its branches concurrently on the same
// inputs and merges their outputs. The first branch error cancels the
// others.
type Parallel struct {
	branches   []chains.Chain
	inputKeys  []string
	outputKeys []string
	memory     schema.Memory
}

var _ chains.Chain = (*Parallel)(nil)

// NewParallel creates a Parallel chain. Branches may share input keys but
// not output keys.
func NewParallel(branches ...chains.Chain) (*Parallel, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: no branches", chains.ErrChainInitialization)
	}
	inputs := map[string]bool{}
	outputs := map[string]bool{}
	p := &Parallel{branches: branches, memory: memory.NewSimple()}
	for i, b := range branches {
		for _, k := range b.GetInputKeys() {
			if !inputs[k] {
				inputs[k] = true
				p.inputKeys = append(p.inputKeys, k)
			}
		}
		for _, k := range b.GetOutputKeys() {
			if outputs[k] {
				return nil, fmt.Errorf("%w: branch %d repeats output key %s", chains.ErrChainInitialization, i, k)
			}
			outputs[k] = true
			p.outputKeys = append(p.outputKeys, k)
		}
	}
	return p, nil
}

func (p *Parallel) Call(ctx context.Context, inputs map[string]any, options ...chains.ChainCallOption) (map[string]any, error) {
	results := make([]map[string]any, len(p.branches))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range p.branches {
		g.Go(func() error {
			out, err := chains.Call(gctx, b, inputs, options...)
			if err != nil {
				return fmt.Errorf("branch %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(p.outputKeys))
	for i, b := range p.branches {
		for _, k := range b.GetOutputKeys() {
			merged[k] = results[i][k]
		}
	}
	return merged, nil
}

func (p *Parallel) GetMemory() schema.Memory {
	return p.memory
}

func (p *Parallel) GetInputKeys() []string {
	return p.inputKeys
}

func (p *Parallel) GetOutputKeys() []string {
	return p.outputKeys
}

// ChainConfig configures the prebuilt chains.
type ChainConfig struct {
	Model       llms.Model
	CallOptions []llms.CallOption
	Logger      log.Logger
}

func (cfg ChainConfig) step(name, outputKey string, messages ...prompts.MessageFormatter) (*ChatStep, error) {
	return NewChatStep(ChatStepConfig{
		Name:        name,
		Model:       cfg.Model,
		Prompt:      prompts.NewChatPromptTemplate(messages),
		OutputKey:   outputKey,
		CallOptions: cfg.CallOptions,
		Logger:      cfg.Logger,
	})
}

// NewFactsChain returns a chain from the inputs topic and number to the
// model's answer under "text".
func NewFactsChain(cfg ChainConfig) (*ChatStep, error) {
	return cfg.step("facts", "text",
		prompts.NewSystemMessagePromptTemplate(FactsSystemPrompt, []string{"topic"}),
		prompts.NewHumanMessagePromptTemplate(FactsPrompt, []string{"number", "topic"}),
	)
}

// NewMovieReviewChain returns a chain from the input movie_name to a review
// under "review". A summary of the movie feeds a plot analysis and a
// character analysis that run in parallel, and the two are combined.
func NewMovieReviewChain(cfg ChainConfig) (*chains.SequentialChain, error) {
	critic := prompts.NewSystemMessagePromptTemplate(MovieCriticPrompt, nil)

	summary, err := cfg.step("summary", "summary", critic,
		prompts.NewHumanMessagePromptTemplate(MovieSummaryPrompt, []string{"movie_name"}))
	if err != nil {
		return nil, err
	}
	plot, err := cfg.step("plot", "plot", critic,
		prompts.NewHumanMessagePromptTemplate(PlotAnalysisPrompt, []string{"summary"}))
	if err != nil {
		return nil, err
	}
	characters, err := cfg.step("characters", "characters", critic,
		prompts.NewHumanMessagePromptTemplate(CharacterAnalysisPrompt, []string{"summary"}))
	if err != nil {
		return nil, err
	}
	analyses, err := NewParallel(plot, characters)
	if err != nil {
		return nil, err
	}
	combine := chains.NewTransform(func(_ context.Context, in map[string]any, _ ...chains.ChainCallOption) (map[string]any, error) {
		return map[string]any{"review": CombineVerdicts(fmt.Sprint(in["plot"]), fmt.Sprint(in["characters"]))}, nil
	}, []string{"plot", "characters"}, []string{"review"})

	return chains.NewSequentialChain(
		[]chains.Chain{summary, analyses, combine},
		[]string{"movie_name"},
		[]string{"review"},
	)
}

// CombineVerdicts joins the two analyses of a movie review.
func CombineVerdicts(plot, characters string) string {
	return fmt.Sprintf("Plot Analysis: %s\nCharacters Analysis: %s", plot, characters)
}
