package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

const providerName = "openai"

var (
	ErrEmptyResponse = errors.New("no response")
	ErrNotSetAuth    = errors.New("OpenAI API key not set")
)

// LLM is a chat and embedding client for the OpenAI API and compatible
// endpoints.
type LLM struct {
	client           *sdk.Client
	model            string
	embeddingModel   string
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a client authenticated with WithToken or OPENAI_API_KEY.
//
//	llm, err := openai.New(openai.WithModel("gpt-4o-mini"))
func New(opts ...Option) (*LLM, error) {
	options := &options{
		token:          getEnvOrDefault("OPENAI_API_KEY", ""),
		model:          DefaultModel,
		embeddingModel: DefaultEmbeddingModel,
		baseURL:        getEnvOrDefault("OPENAI_BASE_URL", DefaultBaseURL),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.token == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using openai.New(openai.WithToken("{API Key}"))
or
export OPENAI_API_KEY={API Key}`, ErrNotSetAuth)
	}

	cfg := sdk.DefaultConfig(options.token)
	cfg.BaseURL = strings.TrimSuffix(options.baseURL, "/")
	cfg.OrgID = options.organization
	if options.httpClient != nil {
		cfg.HTTPClient = options.httpClient
	}

	return &LLM{
		client:           sdk.NewClientWithConfig(cfg),
		model:            options.model,
		embeddingModel:   options.embeddingModel,
		CallbacksHandler: options.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface. Provider failures are
// returned as *llms.Error so callers can use llms.IsRateLimitError and
// friends.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req, err := o.buildRequest(messages, opts)
	if err != nil {
		return nil, o.fail(ctx, err)
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, o.fail(ctx, mapError(err))
	}
	if len(result.Choices) == 0 {
		return nil, o.fail(ctx, ErrEmptyResponse)
	}

	resp := &llms.ContentResponse{Choices: make([]*llms.ContentChoice, 0, len(result.Choices))}
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		if len(choice.ToolCalls) > 0 {
			choice.FuncCall = choice.ToolCalls[0].FunctionCall
		}
		resp.Choices = append(resp.Choices, choice)
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

func (o *LLM) fail(ctx context.Context, err error) error {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMError(ctx, err)
	}
	return err
}

func (o *LLM) buildRequest(messages []llms.MessageContent, opts *llms.CallOptions) (sdk.ChatCompletionRequest, error) {
	model := o.model
	if opts.Model != "" {
		model = opts.Model
	}

	req := sdk.ChatCompletionRequest{
		Model:            model,
		Messages:         make([]sdk.ChatCompletionMessage, 0, len(messages)),
		Temperature:      float32(opts.Temperature),
		TopP:             float32(opts.TopP),
		MaxTokens:        opts.MaxTokens,
		N:                opts.N,
		Stop:             opts.StopWords,
		FrequencyPenalty: float32(opts.FrequencyPenalty),
		PresencePenalty:  float32(opts.PresencePenalty),
	}
	if opts.Seed != 0 {
		seed := opts.Seed
		req.Seed = &seed
	}
	if opts.JSONMode {
		req.ResponseFormat = &sdk.ChatCompletionResponseFormat{Type: sdk.ChatCompletionResponseFormatTypeJSONObject}
	}

	for _, msg := range messages {
		m, err := toChatMessage(msg)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, m)
	}

	for _, t := range opts.Tools {
		if t.Function == nil {
			continue
		}
		req.Tools = append(req.Tools, sdk.Tool{
			Type: sdk.ToolTypeFunction,
			Function: &sdk.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
				Strict:      t.Function.Strict,
			},
		})
	}
	if len(req.Tools) > 0 && opts.ToolChoice != nil {
		req.ToolChoice = toToolChoice(opts.ToolChoice)
	}
	return req, nil
}

func toChatMessage(msg llms.MessageContent) (sdk.ChatCompletionMessage, error) {
	var m sdk.ChatCompletionMessage
	switch msg.Role {
	case llms.ChatMessageTypeSystem:
		m.Role = sdk.ChatMessageRoleSystem
	case llms.ChatMessageTypeAI:
		m.Role = sdk.ChatMessageRoleAssistant
	case llms.ChatMessageTypeTool, llms.ChatMessageTypeFunction:
		m.Role = sdk.ChatMessageRoleTool
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric, "":
		m.Role = sdk.ChatMessageRoleUser
	default:
		return m, fmt.Errorf("role %s not supported", msg.Role)
	}

	var content strings.Builder
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			content.WriteString(p.Text)
		case llms.ToolCall:
			if p.FunctionCall == nil {
				continue
			}
			m.ToolCalls = append(m.ToolCalls, sdk.ToolCall{
				ID:   p.ID,
				Type: sdk.ToolTypeFunction,
				Function: sdk.FunctionCall{
					Name:      p.FunctionCall.Name,
					Arguments: p.FunctionCall.Arguments,
				},
			})
		case llms.ToolCallResponse:
			m.ToolCallID = p.ToolCallID
			m.Name = p.Name
			content.WriteString(p.Content)
		default:
			return m, fmt.Errorf("content part %T not supported", part)
		}
	}
	m.Content = content.String()
	return m, nil
}

func toToolChoice(choice any) any {
	switch c := choice.(type) {
	case llms.ToolChoice:
		return toolChoiceOf(&c)
	case *llms.ToolChoice:
		return toolChoiceOf(c)
	default:
		return choice
	}
}

func toolChoiceOf(c *llms.ToolChoice) any {
	if c.Function == nil {
		return c.Type
	}
	return sdk.ToolChoice{
		Type:     sdk.ToolTypeFunction,
		Function: sdk.ToolFunction{Name: c.Function.Name},
	}
}

// CreateEmbedding embeds texts with the configured embedding model.
func (o *LLM) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := o.client.CreateEmbeddings(ctx, sdk.EmbeddingRequest{
		Input: texts,
		Model: sdk.EmbeddingModel(o.embeddingModel),
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmptyResponse, len(resp.Data), len(texts))
	}

	emb := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(emb) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		emb[d.Index] = d.Embedding
	}
	return emb, nil
}

// mapError converts SDK and transport failures to *llms.Error.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return llms.NewError(llms.ErrCodeTimeout, providerName, "request timed out").WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return llms.NewError(llms.ErrCodeCanceled, providerName, "request canceled").WithCause(err)
	}

	status, message, kind := 0, err.Error(), ""
	var apiErr *sdk.APIError
	var reqErr *sdk.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, message, kind = apiErr.HTTPStatusCode, apiErr.Message, apiErr.Type
		if code, ok := apiErr.Code.(string); ok && code != "" {
			kind = code
		}
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	var code llms.ErrorCode
	switch {
	case status == http.StatusTooManyRequests && strings.Contains(kind, "quota"):
		code = llms.ErrCodeQuotaExceeded
	case status == http.StatusTooManyRequests:
		code = llms.ErrCodeRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		code = llms.ErrCodeAuthentication
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		code = llms.ErrCodeTimeout
	case status == http.StatusNotFound:
		code = llms.ErrCodeResourceNotFound
	case status >= http.StatusInternalServerError:
		code = llms.ErrCodeProviderUnavailable
	case status == http.StatusBadRequest && strings.Contains(kind, "context_length"):
		code = llms.ErrCodeTokenLimit
	case status == http.StatusBadRequest:
		code = llms.ErrCodeInvalidRequest
	default:
		code = llms.ErrCodeUnknown
	}
	return llms.NewError(code, providerName, message).WithCause(err).WithDetail("status", status)
}
