package prebuilt

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// scriptedLLM answers each GenerateContent call with the next scripted
// reply and records what it was sent.
type scriptedLLM struct {
	mu       sync.Mutex
	replies  []reply
	requests [][]llms.MessageContent
	options  []llms.CallOptions
}

type reply struct {
	resp *llms.ContentResponse
	err  error
}

func (m *scriptedLLM) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.requests = append(m.requests, msgs)
	m.options = append(m.options, opts)

	n := len(m.requests) - 1
	if n >= len(m.replies) {
		return nil, fmt.Errorf("unexpected call %d", n+1)
	}
	return m.replies[n].resp, m.replies[n].err
}

func (m *scriptedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *scriptedLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func textReply(content string) reply {
	return reply{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}}
}

func toolReply(content string, calls ...llms.ToolCall) reply {
	return reply{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content, ToolCalls: calls}}}}
}

func errReply(err error) reply {
	return reply{err: err}
}

func functionCall(id, name, args string) llms.ToolCall {
	return llms.ToolCall{
		ID:           id,
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: name, Arguments: args},
	}
}

// systemText returns the text of the first system message of msgs.
func systemText(msgs []llms.MessageContent) string {
	for _, m := range msgs {
		if m.Role != llms.ChatMessageTypeSystem {
			continue
		}
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				return tc.Text
			}
		}
	}
	return ""
}
