package prebuilt

import (
	"context"
	"fmt"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
	"github.com/nikolajIvanov/langchain-crash-course/tool"
)

// ToolExecutor runs the tool calls of the newest assistant turn and answers
// each with a tool-result turn.
type ToolExecutor struct {
	registry *tool.Registry
	logger   log.Logger
}

var _ graph.Step = (*ToolExecutor)(nil)

func NewToolExecutor(registry *tool.Registry, logger log.Logger) *ToolExecutor {
	return &ToolExecutor{registry: registry, logger: log.OrDefault(logger)}
}

// Run resolves every requested name before invoking anything, so an
// unknown tool fails with *tool.UnknownToolError and appends nothing. A tool
// that fails or panics is reported in its result content and the run goes
// on.
func (e *ToolExecutor) Run(ctx context.Context, turns []message.Turn) ([]message.Turn, error) {
	last, ok := message.LastAssistant(turns)
	if !ok || !last.HasToolCalls() {
		return nil, nil
	}

	tools := make([]tool.Tool, len(last.ToolCalls))
	for i, call := range last.ToolCalls {
		t, err := e.registry.Lookup(call.Name)
		if err != nil {
			return nil, err
		}
		tools[i] = t
	}

	out := make([]message.Turn, 0, len(last.ToolCalls))
	for i, call := range last.ToolCalls {
		content, err := e.invoke(ctx, tools[i], call)
		if err != nil {
			ierr := &tool.InvocationError{Name: call.Name, CallID: call.ID, Err: err}
			e.logger.Warn("%v", ierr)
			content = fmt.Sprintf("Error: %v", err)
		}
		out = append(out, message.ToolResult(call.ID, call.Name, content))
	}
	return out, nil
}

func (e *ToolExecutor) invoke(ctx context.Context, t tool.Tool, call message.ToolCall) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	e.logger.Debug("calling tool %s (%s) with %s", call.Name, call.ID, call.Arguments)
	return t.Call(ctx, call.Arguments)
}
