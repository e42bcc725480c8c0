package tool

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Tool is a named capability a model can request. Parameters is the JSON
// schema of the arguments object, and Call receives that object as raw JSON.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, arguments string) (string, error)
}

// Definition turns t into the function definition sent with a generation
// request.
func Definition(t Tool) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

// UnknownToolError is returned when a model asks for a tool that is not
// registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// InvocationError records a registered tool failing. The executor turns it
// into tool-result content instead of stopping the run.
type InvocationError struct {
	Name   string
	CallID string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("tool %s (call %s) failed: %v", e.Name, e.CallID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// objectSchema builds the JSON schema of an arguments object.
func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
