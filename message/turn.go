package message

import "fmt"

// Role tags who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall is a structured request from an assistant turn to invoke a named
// tool. Arguments holds the raw JSON object produced by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one role-tagged entry of a conversation.
//
// ToolCalls is only set on assistant turns that request tools. ToolCallID
// and Name are only set on tool-result turns.
type Turn struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

func System(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

func User(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// Assistant builds an assistant turn, optionally requesting tools.
func Assistant(content string, calls ...ToolCall) Turn {
	t := Turn{Role: RoleAssistant, Content: content}
	if len(calls) > 0 {
		t.ToolCalls = append([]ToolCall(nil), calls...)
	}
	return t
}

// ToolResult builds the tool-role turn answering the call with callID.
func ToolResult(callID, name, content string) Turn {
	return Turn{Role: RoleTool, Content: content, ToolCallID: callID, Name: name}
}

// HasToolCalls reports whether the turn requests at least one tool.
func (t Turn) HasToolCalls() bool {
	return len(t.ToolCalls) > 0
}

// Clone returns a copy that shares no memory with t.
func (t Turn) Clone() Turn {
	c := t
	if t.ToolCalls != nil {
		c.ToolCalls = append([]ToolCall(nil), t.ToolCalls...)
	}
	return c
}

// Validate checks the role-specific shape of the turn.
func (t Turn) Validate() error {
	if !t.Role.Valid() {
		return fmt.Errorf("invalid role %q", t.Role)
	}
	if t.HasToolCalls() && t.Role != RoleAssistant {
		return fmt.Errorf("%s turn cannot carry tool calls", t.Role)
	}
	if t.ToolCallID != "" && t.Role != RoleTool {
		return fmt.Errorf("%s turn cannot carry a tool call id", t.Role)
	}
	return nil
}

func (t Turn) String() string {
	switch {
	case t.HasToolCalls():
		return fmt.Sprintf("%s: %s (%d tool calls)", t.Role, t.Content, len(t.ToolCalls))
	case t.Role == RoleTool:
		return fmt.Sprintf("%s[%s]: %s", t.Role, t.ToolCallID, t.Content)
	default:
		return fmt.Sprintf("%s: %s", t.Role, t.Content)
	}
}
