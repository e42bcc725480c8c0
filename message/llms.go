package message

import (
	"github.com/tmc/langchaingo/llms"
)

// ToMessageContent converts turns to the langchaingo request format.
func ToMessageContent(turns []Turn) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(turns))
	for _, t := range turns {
		out = append(out, toMessageContent(t))
	}
	return out
}

func toMessageContent(t Turn) llms.MessageContent {
	switch t.Role {
	case RoleTool:
		return llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: t.ToolCallID,
					Name:       t.Name,
					Content:    t.Content,
				},
			},
		}
	case RoleAssistant:
		msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if t.Content != "" || !t.HasToolCalls() {
			msg.Parts = append(msg.Parts, llms.TextPart(t.Content))
		}
		for _, tc := range t.ToolCalls {
			msg.Parts = append(msg.Parts, llms.ToolCall{
				ID:   tc.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return msg
	case RoleSystem:
		return llms.TextParts(llms.ChatMessageTypeSystem, t.Content)
	default:
		return llms.TextParts(llms.ChatMessageTypeHuman, t.Content)
	}
}

// FromChoice wraps a model choice as a turn with the given role. Tool calls
// without an ID get idFn's value, since some providers omit them.
func FromChoice(role Role, choice *llms.ContentChoice, idFn func() string) Turn {
	t := Turn{Role: role, Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		id := tc.ID
		if id == "" && idFn != nil {
			id = idFn()
		}
		t.ToolCalls = append(t.ToolCalls, ToolCall{
			ID:        id,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return t
}

// FromMessageContent is the inverse of ToMessageContent. Parts it does not
// understand are skipped.
func FromMessageContent(msgs []llms.MessageContent) []Turn {
	out := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		t := Turn{Role: roleOf(m.Role)}
		for _, part := range m.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				t.Content += p.Text
			case llms.ToolCall:
				if p.FunctionCall != nil {
					t.ToolCalls = append(t.ToolCalls, ToolCall{ID: p.ID, Name: p.FunctionCall.Name, Arguments: p.FunctionCall.Arguments})
				}
			case llms.ToolCallResponse:
				t.ToolCallID = p.ToolCallID
				t.Name = p.Name
				t.Content += p.Content
			}
		}
		out = append(out, t)
	}
	return out
}

func roleOf(r llms.ChatMessageType) Role {
	switch r {
	case llms.ChatMessageTypeSystem:
		return RoleSystem
	case llms.ChatMessageTypeAI:
		return RoleAssistant
	case llms.ChatMessageTypeTool:
		return RoleTool
	default:
		return RoleUser
	}
}
