package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestLog_AppendIsMonotonic(t *testing.T) {
	l := NewLog(System("You are an expert researcher"), User("Explain X"))
	before := l.View()

	l.Append(Assistant("draft"), User("critique"))
	after := l.View()

	require.Len(t, after, 4)
	assert.Equal(t, before, after[:2])
	assert.Equal(t, Assistant("draft"), after[2])
	assert.Equal(t, User("critique"), after[3])
}

func TestLog_ViewCannotRewriteHistory(t *testing.T) {
	l := NewLog(Assistant("", ToolCall{ID: "1", Name: "search", Arguments: `{}`}))

	view := l.View()
	view[0].Content = "tampered"
	view[0].ToolCalls[0].Name = "tampered"

	got := l.View()
	assert.Equal(t, "", got[0].Content)
	assert.Equal(t, "search", got[0].ToolCalls[0].Name)
}

func TestLog_AppendCopiesInput(t *testing.T) {
	calls := []ToolCall{{ID: "1", Name: "a"}}
	turn := Turn{Role: RoleAssistant, ToolCalls: calls}

	l := NewLog()
	l.Append(turn)
	calls[0].Name = "changed"

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "a", last.ToolCalls[0].Name)
}

func TestLog_Queries(t *testing.T) {
	l := NewLog()
	_, ok := l.Last()
	assert.False(t, ok)
	_, ok = l.LastAssistant()
	assert.False(t, ok)

	l.Append(
		User("q"),
		Assistant("a1", ToolCall{ID: "c1", Name: "search"}),
		ToolResult("c1", "search", "r1"),
		Assistant("a2"),
		ToolResult("c2", "search", "r2"),
	)

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, 2, l.Count(RoleTool))
	assert.Equal(t, 2, l.Count(RoleAssistant))
	assert.Equal(t, 0, l.Count(RoleSystem))

	last, ok := l.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "a2", last.Content)
}

func TestDropUnanswered(t *testing.T) {
	call := func(id string) ToolCall { return ToolCall{ID: id, Name: "search", Arguments: `{}`} }
	answered := []Turn{
		System("s"),
		User("q"),
		Assistant("", call("1"), call("2")),
		ToolResult("1", "search", "a"),
		ToolResult("2", "search", "b"),
		Assistant("answer"),
	}
	assert.Equal(t, answered, DropUnanswered(answered))

	dangling := append(append([]Turn(nil), answered...),
		User("again"),
		Assistant("", call("3"), call("4")),
		ToolResult("3", "search", "c"),
	)
	got := DropUnanswered(dangling)
	assert.Equal(t, append(append([]Turn(nil), answered...), User("again")), got)

	stray := []Turn{User("q"), ToolResult("9", "search", "x"), Assistant("done")}
	assert.Equal(t, []Turn{User("q"), Assistant("done")}, DropUnanswered(stray))

	assert.Empty(t, DropUnanswered(nil))
}

func TestTurn_Validate(t *testing.T) {
	assert.NoError(t, User("hi").Validate())
	assert.NoError(t, ToolResult("1", "x", "ok").Validate())
	assert.Error(t, Turn{Role: "robot"}.Validate())
	assert.Error(t, Turn{Role: RoleUser, ToolCalls: []ToolCall{{Name: "x"}}}.Validate())
	assert.Error(t, Turn{Role: RoleUser, ToolCallID: "1"}.Validate())
}

func TestTurn_String(t *testing.T) {
	assert.Equal(t, "user: hi", User("hi").String())
	assert.Equal(t, "tool[c1]: ok", ToolResult("c1", "x", "ok").String())
	assert.Equal(t, "assistant:  (1 tool calls)", Assistant("", ToolCall{Name: "x"}).String())
}

func TestToMessageContent(t *testing.T) {
	turns := []Turn{
		System("sys"),
		User("hello"),
		Assistant("", ToolCall{ID: "c1", Name: "search", Arguments: `{"q":"go"}`}),
		ToolResult("c1", "search", "results"),
		Assistant("done"),
	}

	msgs := ToMessageContent(turns)
	require.Len(t, msgs, 5)

	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, msgs[2].Role)
	require.Len(t, msgs[2].Parts, 1)
	call, ok := msgs[2].Parts[0].(llms.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "search", call.FunctionCall.Name)

	assert.Equal(t, llms.ChatMessageTypeTool, msgs[3].Role)
	resp, ok := msgs[3].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "c1", resp.ToolCallID)
	assert.Equal(t, "results", resp.Content)

	assert.Equal(t, llms.TextPart("done"), msgs[4].Parts[0])

	assert.Equal(t, turns, FromMessageContent(msgs))
}

func TestFromChoice(t *testing.T) {
	choice := &llms.ContentChoice{
		Content: "thinking",
		ToolCalls: []llms.ToolCall{
			{ID: "", FunctionCall: &llms.FunctionCall{Name: "clock", Arguments: `{}`}},
			{ID: "keep", FunctionCall: &llms.FunctionCall{Name: "search", Arguments: `{"q":"x"}`}},
			{ID: "skipped"},
		},
	}

	turn := FromChoice(RoleAssistant, choice, func() string { return "generated" })
	assert.Equal(t, RoleAssistant, turn.Role)
	assert.Equal(t, "thinking", turn.Content)
	require.Len(t, turn.ToolCalls, 2)
	assert.Equal(t, "generated", turn.ToolCalls[0].ID)
	assert.Equal(t, "keep", turn.ToolCalls[1].ID)
}
