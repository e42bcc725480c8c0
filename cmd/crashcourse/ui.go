package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func roleLabel(role message.Role) string {
	switch role {
	case message.RoleUser:
		return userStyle.Render("You")
	case message.RoleAssistant:
		return assistantStyle.Render("AI")
	case message.RoleSystem:
		return systemStyle.Render("System")
	case message.RoleTool:
		return toolStyle.Render("Tool")
	}
	return string(role)
}

// printTurn writes one turn the way the chat transcript shows it.
func printTurn(w io.Writer, turn message.Turn) {
	content := turn.Content
	if turn.HasToolCalls() {
		names := make([]string, len(turn.ToolCalls))
		for i, c := range turn.ToolCalls {
			names[i] = c.Name
		}
		if content != "" {
			content += " "
		}
		content += toolStyle.Render("[calls " + strings.Join(names, ", ") + "]")
	}
	if turn.Role == message.RoleTool {
		content = toolStyle.Render(turn.Name+": ") + content
	}
	fmt.Fprintf(w, "%s: %s\n", roleLabel(turn.Role), content)
}

// traceListener prints each finished step to w.
func traceListener(w io.Writer) graph.Listener {
	return graph.ListenerFunc(func(_ context.Context, e graph.Event) {
		switch e.Kind {
		case graph.EventStepEnd:
			fmt.Fprintln(w, traceStyle.Render(fmt.Sprintf("-> %s: %d turn(s) in %s", e.State, len(e.Appended), e.Duration.Round(time.Millisecond))))
		case graph.EventStepError:
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("-> %s failed: %v", e.State, e.Err)))
		}
	})
}
