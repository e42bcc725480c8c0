package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/nikolajIvanov/langchain-crash-course/config"
	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
	"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
	"github.com/nikolajIvanov/langchain-crash-course/store/memory"
)

type echoModel struct{}

func (echoModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	last := msgs[len(msgs)-1]
	text := last.Parts[0].(llms.TextContent).Text
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "echo: " + text}}}, nil
}

func (m echoModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestRenderMarkdown(t *testing.T) {
	out := string(renderMarkdown("# Title\n\nSee [docs](https://example.com).\n\n<script>alert(1)</script>"))
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, `href="https://example.com"`)
	assert.NotContains(t, out, "<script>")
}

func TestRenderReport(t *testing.T) {
	page, err := renderReport("What is Go?", "Go is a *language* [1].", []string{"https://go.dev"})
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>What is Go?</title>")
	assert.Contains(t, string(page), "<em>language</em>")
	assert.Contains(t, string(page), "<li>https://go.dev</li>")
}

func TestChainCommands(t *testing.T) {
	ctx := context.Background()
	cfg := prebuilt.ChainConfig{Model: echoModel{}, Logger: log.Discard{}}

	out, err := facts(ctx, cfg, "LLMOps", 3)
	require.NoError(t, err)
	assert.Equal(t, "echo: Gib mir die 3 wichtigsten Informationen über LLMOps.", out)

	out, err = movieReview(ctx, cfg, "Inception")
	require.NoError(t, err)
	plot, characters, ok := strings.Cut(out, "\n")
	require.True(t, ok, out)
	assert.Equal(t, "Plot Analysis: echo: Analyze the plot: echo: Gib mir die wichtigsten Informationen über den Film Inception.. What are its strengths and weaknesses?", plot)
	assert.True(t, strings.HasPrefix(characters, "Characters Analysis: echo: Analyze the characters: echo: Gib mir"), characters)
}

func TestGraphCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"graph", "reflexion"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "flowchart TD\n"))
	assert.Contains(t, out.String(), "START --> respond")
	assert.Contains(t, out.String(), "execute_tools")

	_, err := topologyByName("planner")
	assert.Error(t, err)
}

func TestChatLoop(t *testing.T) {
	conversations := memory.New()
	agent, err := prebuilt.NewChatAgent(prebuilt.ChatAgentConfig{
		ReactAgentConfig: prebuilt.ReactAgentConfig{
			Model:     echoModel{},
			RunConfig: prebuilt.RunConfig{Logger: log.Discard{}},
		},
		Store:     conversations,
		SessionID: "cli",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	err = chatLoop(context.Background(), agent, strings.NewReader("hello\n\nexit\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "echo: hello")
	assert.Contains(t, out.String(), "---- Message History ----")

	stored, err := conversations.Load(context.Background(), "cli")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, message.RoleSystem, stored[0].Role)
	assert.Equal(t, "echo: hello", stored[2].Content)
}

func TestApp_Tools(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Provider = "duckduckgo"
	cfg.React.Tools = []string{"get_system_time", "calculator", "web_search", "fetch_web_page"}
	a := &app{cfg: cfg, logger: log.Discard{}}

	tools, err := a.tools(nil)
	require.NoError(t, err)
	names := make([]string, len(tools))
	for i, tl := range tools {
		names[i] = tl.Name()
	}
	assert.Equal(t, []string{"get_system_time", "calculator", "DuckDuckGo_Search", "fetch_web_page"}, names)

	cfg.React.Tools = []string{"teleport"}
	_, err = a.tools(nil)
	assert.ErrorContains(t, err, `unknown tool "teleport"`)
}

func TestApp_ConversationStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "file"
	cfg.Store.Dir = t.TempDir()
	a := &app{cfg: cfg, logger: log.Discard{}}

	s, err := a.conversationStore(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), "x", message.User("hi")))
	require.NoError(t, a.Close())
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(config.LogConfig{Level: "warn", Backend: "std"})
	require.NoError(t, err)
	assert.IsType(t, &log.StdLogger{}, l)

	_, err = newLogger(config.LogConfig{Level: "loud", Backend: "golog"})
	assert.Error(t, err)
}
