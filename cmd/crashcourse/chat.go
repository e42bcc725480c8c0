package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
)

var (
	chatSession string
	chatStore   string
)

// chatCmd runs an interactive conversation with the tool-calling agent.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a tool-calling assistant",
	Long: `Start an interactive chat. The history is kept in the configured store
under the session id, so a conversation can be resumed with --session.

Type "exit" to quit and print the history, or "reset" to clear it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if chatStore != "" {
			a.cfg.Store.Backend = chatStore
			if err := a.cfg.Validate(); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		llm, err := a.model()
		if err != nil {
			return err
		}
		conversations, err := a.conversationStore(ctx)
		if err != nil {
			return err
		}
		tools, err := a.tools(llm)
		if err != nil {
			return err
		}

		agent, err := prebuilt.NewChatAgent(prebuilt.ChatAgentConfig{
			ReactAgentConfig: prebuilt.ReactAgentConfig{
				Model:         llm,
				Tools:         tools,
				MaxToolRounds: a.cfg.React.MaxToolRounds,
				CallOptions:   a.callOptions(),
				RunConfig:     a.runConfig(),
			},
			Store:     conversations,
			SessionID: chatSession,
		})
		if err != nil {
			return err
		}
		return chatLoop(ctx, agent, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// chatLoop reads one message per line until "exit" or the end of in.
func chatLoop(ctx context.Context, agent *prebuilt.ChatAgent, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "%s\n", systemStyle.Render("Session "+agent.SessionID()+". Type \"exit\" to quit."))

	scanner := bufio.NewScanner(in)
	warned := 0
	for {
		fmt.Fprintf(out, "%s: ", userStyle.Render("You"))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit":
			printHistory(ctx, agent, out)
			return nil
		case "reset":
			if err := agent.Reset(ctx); err != nil {
				fmt.Fprintln(out, errorStyle.Render("reset failed: "+err.Error()))
			}
			continue
		}

		reply, err := agent.Chat(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", assistantStyle.Render("AI"), reply)
		warnings := agent.Warnings()
		for _, w := range warnings[warned:] {
			fmt.Fprintln(out, errorStyle.Render("warning: "+w.Error()))
		}
		warned = len(warnings)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out)
	printHistory(ctx, agent, out)
	return nil
}

func printHistory(ctx context.Context, agent *prebuilt.ChatAgent, out io.Writer) {
	fmt.Fprintln(out, "---- Message History ----")
	for _, turn := range agent.History(ctx) {
		printTurn(out, turn)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id to resume, a new one is generated when empty")
	chatCmd.Flags().StringVar(&chatStore, "store", "", "Override store.backend: memory, file, redis, postgres or sqlite")
}
