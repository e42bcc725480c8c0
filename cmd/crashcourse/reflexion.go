package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
)

var (
	reflexionMaxToolResults int
	reflexionHTML           string
)

// reflexionCmd answers a research question with web search and revision.
var reflexionCmd = &cobra.Command{
	Use:   "reflexion <question>",
	Short: "Answer a question, research it and revise the answer with citations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		llm, err := a.model()
		if err != nil {
			return err
		}
		searcher, err := a.searcher()
		if err != nil {
			return err
		}
		maxResults := a.cfg.Reflexion.MaxToolResults
		if cmd.Flags().Changed("max-tool-results") {
			maxResults = reflexionMaxToolResults
		}
		agent, err := prebuilt.CreateReflexionAgent(prebuilt.ReflexionAgentConfig{
			Model:          llm,
			Searcher:       searcher,
			MaxToolResults: maxResults,
			CallOptions:    a.callOptions(),
			RunConfig:      a.runConfig(),
		})
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		answer, res, err := prebuilt.Research(cmd.Context(), agent, question)
		if err != nil {
			return err
		}
		a.logger.Info("reflexion finished after %d steps", res.Steps)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, answer.Answer)
		if len(answer.References) > 0 {
			fmt.Fprintln(out, "\nReferences:")
			for i, ref := range answer.References {
				fmt.Fprintf(out, "[%d] %s\n", i+1, ref)
			}
		}

		if reflexionHTML != "" {
			page, err := renderReport(question, answer.Answer, answer.References)
			if err != nil {
				return err
			}
			if err := os.WriteFile(reflexionHTML, page, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", reflexionHTML, err)
			}
			a.logger.Info("wrote %s", reflexionHTML)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reflexionCmd)
	reflexionCmd.Flags().IntVar(&reflexionMaxToolResults, "max-tool-results", 2, "Stop once more than this many tool results are in the log")
	reflexionCmd.Flags().StringVar(&reflexionHTML, "html", "", "Also write the answer as an HTML page to this file")
}
