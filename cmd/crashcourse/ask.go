package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolajIvanov/langchain-crash-course/rag"
)

var (
	askK           int
	askShowSources bool
)

// askCmd answers a question from the local document index only.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the ingested documents",
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
		docs, err := a.documents(llm)
		if err != nil {
			return err
		}

		answer, err := rag.Ask(cmd.Context(), llm, a.retriever(docs, askK), strings.Join(args, " "), a.callOptions()...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, answer.Text)
		if askShowSources {
			fmt.Fprintln(out, "\nSources:")
			for i, d := range answer.Documents {
				fmt.Fprintf(out, "%d. %v (score %.3f)\n", i+1, d.Metadata["source"], d.Score)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askK, "k", 0, "Number of documents to retrieve, rag.k when zero")
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "List the retrieved documents")
}
