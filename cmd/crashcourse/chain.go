package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/chains"

	"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
)

var factsNumber int

// chainCmd groups the prompt to model chains that run without a loop.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run a prompt, model and parser chain",
}

var chainFactsCmd = &cobra.Command{
	Use:   "facts <topic>",
	Short: "Ask an expert for the most important facts about a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChain(cmd, func(ctx context.Context, cfg prebuilt.ChainConfig) (string, error) {
			return facts(ctx, cfg, strings.Join(args, " "), factsNumber)
		})
	},
}

var chainMovieCmd = &cobra.Command{
	Use:   "movie <name>",
	Short: "Review the plot and characters of a movie in parallel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChain(cmd, func(ctx context.Context, cfg prebuilt.ChainConfig) (string, error) {
			return movieReview(ctx, cfg, strings.Join(args, " "))
		})
	},
}

func runChain(cmd *cobra.Command, run func(context.Context, prebuilt.ChainConfig) (string, error)) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	llm, err := a.model()
	if err != nil {
		return err
	}
	out, err := run(cmd.Context(), prebuilt.ChainConfig{
		Model:       llm,
		CallOptions: a.callOptions(),
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func facts(ctx context.Context, cfg prebuilt.ChainConfig, topic string, number int) (string, error) {
	chain, err := prebuilt.NewFactsChain(cfg)
	if err != nil {
		return "", err
	}
	return chains.Predict(ctx, chain, map[string]any{"topic": topic, "number": number})
}

func movieReview(ctx context.Context, cfg prebuilt.ChainConfig, name string) (string, error) {
	chain, err := prebuilt.NewMovieReviewChain(cfg)
	if err != nil {
		return "", err
	}
	return chains.Run(ctx, chain, name)
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.AddCommand(chainFactsCmd, chainMovieCmd)
	chainFactsCmd.Flags().IntVar(&factsNumber, "number", 3, "How many facts to ask for")
}
