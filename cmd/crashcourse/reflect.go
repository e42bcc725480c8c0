package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
)

var reflectMaxTurns int

// reflectCmd drafts a post and refines it with an editor's critique.
var reflectCmd = &cobra.Command{
	Use:   "reflect <request>",
	Short: "Write a post and improve it through self-critique",
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
		maxTurns := a.cfg.Reflection.MaxTurns
		if cmd.Flags().Changed("max-turns") {
			maxTurns = reflectMaxTurns
		}
		agent, err := prebuilt.CreateReflectionAgent(prebuilt.ReflectionAgentConfig{
			Model:       llm,
			MaxTurns:    maxTurns,
			CallOptions: a.callOptions(),
			RunConfig:   a.runConfig(),
		})
		if err != nil {
			return err
		}

		post, res, err := prebuilt.Reflect(cmd.Context(), agent, strings.Join(args, " "))
		if err != nil {
			return err
		}
		a.logger.Info("reflection finished after %d steps", res.Steps)
		fmt.Fprintln(cmd.OutOrStdout(), post)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reflectCmd)
	reflectCmd.Flags().IntVar(&reflectMaxTurns, "max-turns", 6, "Stop once the log holds more than this many turns")
}
