// Command crashcourse runs the reflection, reflexion and chat agents from
// the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	trace      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "crashcourse",
	Short: "Conversational agent loops on top of langchaingo",
	Long: `crashcourse drives three agent loops against an OpenAI compatible model:

- reflect:   draft a post and refine it with an editor's critique
- reflexion: answer a research question, search the web and revise with citations
- chat:      a tool-calling assistant whose history is kept in a store

ingest and ask build and query a local document index.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error or none")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Print every agent step to stderr")
}
