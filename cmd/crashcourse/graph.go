package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
)

var graphDirection string

// graphCmd prints the control flow of an agent loop as Mermaid.
var graphCmd = &cobra.Command{
	Use:       "graph <reflection|reflexion|react>",
	Short:     "Print an agent loop as a Mermaid flowchart",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"reflection", "reflexion", "react"},
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := topologyByName(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.DrawMermaidWithOptions(t, graph.MermaidOptions{Direction: graphDirection}))
		return nil
	},
}

func topologyByName(name string) (graph.Topology, error) {
	switch name {
	case "reflection":
		return graph.ReflectionLoop{}, nil
	case "reflexion":
		return graph.ReflexionLoop{}, nil
	case "react":
		return graph.ReactLoop{}, nil
	}
	return nil, fmt.Errorf("unknown loop %q", name)
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphDirection, "direction", "TD", "Flowchart direction, TD or LR")
}
