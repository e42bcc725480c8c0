package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/nikolajIvanov/langchain-crash-course/rag"
)

// ingestCmd splits text files into chunks and stores their embeddings.
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Add text files to the local document index",
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
		splitter := textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(a.cfg.RAG.ChunkSize),
			textsplitter.WithChunkOverlap(a.cfg.RAG.ChunkOverlap),
		)

		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			n, err := rag.Ingest(cmd.Context(), f, filepath.Base(path), splitter, docs)
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", path, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
