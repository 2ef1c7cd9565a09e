package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and source state",
	Long: `Reports the configured data sources, the size of the document
index and which embedding and language model services are wired.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if docIndex == nil || sourceCatalog == nil {
		return errors.New("services not configured")
	}
	ctx := context.Background()

	sources, err := sourceCatalog.Load(ctx)
	if err != nil {
		return err
	}
	enabled := 0
	for _, src := range sources {
		if src.Enabled {
			enabled++
		}
	}
	cmd.Printf("Sources: %d configured, %d enabled\n", len(sources), enabled)

	meta, err := docIndex.ListSourceMeta(ctx)
	if err != nil {
		return err
	}
	chunks, err := docIndex.AllChunks(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Index:   %d files, %d chunks\n", len(meta), len(chunks))

	if embedder != nil {
		cmd.Printf("Embeddings: %s\n", embedder.ModelName())
	} else {
		cmd.Println("Embeddings: not configured (keyword search only)")
	}
	if llm != nil {
		cmd.Printf("LLM:        %s\n", llm.ModelName())
	} else {
		cmd.Println("LLM:        not configured")
	}

	if synchronizer != nil {
		if st, err := synchronizer.Status(ctx); err == nil && st != nil && st.Running {
			cmd.Printf("Sync in progress: %d files processed\n", st.FilesProcessed)
		}
	}
	return nil
}
