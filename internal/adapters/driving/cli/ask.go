package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archon-search/archon/internal/core/domain"
)

var askCategory string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the indexed documents",
	Long: `Retrieves the most relevant chunks for a question and, when an LLM
is configured, generates an answer grounded on them. Without an LLM
the supporting chunks are listed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askCategory, "category", "", "restrict context to one category")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	ctx := context.Background()
	answer, err := askService.Ask(ctx, args[0], domain.SearchOptions{Category: askCategory})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if answer.Text != "" {
		cmd.Println(answer.Text)
		cmd.Println()
	} else {
		cmd.Println("No LLM configured; showing supporting chunks only.")
		cmd.Println()
	}

	if len(answer.Sources) == 0 {
		cmd.Println("No supporting chunks found.")
		return nil
	}

	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Chunk.Meta.SourcePath, src.Score)
	}
	if answer.Model != "" {
		cmd.Printf("\nModel: %s\n", answer.Model)
	}
	return nil
}
