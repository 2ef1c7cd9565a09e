package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/archon-search/archon/internal/core/domain"
)

var (
	searchLimit    int
	searchCategory string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across all indexed chunks.
Combines keyword (BM25) and semantic (vector) scores when an
embedding service is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict results to one category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	opts := domain.SearchOptions{
		Limit:    searchLimit,
		Category: searchCategory,
	}

	results, err := searchService.Search(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	// Full chunk text is only useful when piped; keep terminal output short.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		meta := results[i].Chunk.Meta
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, meta.SourcePath, results[i].Score)
		cmd.Printf("      source: %s  category: %s  chunk: %d\n",
			meta.DataSourceName, meta.Category, results[i].Chunk.Position)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Content, interactive))
		cmd.Println()
	}
	return nil
}

// snippet flattens chunk text to one line, truncated for terminals.
func snippet(content string, truncate bool) string {
	flat := strings.Join(strings.Fields(content), " ")
	if truncate && len(flat) > 160 {
		flat = flat[:160] + "..."
	}
	return flat
}
