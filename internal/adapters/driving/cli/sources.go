package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/archon-search/archon/internal/core/domain"
)

var (
	addCategory string
	addPriority int
	addPatterns []string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage data sources",
	Long:  `Lists and edits the data source catalog.`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured data sources",
	RunE:  runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add [name] [path]",
	Short: "Add a data source",
	Args:  cobra.ExactArgs(2),
	RunE:  runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a data source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesAddCmd.Flags().StringVar(&addCategory, "category", "", "category label for the source")
	sourcesAddCmd.Flags().IntVar(&addPriority, "priority", 0, "priority for the source")
	sourcesAddCmd.Flags().StringSliceVar(&addPatterns, "pattern", nil, "glob pattern to match files (repeatable)")

	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceCatalog == nil {
		return errors.New("source catalog not configured")
	}

	sources, err := sourceCatalog.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}
	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		cmd.Printf("Add one with: archon sources add <name> <path>\n")
		return nil
	}

	for _, src := range sources {
		state := "enabled"
		if !src.Enabled {
			state = "disabled"
		}
		cmd.Printf("  %s (%s)\n", src.Name, state)
		cmd.Printf("      path: %s\n", src.Path)
		cmd.Printf("      category: %s  priority: %d  patterns: %v\n",
			src.Category, src.Priority, src.Patterns)
	}
	return nil
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	if sourceCatalog == nil {
		return errors.New("source catalog not configured")
	}
	ctx := context.Background()

	path, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	src := domain.DataSource{
		Name:     args[0],
		Path:     path,
		Category: addCategory,
		Priority: addPriority,
		Patterns: addPatterns,
		Enabled:  true,
	}
	src = src.WithDefaults()
	if err := src.Validate(); err != nil {
		return err
	}

	sources, err := sourceCatalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}
	for _, existing := range sources {
		if existing.Name == src.Name {
			return fmt.Errorf("source %q already exists", src.Name)
		}
	}

	sources = append(sources, src)
	if err := sourceCatalog.Save(ctx, sources); err != nil {
		return fmt.Errorf("saving sources: %w", err)
	}

	cmd.Printf("Added source %s (%s).\n", src.Name, src.Path)
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if sourceCatalog == nil {
		return errors.New("source catalog not configured")
	}
	ctx := context.Background()
	name := args[0]

	sources, err := sourceCatalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}

	kept := sources[:0]
	found := false
	for _, src := range sources {
		if src.Name == name {
			found = true
			continue
		}
		kept = append(kept, src)
	}
	if !found {
		return fmt.Errorf("source %q not found", name)
	}

	if err := sourceCatalog.Save(ctx, kept); err != nil {
		return fmt.Errorf("saving sources: %w", err)
	}

	cmd.Printf("Removed source %s.\n", name)
	cmd.Println("Run 'archon sync' to remove its indexed chunks.")
	return nil
}
