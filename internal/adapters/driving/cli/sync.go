package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archon-search/archon/internal/core/domain"
)

var syncShowFiles bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the index with the configured sources",
	Long: `Runs one reconciliation pass: scans every enabled data source,
classifies files as new, modified, deleted or unchanged, and applies
only the necessary index mutations.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncShowFiles, "files", false, "list per-file outcomes")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}

	ctx := context.Background()
	cmd.Println("Synchronising sources...")

	report, err := syncWithProgress(ctx, cmd)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// syncWithProgress runs the sync while displaying progress updates.
func syncWithProgress(ctx context.Context, cmd *cobra.Command) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		report, err := synchronizer.Sync(ctx)
		resCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			// Best effort; status errors are not worth surfacing here.
			status, err := synchronizer.Status(ctx)
			if err == nil && status != nil && status.FilesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d files", status.FilesProcessed)
				lastCount = status.FilesProcessed
			}
		}
	}
}

func printReport(cmd *cobra.Command, report *domain.SyncReport) {
	if report == nil {
		return
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	cmd.Printf("Done in %s.\n", elapsed)
	cmd.Printf("  new: %d  modified: %d  deleted: %d  unchanged: %d\n",
		report.NewCount, report.ModifiedCount, report.DeletedCount, report.UnchangedCount)
	if report.Failures > 0 {
		cmd.Printf("  failures: %d\n", report.Failures)
	}
	if report.Rebuilt {
		cmd.Println("  keyword index rebuilt")
	}

	if !syncShowFiles {
		return
	}
	for _, o := range report.Outcomes {
		if o.Failed() {
			cmd.Printf("  FAIL %-9s %s: %s\n", o.Class, o.Path, o.Err)
			continue
		}
		cmd.Printf("  ok   %-9s %s (%d chunks)\n", o.Class, o.Path, o.Chunks)
	}
}
