package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/history"
	"github.com/gosense/gosense/internal/report"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded completion queries",
	Long: `Show the most recent completion queries recorded in .gosense/history.db,
newest first, with totals per kind and the mean query duration.

Queries are recorded by 'gosense complete' and the LSP and MCP servers when
history.enabled is set in .gosense/config.yaml.

Examples:
  gosense history             # Last 20 queries
  gosense history --limit 100
  gosense history --prune 500 # Keep only the newest 500
  gosense history --clear     # Delete every recorded query`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyPrune int
	historyClear bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of queries to show")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Delete all but the newest N queries")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every recorded query")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, "")
	if err != nil {
		return err
	}
	defer s.Close()

	store := s.history
	if store == nil {
		dir, err := config.FindConfigDir(s.project.Root)
		if errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("no %s directory found (run 'gosense init')", config.ConfigDirName)
		} else if err != nil {
			return err
		}
		store, err = history.Open(dir)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx := cmd.Context()
	switch {
	case historyClear:
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	case historyPrune > 0:
		n, err := store.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d queries\n", n)
		return nil
	}

	list, err := report.GatherHistory(ctx, store, historyLimit)
	if err != nil {
		return err
	}
	return s.write(cmd, list)
}
