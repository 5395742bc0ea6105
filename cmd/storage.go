package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/samsriram712/alex/internal/config"
	"github.com/samsriram712/alex/internal/journal"
)

var (
	flagPruneOlderThan string
	flagHistoryEntity  string
	flagHistorySince   string
	flagHistoryFailed  bool
	flagHistoryLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently requested status changes",
	Long: `Show the status changes requested from this machine, newest first, and
whether the backend accepted them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := journal.QueryOpts{Limit: flagHistoryLimit}
		switch flagHistoryEntity {
		case "", "alerts", "todos":
			opts.Entity = flagHistoryEntity
		default:
			return fmt.Errorf("invalid --entity %q (want alerts or todos)", flagHistoryEntity)
		}
		if flagHistorySince != "" {
			d, err := config.ParseDays(flagHistorySince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}
		if flagHistoryFailed {
			opts.Outcome = journal.OutcomeRejected
		}

		j, err := journal.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer j.Close()

		entries, err := j.Recent(opts)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the local history",
	Long: `Delete history entries older than the retention period and reclaim disk space.

Uses history_retention from config (default: 30d) unless overridden with --older-than.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDays(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		j, err := journal.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer j.Close()

		deleted, err := j.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d entr%s older than %s.\n", deleted, plural(deleted, "y", "ies"), formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.HistoryPath()
		j, err := journal.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer j.Close()

		count, size, err := j.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "History: %s\n", dbPath)
		fmt.Fprintf(out, "Entries: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")

	historyCmd.Flags().StringVar(&flagHistoryEntity, "entity", "", "only show alerts or todos")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "only show entries from the last duration (e.g., 7d, 24h)")
	historyCmd.Flags().BoolVar(&flagHistoryFailed, "failed", false, "only show changes the backend rejected")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "maximum number of entries")
}

func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}
	t := newTable("TIME", "ENTITY", "ID", "STATUS", "OUTCOME", "ERROR")
	for _, e := range entries {
		t.Row(e.RequestedAt.Local().Format("2006-01-02 15:04:05"), e.Entity, e.ItemID, e.Status, e.Outcome, truncate(e.Error, 50))
	}
	fmt.Fprintln(w, t.Render())
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
