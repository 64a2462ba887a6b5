package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/history"
)

var (
	historyLimit int
	historyYes   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently detected tracks",
	Long: `Lists tracks verse has detected, most recent first. Hearing the same track
again within 24 hours updates its entry instead of adding a new one.`,
	RunE: runHistory,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove history entries",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryRm,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum entries to show (0 for all)")
	historyClearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "do not ask for confirmation")

	historyCmd.AddCommand(historyRmCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	entries, err := h.List(cmd.Context(), cfg.History.Scope, historyLimit)
	if err != nil {
		return err
	}

	if JSONOutput() {
		if entries == nil {
			entries = []core.HistoryEntry{}
		}
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No history yet")
		return nil
	}

	printHistory(entries)
	return nil
}

func printHistory(entries []core.HistoryEntry) {
	headers := []string{"WHEN", "TITLE", "ARTIST", "LENGTH"}
	if Verbose() {
		headers = append(headers, "ID")
	}

	t := NewTable(headers...)
	for _, e := range entries {
		row := []string{
			humanize.Time(e.DetectedAt),
			TruncateString(e.Title, 40),
			TruncateString(e.Artist, 30),
			core.FormatClock(e.DurationMs),
		}
		if Verbose() {
			row = append(row, e.ID)
		}
		t.Row(row...)
	}
	t.Flush()
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	removed := make([]string, 0, len(args))
	for _, id := range args {
		if err := h.Remove(cmd.Context(), id); err != nil {
			if verrors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no history entry %q: %w", id, err)
			}
			return err
		}
		removed = append(removed, id)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"status":  "removed",
			"removed": removed,
		})
	}
	fmt.Printf("Removed %d %s\n", len(removed), pluralize(len(removed), "entry", "entries"))
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	if !historyYes && !JSONOutput() {
		confirmed, err := confirmClear(cmd.Context(), cfg.History.Scope)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := h.Clear(cmd.Context(), cfg.History.Scope); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "cleared"})
	}
	fmt.Println("History cleared.")
	return nil
}

func confirmClear(ctx context.Context, scope string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Clear all history for %q?", scope)).
				Description("This cannot be undone.").
				Affirmative("Clear").
				Negative("Keep").
				Value(&confirmed),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return confirmed, nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
