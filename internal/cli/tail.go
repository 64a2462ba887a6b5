package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/monitor"
	"github.com/tessro/verse/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
	tailRecent    int
	tailNoRecord  bool
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch the currently playing track and print changes as they happen.

Events tracked:
  - Track detected (recorded in history)
  - Track changes noticed while polling
  - Pause/Resume
  - Device changes
  - Playback stopping

Format templates can use {{.Type}}, {{.Title}}, {{.Artist}}, {{.Album}},
{{.Device}}, {{.Progress}}, {{.Duration}}, {{.Percent}} and {{.URL}}.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default from config)")
	tailCmd.Flags().IntVarP(&tailRecent, "recent", "n", 5, "recent history entries to show on startup")
	tailCmd.Flags().BoolVar(&tailNoRecord, "no-record", false, "do not record detected tracks in history")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if _, err := tail.ParseTemplate(tailFormat); err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}

	s, err := newSpotifyStack()
	if err != nil {
		return err
	}

	h, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	var sink core.HistorySink = h
	if tailNoRecord {
		sink = nil
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := tail.NewWatcher(64)
	m := newMonitor(s, sink,
		monitor.WithHooks(watcher.Hooks()),
		monitor.WithAutoStart(false),
	)
	defer func() {
		m.Close()
		watcher.Close()
	}()

	showRecent(ctx, h)

	fetchCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	_, err = m.FetchOnce(fetchCtx, false)
	cancel()
	switch {
	case verrors.Is(err, verrors.ErrNothingPlaying):
		if !JSONOutput() {
			fmt.Println("Nothing is playing yet, waiting...")
		}
	case verrors.Is(err, verrors.ErrNotAuthenticated), verrors.Is(err, verrors.ErrSessionExpired):
		return err
	case err != nil:
		logger.Warn("initial fetch failed", "err", err)
	}

	m.StartPolling(ctx, tailInterval)

	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if JSONOutput() {
				if err := enc.Encode(event.Record()); err != nil {
					return err
				}
			} else {
				fmt.Println(formatter.Format(event))
			}
			if event.Type == tail.EventSessionExpired {
				return verrors.ErrSessionExpired
			}
		}
	}
}

// showRecent prints the last few history entries, oldest first, so the
// newest sits just above live output.
func showRecent(ctx context.Context, sink core.HistorySink) {
	if tailRecent <= 0 || JSONOutput() {
		return
	}

	entries, err := sink.List(ctx, cfg.History.Scope, tailRecent)
	if err != nil {
		logger.Debug("could not load recent history", "err", err)
		return
	}

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		timestamp := ""
		if tailTimestamp {
			timestamp = entry.DetectedAt.Local().Format("15:04:05") + " "
		}
		emoji := ""
		if !tailNoEmoji {
			emoji = "⏪ "
		}
		fmt.Printf("%s%s%s - %s\n", timestamp, emoji, entry.Artist, entry.Title)
	}
}
