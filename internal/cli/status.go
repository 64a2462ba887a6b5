package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/monitor"
)

var statusNoRecord bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is playing now",
	Long: `Fetches the currently playing track once. A newly detected track is
recorded in play history unless --no-record is given.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusNoRecord, "no-record", false, "do not record the track in history")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSpotifyStack()
	if err != nil {
		return err
	}

	var sink core.HistorySink
	if !statusNoRecord {
		h, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()
		sink = h
	}

	m := newMonitor(s, sink, monitor.WithAutoStart(false))
	defer m.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	if _, err := m.FetchOnce(ctx, false); err != nil && !verrors.Is(err, verrors.ErrNothingPlaying) {
		return err
	}

	snap := m.State().Current
	if JSONOutput() {
		return outputStatusJSON(snap)
	}
	outputStatusText(snap)
	return nil
}

func outputStatusJSON(snap *core.Snapshot) error {
	if snap == nil {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"playing": false,
			"message": "Nothing is currently playing",
		})
	}
	return json.NewEncoder(os.Stdout).Encode(snap)
}

func outputStatusText(snap *core.Snapshot) {
	if snap == nil {
		fmt.Println("Nothing is currently playing")
		return
	}

	playIcon := "▶"
	if !snap.IsPlaying {
		playIcon = "⏸"
	}

	fmt.Printf("%s %s\n", playIcon, snap.Title)
	fmt.Printf("  %s - %s\n", snap.Artist, snap.Album)
	fmt.Printf("  %s %s / %s\n", FormatProgress(snap.ProgressPercent, 30), snap.ProgressText, snap.DurationText)
	fmt.Printf("  %s %s\n", DeviceIcon(snap.DeviceKind), snap.DeviceName)

	if Verbose() {
		fmt.Printf("  ID:  %s\n", snap.TrackID)
		if snap.ExternalURL != "" {
			fmt.Printf("  URL: %s\n", snap.ExternalURL)
		}
	}
}
