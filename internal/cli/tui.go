package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/logging"
	"github.com/tessro/verse/internal/monitor"
	"github.com/tessro/verse/internal/tui"
)

var (
	tuiInterval time.Duration
	tuiNoPoll   bool
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, progress, device
  • Devices - available playback devices
  • History - recently detected tracks

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  r            Refresh now
  p            Start/stop polling
  t            Move playback to your phone
  Tab          Switch panel
  Enter        Transfer to the selected device
  x            Remove the selected history entry`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&tuiInterval, "interval", 0, "poll interval (default from config)")
	tuiCmd.Flags().BoolVar(&tuiNoPoll, "no-poll", false, "do not start polling on launch")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alt screen
	if cfg.Log.File == "" {
		logger = logging.Discard()
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := tui.NewBridge()
	m := newMonitor(s, h,
		monitor.WithHooks(bridge.Hooks()),
		monitor.WithAutoStart(false),
	)
	defer m.Close()

	app := tui.NewApp(m, s.provider, h,
		tui.WithScope(cfg.History.Scope),
		tui.WithPolling(!tuiNoPoll, tuiInterval),
	)
	return tui.Run(ctx, app, bridge)
}
