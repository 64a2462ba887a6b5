package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/logging"
	"github.com/tessro/verse/internal/server"
)

var (
	serveAddr string
	servePoll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve now-playing state over a local HTTP API",
	Long: `Runs a local JSON API exposing the monitor and play history.

Endpoints:
  GET    /healthz
  GET    /api/now-playing
  POST   /api/now-playing/refresh
  POST   /api/polling            {"interval_ms": 2000}
  DELETE /api/polling
  POST   /api/transfer           {"device_id": "..."} or {"device_name": "..."}
  GET    /api/history?limit=50
  DELETE /api/history/{id}
  DELETE /api/history`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&servePoll, "poll", false, "start polling immediately")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	m := newMonitor(s, h)
	defer m.Close()

	if servePoll {
		m.StartPolling(ctx, 0)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(m, h,
		server.WithScope(cfg.History.Scope),
		server.WithLogger(logging.With(logger, "component", "server")),
		server.WithBaseContext(ctx),
	)
	return srv.ListenAndServe(ctx, addr)
}
