package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/config"
	verrors "github.com/tessro/verse/internal/errors"
	"github.com/tessro/verse/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg     *config.Config
	logger  *log.Logger
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "verse",
	Short: "Follow what Spotify is playing from the command line",
	Long: `Verse keeps track of the song playing on your Spotify account, records
what you listened to, and can hand playback over to your phone.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.verserc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", verrors.ErrInvalidConfig, err)
	}

	return nil
}

// initLogger writes to the configured log file, or stderr. --verbose forces
// debug output.
func initLogger() error {
	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		w, logFile = f, f
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger = logging.New(w, level)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, verrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
