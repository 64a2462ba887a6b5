package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/config"
	"github.com/tessro/verse/internal/wizard"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing verse configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values.

With --interactive, asks for the Spotify client ID and polling settings
before writing the file.`,
	RunE: runConfigInit,
}

var configInitInteractive bool

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  spotify.client_id             Spotify client ID
  spotify.redirect_uri          OAuth redirect URI
  spotify.rate_limit            Requests per second
  monitor.interval              Poll interval in milliseconds
  monitor.transfer_delay        Delay before re-reading after a transfer (ms)
  monitor.auto_start            Start polling after a detection (true/false)
  monitor.background_detection  Record tracks noticed while polling (true/false)
  history.path                  History database path
  history.max_entries           Entries kept per scope
  history.scope                 History scope
  server.addr                   HTTP API listen address
  log.level                     debug, info, warn or error
  log.file                      Log file path

Examples:
  verse config set spotify.client_id abc123
  verse config set monitor.interval 3000`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configInitCmd.Flags().BoolVarP(&configInitInteractive, "interactive", "i", false, "prompt for settings")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'verse config init' first", configPath)
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		// Try common editors
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	// Open editor
	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultCfg := config.Default()
	if configInitInteractive {
		if !wizard.IsTerminal() {
			return fmt.Errorf("--interactive needs a terminal")
		}
		if err := wizard.RunSetup(defaultCfg); err != nil {
			return err
		}
	}

	// Write to file
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Write header comment
	writeHeader(f)

	// Write config
	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(defaultCfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		if defaultCfg.Spotify.ClientID == "" {
			fmt.Println("  - Set your Spotify client ID in the config file or via VERSE_SPOTIFY_CLIENT_ID")
		}
		fmt.Println("  - Run 'verse auth login' to authenticate with Spotify")
	}

	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".verserc"
	}

	return filepath.Join(home, ".verserc")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'verse config init' first", configPath)
	}

	// Read the current config file as raw TOML
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Parse and update based on key
	var rawConfig map[string]interface{}
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	section, field, typedValue, err := parseSetting(key, value)
	if err != nil {
		return err
	}

	// Get or create the section
	sectionMap, ok := rawConfig[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		rawConfig[section] = sectionMap
	}

	sectionMap[field] = typedValue

	// Write back to file
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Write header comment
	writeHeader(f)

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(rawConfig); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	} else {
		fmt.Printf("Set %s = %s\n", key, value)
	}

	return nil
}

func writeHeader(w io.Writer) {
	_, _ = fmt.Fprintln(w, "# Verse Configuration")
	_, _ = fmt.Fprintln(w, "# https://github.com/tessro/verse")
	_, _ = fmt.Fprintln(w, "")
}

var (
	intSettings   = []string{"monitor.interval", "monitor.transfer_delay", "history.max_entries"}
	floatSettings = []string{"spotify.rate_limit"}
	boolSettings  = []string{"monitor.auto_start", "monitor.background_detection"}
	textSettings  = []string{
		"spotify.client_id", "spotify.redirect_uri", "spotify.token_file",
		"history.path", "history.scope", "server.addr", "tui.theme",
		"log.level", "log.file",
	}
)

// parseSetting splits key into section and field and converts value to the
// type the key holds.
func parseSetting(key, value string) (string, string, interface{}, error) {
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" || strings.Contains(field, ".") {
		return "", "", nil, fmt.Errorf("invalid key format. Use 'section.key' (e.g., monitor.interval)")
	}

	switch {
	case slices.Contains(intSettings, key):
		i, err := strconv.Atoi(value)
		if err != nil {
			return "", "", nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return section, field, i, nil
	case slices.Contains(floatSettings, key):
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", "", nil, fmt.Errorf("value must be a number for %s", key)
		}
		return section, field, f, nil
	case slices.Contains(boolSettings, key):
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", "", nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return section, field, b, nil
	case slices.Contains(textSettings, key):
		return section, field, value, nil
	}
	return "", "", nil, fmt.Errorf("unknown config key %q", key)
}
