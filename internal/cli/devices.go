package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/core"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available playback devices",
	Long:  `Lists the Spotify devices playback can be transferred to.`,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	s, err := newSpotifyStack()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	devices, err := s.provider.Devices(ctx)
	if err != nil {
		return err
	}

	if JSONOutput() {
		if devices == nil {
			devices = []core.Device{}
		}
		return json.NewEncoder(os.Stdout).Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found")
		return nil
	}

	printDevices(devices)
	return nil
}

func printDevices(devices []core.Device) {
	if Verbose() {
		t := NewTable("", "NAME", "KIND", "ID")
		for _, d := range devices {
			t.Row(StatusIcon(d.IsActive), d.Name, d.Kind, d.ID)
		}
		t.Flush()
		return
	}

	for _, d := range devices {
		active := ""
		if d.IsActive {
			active = " " + StatusIcon(true)
		}
		restricted := ""
		if d.IsRestricted {
			restricted = " (restricted)"
		}
		fmt.Printf("  %s %s%s%s\n", DeviceIcon(d.Kind), d.Name, active, restricted)
	}
}
