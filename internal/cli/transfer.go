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
	"github.com/tessro/verse/internal/wizard"
)

var (
	transferDevice string
	transferPick   bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Move playback to another device",
	Long: `Moves playback to a phone or tablet, or to the device named with --device
(matched by ID or case-insensitive name). --pick shows a device picker,
which also opens when no phone or tablet is available and a terminal is
attached.

Requires Spotify Premium.`,
	RunE: runTransfer,
}

func init() {
	transferCmd.Flags().StringVarP(&transferDevice, "device", "d", "", "device name or ID")
	transferCmd.Flags().BoolVarP(&transferPick, "pick", "p", false, "choose the device interactively")
	rootCmd.AddCommand(transferCmd)
}

func runTransfer(cmd *cobra.Command, args []string) error {
	s, err := newSpotifyStack()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	var selector monitor.DeviceSelector
	if transferDevice != "" {
		selector = deviceMatcher(transferDevice)
	}

	if transferPick || (wizard.IsTerminal() && !JSONOutput()) {
		devices, err := s.provider.Devices(ctx)
		if err != nil {
			return err
		}
		if transferPick || wizard.NeedsDevice(transferDevice, devices) {
			id, err := pickDevice(devices)
			if err != nil {
				return err
			}
			selector = monitor.DeviceByID(id)
		}
	}

	// No follow-up read: the process exits right after the transfer
	m := newMonitor(s, nil, monitor.WithAutoStart(false))
	defer m.Close()

	device, err := m.TransferPlayback(ctx, selector)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"status": "transferred",
			"device": device,
		})
	}
	fmt.Printf("Playback moved to %s %s\n", DeviceIcon(device.Kind), device.Name)
	return nil
}

// deviceMatcher matches on ID or name.
func deviceMatcher(v string) monitor.DeviceSelector {
	byID, byName := monitor.DeviceByID(v), monitor.DeviceByName(v)
	return func(d core.Device) bool {
		return byID(d) || byName(d)
	}
}

func pickDevice(devices []core.Device) (string, error) {
	if len(devices) == 0 {
		return "", verrors.ErrNoMatchingDevice
	}

	device, err := wizard.RunDevicePicker(devices)
	if err != nil {
		return "", err
	}
	if device == nil {
		return "", fmt.Errorf("selection cancelled")
	}
	return device.ID, nil
}
