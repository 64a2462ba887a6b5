// Package wizard holds the interactive prompts verse falls back to when a
// command is missing input and a terminal is attached.
package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/monitor"
)

// IsTerminal returns true if stdin and stdout are terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// NeedsDevice reports whether the user must pick a transfer target: no
// device was named and none of the devices is a phone or tablet.
func NeedsDevice(deviceFlag string, devices []core.Device) bool {
	if deviceFlag != "" {
		return false
	}
	_, ok := monitor.SelectDevice(devices, monitor.MobileDevice)
	return !ok
}

// GetActiveDevice returns the single active device if there is exactly one.
func GetActiveDevice(devices []core.Device) *core.Device {
	var active *core.Device
	count := 0
	for i := range devices {
		if devices[i].IsActive {
			active = &devices[i]
			count++
		}
	}
	if count == 1 {
		return active
	}
	return nil
}
