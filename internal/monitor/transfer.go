package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/tessro/verse/internal/core"
	verrors "github.com/tessro/verse/internal/errors"
)

// DeviceSelector picks a transfer target.
type DeviceSelector func(core.Device) bool

// mobileNameHints mark a device as mobile when its kind is not conclusive.
var mobileNameHints = []string{"iphone", "android", "mobile"}

// MobileDevice matches phones and tablets, by kind or by a name hint.
func MobileDevice(d core.Device) bool {
	if d.Kind == core.DeviceKindSmartphone || d.Kind == core.DeviceKindTablet {
		return true
	}
	name := strings.ToLower(d.Name)
	for _, hint := range mobileNameHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// DeviceByID matches the device with the given ID.
func DeviceByID(id string) DeviceSelector {
	return func(d core.Device) bool {
		return d.ID == id
	}
}

// DeviceByName matches devices whose name contains name, ignoring case.
func DeviceByName(name string) DeviceSelector {
	name = strings.ToLower(name)
	return func(d core.Device) bool {
		return strings.Contains(strings.ToLower(d.Name), name)
	}
}

// SelectDevice returns the first device matched by selector.
func SelectDevice(devices []core.Device, selector DeviceSelector) (core.Device, bool) {
	if selector == nil {
		selector = MobileDevice
	}
	for _, d := range devices {
		if selector(d) {
			return d, true
		}
	}
	return core.Device{}, false
}

// TransferPlayback moves playback to the first device matched by selector,
// MobileDevice when nil, and re-reads the playing state once shortly after.
func (m *Monitor) TransferPlayback(ctx context.Context, selector DeviceSelector) (core.Device, error) {
	if err := m.checkCredentials(); err != nil {
		return core.Device{}, err
	}

	devices, err := m.provider.Devices(ctx)
	if err != nil {
		return core.Device{}, m.transferFailed(err)
	}

	target, ok := SelectDevice(devices, selector)
	if !ok {
		return core.Device{}, verrors.ErrNoMatchingDevice
	}

	if err := m.provider.TransferPlayback(ctx, target.ID, true); err != nil {
		return core.Device{}, m.transferFailed(err)
	}

	m.logger.Info("playback transferred", "device", target.Name, "kind", target.Kind)
	m.scheduleFollowUp()
	return target, nil
}

func (m *Monitor) transferFailed(err error) error {
	switch {
	case verrors.Is(err, verrors.ErrSessionExpired):
		_, err = m.expire()
		return err
	case verrors.Is(err, verrors.ErrPremiumRequired), verrors.Is(err, verrors.ErrNotAuthenticated):
		return err
	}
	return verrors.Transient(err)
}

// scheduleFollowUp replaces any pending follow-up with a single background
// fetch after the transfer delay.
func (m *Monitor) scheduleFollowUp() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.followUp != nil {
		m.followUp.Stop()
	}
	gen := m.generation
	m.followUp = time.AfterFunc(m.transferDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), followUpTimeout)
		defer cancel()
		_, _ = m.fetch(ctx, true, gen)
	})
}
