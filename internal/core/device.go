package core

// Device kinds reported by the provider. The provider may report other kinds;
// Kind is kept as the raw string.
const (
	DeviceKindComputer   = "Computer"
	DeviceKindSmartphone = "Smartphone"
	DeviceKindTablet     = "Tablet"
	DeviceKindSpeaker    = "Speaker"
	DeviceKindTV         = "TV"
)

// Sentinels used when a snapshot carries no device information.
const (
	UnknownDeviceName = "Unknown Device"
	UnknownDeviceKind = "Unknown"
)

// Device represents a playback endpoint.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	IsActive     bool   `json:"is_active"`
	IsRestricted bool   `json:"is_restricted"`
}
