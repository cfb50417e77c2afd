package models

// Settings holds the manager-tunable dashboard settings. Display preferences
// are stored and served but never evaluated by the monitor itself.
type Settings struct {
	DeviceTimeoutSeconds        int    `json:"deviceTimeoutSeconds"`        // online/offline split
	OutOfZoneAlertDelaySeconds  int    `json:"outOfZoneAlertDelaySeconds"`  // violation debounce
	BreakDurationValue          int    `json:"breakDurationValue"`
	BreakDurationUnit           string `json:"breakDurationUnit"` // minutes or hours
	AutoRefreshIntervalSeconds  int    `json:"autoRefreshIntervalSeconds"`
	DefaultMapZoom              int    `json:"defaultMapZoom"`
	ShowOfflineDevices          bool   `json:"showOfflineDevices"`
}

// DefaultSettings mirrors the dashboard's factory defaults.
func DefaultSettings() Settings {
	return Settings{
		DeviceTimeoutSeconds:       30,
		OutOfZoneAlertDelaySeconds: 30,
		BreakDurationValue:         15,
		BreakDurationUnit:          "minutes",
		AutoRefreshIntervalSeconds: 5,
		DefaultMapZoom:             16,
		ShowOfflineDevices:         true,
	}
}

// UpdateSettingsRequest carries a partial settings update; nil fields are
// left unchanged.
type UpdateSettingsRequest struct {
	DeviceTimeoutSeconds       *int    `json:"deviceTimeoutSeconds,omitempty"`
	OutOfZoneAlertDelaySeconds *int    `json:"outOfZoneAlertDelaySeconds,omitempty"`
	BreakDurationValue         *int    `json:"breakDurationValue,omitempty"`
	BreakDurationUnit          *string `json:"breakDurationUnit,omitempty"`
	AutoRefreshIntervalSeconds *int    `json:"autoRefreshIntervalSeconds,omitempty"`
	DefaultMapZoom             *int    `json:"defaultMapZoom,omitempty"`
	ShowOfflineDevices         *bool   `json:"showOfflineDevices,omitempty"`
}
