// internal/config/normalize.go
package config

import "strings"

const (
	DefaultConnectTimeoutMs = 5000
	DefaultReconnectDelayMs = 5000

	// DefaultUnitID addresses the TCP device itself rather than a gateway slave.
	DefaultUnitID uint8 = 255
)

// Normalize fills defaults. It is allowed to mutate configuration and
// runs before Validate so validation sees the effective values.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.ConnectTimeoutMs == 0 {
		cfg.ConnectTimeoutMs = DefaultConnectTimeoutMs
	}
	if cfg.ReconnectDelayMs == 0 {
		cfg.ReconnectDelayMs = DefaultReconnectDelayMs
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		d.Name = strings.TrimSpace(d.Name)
		d.Type = DeviceType(strings.ToLower(strings.TrimSpace(string(d.Type))))

		if d.ModbusTCP != nil {
			d.ModbusTCP.IP = strings.TrimSpace(d.ModbusTCP.IP)
			if d.ModbusTCP.UnitID == nil {
				id := DefaultUnitID
				d.ModbusTCP.UnitID = &id
			}
		}
	}
}
