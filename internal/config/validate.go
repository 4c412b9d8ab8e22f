// internal/config/validate.go
package config

import (
	"fmt"
	"net/netip"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.PollPeriod == 0 {
		return fmt.Errorf("poll_period must be > 0")
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return fmt.Errorf("database_path is required")
	}
	if cfg.ConnectTimeoutMs < 0 {
		return fmt.Errorf("connect_timeout_ms must be >= 0")
	}
	if cfg.ReconnectDelayMs < 0 {
		return fmt.Errorf("reconnect_delay_ms must be >= 0")
	}
	switch cfg.Logging.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("logging.format %q must be text or json", cfg.Logging.Format)
	}
	if cfg.Logging.Loki.Enabled && cfg.Logging.Loki.URL == "" {
		return fmt.Errorf("logging.loki.url is required when loki is enabled")
	}

	// Table names are case-insensitive in SQLite, so uniqueness is too.
	names := make(map[string]struct{}, len(cfg.Devices))

	for _, d := range cfg.Devices {
		if err := ValidateDestinationName(d.Name); err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
		key := strings.ToLower(d.Name)
		if _, dup := names[key]; dup {
			return fmt.Errorf("device %q: duplicate name", d.Name)
		}
		names[key] = struct{}{}

		if err := validateDevice(d); err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
	}

	return nil
}

func validateDevice(d DeviceConfig) error {
	switch d.Type {
	case DeviceModbusTCP:
		if d.ModbusTCP == nil {
			return fmt.Errorf("type %s requires a modbus_tcp section", d.Type)
		}
		if d.ModbusRTU != nil {
			return fmt.Errorf("type %s must not carry a modbus_rtu section", d.Type)
		}
		if err := validateHost(d.ModbusTCP.IP); err != nil {
			return fmt.Errorf("modbus_tcp.ip: %w", err)
		}
		if d.ModbusTCP.Port == 0 {
			return fmt.Errorf("modbus_tcp.port must be in 1..65535")
		}

	case DeviceModbusRTU:
		if d.ModbusRTU == nil {
			return fmt.Errorf("type %s requires a modbus_rtu section", d.Type)
		}
		if d.ModbusTCP != nil {
			return fmt.Errorf("type %s must not carry a modbus_tcp section", d.Type)
		}
		if d.ModbusRTU.Com == "" {
			return fmt.Errorf("modbus_rtu.com is required")
		}
		if d.ModbusRTU.Baudrate == 0 {
			return fmt.Errorf("modbus_rtu.baudrate must be > 0")
		}

	case DeviceOPCUA, DeviceEthernetIP, DeviceS7:
		// Placeholders: accepted, never polled.
		return nil

	case "":
		return fmt.Errorf("type is required")

	default:
		return fmt.Errorf("unknown type %q", d.Type)
	}

	return validateTags(d.Tags())
}

func validateTags(tags []TagConfig) error {
	seen := make(map[string]struct{}, len(tags))

	for _, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("tag at address %d: name is required", t.Address)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("tag %q: duplicate name", t.Name)
		}
		seen[t.Name] = struct{}{}

		if !t.Value.Valid() {
			return fmt.Errorf("tag %q: value kind is required", t.Name)
		}

		// Multi-register reads must stay inside the 16-bit address space.
		last := uint32(t.Address) + uint32(t.Value.RegisterCount()) - 1
		if last > 0xFFFF {
			return fmt.Errorf(
				"tag %q: %s at address %d exceeds the register address space",
				t.Name,
				t.Value,
				t.Address,
			)
		}
	}

	return nil
}

// ValidateDestinationName checks that a device name can be used as the
// name of its storage table once quoted.
func ValidateDestinationName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 128 {
		return fmt.Errorf("name longer than 128 bytes")
	}
	if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return fmt.Errorf("name must not start with the reserved prefix sqlite_")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c == 0x7F || c == '"' {
			return fmt.Errorf("name contains forbidden character %q", c)
		}
	}
	return nil
}

// validateHost accepts an IP literal or a DNS host name.
func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("required")
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return nil
	}
	for i := 0; i < len(host); i++ {
		c := host[i]
		ok := c == '.' || c == '-' ||
			(c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z')
		if !ok {
			return fmt.Errorf("invalid host %q", host)
		}
	}
	return nil
}
