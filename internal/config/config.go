// internal/config/config.go
package config

import (
	"net"
	"strconv"

	"github.com/tamzrod/modbus-datalogger/internal/codec"
)

type Config struct {
	PollPeriod       uint32 `yaml:"poll_period" toml:"poll_period"` // seconds
	DatabasePath     string `yaml:"database_path" toml:"database_path"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms" toml:"connect_timeout_ms"`
	ReconnectDelayMs int    `yaml:"reconnect_delay_ms" toml:"reconnect_delay_ms"`

	Logging LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Devices []DeviceConfig `yaml:"devices" toml:"devices"`
}

// ---- DEVICE ----

// DeviceType discriminates the transport section of a device.
type DeviceType string

const (
	DeviceModbusTCP  DeviceType = "modbus_tcp"
	DeviceModbusRTU  DeviceType = "modbus_rtu"
	DeviceOPCUA      DeviceType = "opc_ua"
	DeviceEthernetIP DeviceType = "ethernet_ip"
	DeviceS7         DeviceType = "s7"
)

type DeviceConfig struct {
	Name string     `yaml:"name" toml:"name"`
	Type DeviceType `yaml:"type" toml:"type"`

	// Exactly one section matching Type is set (none for placeholder types).
	ModbusTCP *ModbusTCPConfig `yaml:"modbus_tcp,omitempty" toml:"modbus_tcp,omitempty"`
	ModbusRTU *ModbusRTUConfig `yaml:"modbus_rtu,omitempty" toml:"modbus_rtu,omitempty"`
}

// Tags returns the tag list of whichever transport section is present.
func (d DeviceConfig) Tags() []TagConfig {
	switch {
	case d.ModbusTCP != nil:
		return d.ModbusTCP.Tags
	case d.ModbusRTU != nil:
		return d.ModbusRTU.Tags
	default:
		return nil
	}
}

// ---- TRANSPORTS ----

type ModbusTCPConfig struct {
	IP     string      `yaml:"ip" toml:"ip"`
	Port   uint16      `yaml:"port" toml:"port"`
	UnitID *uint8      `yaml:"unit_id,omitempty" toml:"unit_id,omitempty"` // default 255
	Tags   []TagConfig `yaml:"tags" toml:"tags"`
}

// Endpoint is the dialable host:port of the device.
func (c ModbusTCPConfig) Endpoint() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(int(c.Port)))
}

type ModbusRTUConfig struct {
	Com      string      `yaml:"com" toml:"com"`
	Baudrate uint32      `yaml:"baudrate" toml:"baudrate"`
	Tags     []TagConfig `yaml:"tags" toml:"tags"`
}

// ---- TAG ----

type TagConfig struct {
	Name        string     `yaml:"name" toml:"name"`
	Description string     `yaml:"description" toml:"description"`
	Address     uint16     `yaml:"address" toml:"address"`
	Value       codec.Kind `yaml:"value" toml:"value"`
}

// ---- AMBIENT ----

// Log output formats. Text is the default.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type LoggingConfig struct {
	Level  string     `yaml:"level" toml:"level"`
	Format string     `yaml:"format" toml:"format"` // text | json
	Loki   LokiConfig `yaml:"loki" toml:"loki"`
}

type LokiConfig struct {
	Enabled bool              `yaml:"enabled" toml:"enabled"`
	URL     string            `yaml:"url" toml:"url"`
	Labels  map[string]string `yaml:"labels" toml:"labels"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen" toml:"listen"` // empty disables the listener
}
