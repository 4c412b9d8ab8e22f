// internal/config/sample.go
package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/tamzrod/modbus-datalogger/internal/codec"
)

// sampleYAML is printed by `datalogger create-config`. It must stay loadable.
const sampleYAML = `# modbus-datalogger configuration
#
# poll_period is the pause between two read cycles of one device, in seconds.
poll_period: 60

# SQLite file that receives one table per device. Created if missing.
database_path: ./db.sqlite

# Bound on one connection attempt and on every request (milliseconds).
connect_timeout_ms: 5000

# Fixed pause between failed connection attempts (milliseconds). Retries never stop.
reconnect_delay_ms: 5000

logging:
  level: info      # trace | debug | info | warn | error
  format: text     # text | json
  loki:
    enabled: false
    url: ""
    labels:
      app: modbus-datalogger

metrics:
  listen: ""       # e.g. ":9100" to expose /metrics and /healthz

devices:
  # The device name is also the name of its table in the database.
  - name: PLC_2
    # modbus_tcp is polled. modbus_rtu, opc_ua, ethernet_ip and s7 are
    # accepted but not polled yet.
    type: modbus_tcp
    modbus_tcp:
      ip: 192.168.0.1
      port: 5502
      unit_id: 255
      tags:
        # value: int_holding | real_holding | int_input | real_input | coil
        # real_* kinds read two registers (address, address+1), high word first.
        - name: PIT-1001
          description: Nothing
          address: 0
          value: int_holding
`

// Sample returns the documented sample configuration as YAML.
func Sample() string {
	return sampleYAML
}

// SampleConfig returns the sample configuration as a value.
func SampleConfig() Config {
	unitID := DefaultUnitID
	return Config{
		PollPeriod:       60,
		DatabasePath:     "./db.sqlite",
		ConnectTimeoutMs: DefaultConnectTimeoutMs,
		ReconnectDelayMs: DefaultReconnectDelayMs,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Loki: LokiConfig{
				Labels: map[string]string{"app": "modbus-datalogger"},
			},
		},
		Devices: []DeviceConfig{
			{
				Name: "PLC_2",
				Type: DeviceModbusTCP,
				ModbusTCP: &ModbusTCPConfig{
					IP:     "192.168.0.1",
					Port:   5502,
					UnitID: &unitID,
					Tags: []TagConfig{
						{
							Name:        "PIT-1001",
							Description: "Nothing",
							Address:     0,
							Value:       codec.KindIntHolding,
						},
					},
				},
			},
		},
	}
}

// SampleTOML renders SampleConfig as TOML.
func SampleTOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(SampleConfig()); err != nil {
		return "", fmt.Errorf("config: encode sample toml: %w", err)
	}
	return buf.String(), nil
}
