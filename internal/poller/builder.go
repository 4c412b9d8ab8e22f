// internal/poller/builder.go
package poller

import (
	"errors"
	"fmt"

	"github.com/tamzrod/modbus-datalogger/internal/config"
	pmodbus "github.com/tamzrod/modbus-datalogger/internal/poller/modbus"
	"github.com/tamzrod/modbus-datalogger/internal/sink"
)

// ErrNoEngine marks a device type that has no polling engine.
var ErrNoEngine = errors.New("poller: no engine for device type")

// Build constructs a Poller for one Modbus TCP device and wires its
// client factory. It does not connect; the poller owns the session.
func Build(d config.DeviceConfig, c *config.Config, snk sink.Sink, opts ...Option) (*Poller, error) {
	if d.Type != config.DeviceModbusTCP || d.ModbusTCP == nil {
		return nil, fmt.Errorf("%w %q (device %s)", ErrNoEngine, d.Type, d.Name)
	}
	tcp := d.ModbusTCP

	unitID := config.DefaultUnitID
	if tcp.UnitID != nil {
		unitID = *tcp.UnitID
	}

	tags := make([]Tag, 0, len(tcp.Tags))
	for _, t := range tcp.Tags {
		tags = append(tags, Tag{
			Name:        t.Name,
			Description: t.Description,
			Address:     t.Address,
			Kind:        t.Value,
		})
	}

	dev := Device{
		Name:     d.Name,
		Endpoint: tcp.Endpoint(),
		UnitID:   unitID,
		Tags:     tags,
	}

	// client factory: ONE attempt per call
	timeout := c.ConnectTimeout()
	factory := func() (Client, error) {
		cl, err := pmodbus.New(pmodbus.Config{
			Endpoint: dev.Endpoint,
			UnitID:   dev.UnitID,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		return cl, nil
	}

	return New(
		Config{
			Device:         dev,
			Interval:       c.PollInterval(),
			ReconnectDelay: c.ReconnectDelay(),
		},
		factory,
		snk,
		opts...,
	)
}
