// internal/supervisor/builder.go
package supervisor

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-datalogger/internal/config"
	"github.com/tamzrod/modbus-datalogger/internal/metrics"
	"github.com/tamzrod/modbus-datalogger/internal/poller"
	"github.com/tamzrod/modbus-datalogger/internal/sink"
)

// Build creates one poller per Modbus TCP device. Devices of other types
// are reported and skipped; they are never fatal.
func Build(cfg *config.Config, snk sink.Sink, logger zerolog.Logger, mc metrics.Collector) ([]Runner, error) {
	runners := make([]Runner, 0, len(cfg.Devices))

	for _, d := range cfg.Devices {
		if d.Type != config.DeviceModbusTCP {
			logger.Warn().
				Str("device", d.Name).
				Str("type", string(d.Type)).
				Msg("no engine for device type; device skipped")
			continue
		}

		p, err := poller.Build(d, cfg, snk,
			poller.WithLogger(logger),
			poller.WithMetrics(mc),
		)
		if err != nil {
			return nil, err
		}
		runners = append(runners, p)
	}

	return runners, nil
}
