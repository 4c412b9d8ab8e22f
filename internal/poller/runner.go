// internal/poller/runner.go
package poller

import (
	"context"

	"github.com/tamzrod/modbus-datalogger/internal/status"
)

// Run drives AcquireSession -> ReadCycle -> Sleep until ctx is cancelled.
// One goroutine per device. No overlap. The session is closed on return.
func (p *Poller) Run(ctx context.Context) {
	defer p.conn.Close()

	p.logger.Info().
		Str("endpoint", p.cfg.Device.Endpoint).
		Dur("interval", p.cfg.Interval).
		Int("tags", len(p.cfg.Device.Tags)).
		Msg("poller started")
	defer func() { p.logger.Info().Msg("poller stopped") }()

	reporter := status.NewReporter(p.logger)

	for {
		if !p.conn.Connected() {
			if err := p.conn.ConnectLoop(ctx); err != nil {
				return
			}
		}

		start := p.now()
		res := p.PollOnce(ctx, start)
		p.metrics.ObserveCycle(p.cfg.Device.Name, p.now().Sub(start))

		p.logger.Debug().
			Int("read", res.Read).
			Int("recorded", res.Recorded).
			Int("failed", res.Failed).
			Msg("cycle done")
		reporter.Report(p.Status())

		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			return
		}
	}
}
