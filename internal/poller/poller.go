// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-datalogger/internal/codec"
	"github.com/tamzrod/modbus-datalogger/internal/metrics"
	"github.com/tamzrod/modbus-datalogger/internal/sink"
	"github.com/tamzrod/modbus-datalogger/internal/status"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Device         Device
	Interval       time.Duration
	ReconnectDelay time.Duration
}

// Option customizes a Poller.
type Option func(*Poller)

// WithLogger sets the base logger. The device name is added as a field.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(mc metrics.Collector) Option {
	return func(p *Poller) {
		if mc != nil {
			p.metrics = mc
		}
	}
}

// WithClock overrides the cycle timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithSleep overrides how the poller waits between cycles and connect attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(p *Poller) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// Poller is a clock-driven reader for one device.
type Poller struct {
	cfg     Config
	conn    *Conn
	sink    sink.Sink
	logger  zerolog.Logger
	metrics metrics.Collector
	now     func() time.Time
	sleep   SleepFunc
}

// New creates a poller with immutable config. It does not connect.
func New(cfg Config, factory Factory, snk sink.Sink, opts ...Option) (*Poller, error) {
	if cfg.Device.Name == "" {
		return nil, errors.New("poller: device name required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.ReconnectDelay <= 0 {
		return nil, errors.New("poller: reconnect delay must be > 0")
	}
	if factory == nil {
		return nil, errors.New("poller: client factory required")
	}
	if snk == nil {
		return nil, errors.New("poller: sink required")
	}
	for _, t := range cfg.Device.Tags {
		if !t.Kind.Valid() {
			return nil, fmt.Errorf("poller: tag %q: unknown value kind", t.Name)
		}
	}

	p := &Poller{
		cfg:     cfg,
		sink:    snk,
		logger:  zerolog.Nop(),
		metrics: metrics.Noop(),
		now:     time.Now,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("device", cfg.Device.Name).Logger()
	p.conn = newConn(cfg.Device.Name, factory, cfg.ReconnectDelay, p.sleep, p.logger, p.metrics)

	return p, nil
}

// Name is the device name.
func (p *Poller) Name() string {
	return p.cfg.Device.Name
}

// Status returns the current session snapshot.
func (p *Poller) Status() status.Snapshot {
	return p.conn.Status()
}

// PollOnce reads every tag once, in configured order, stamping all samples
// with at. A failed read costs that tag's sample and one reconnect attempt;
// the cycle always continues with the next tag.
func (p *Poller) PollOnce(ctx context.Context, at time.Time) CycleResult {
	name := p.cfg.Device.Name
	res := CycleResult{Device: name, At: at}

	for _, tag := range p.cfg.Device.Tags {
		if ctx.Err() != nil {
			break
		}

		regs, err := p.conn.Read(tag)
		p.metrics.ObserveRead(name, err)
		if err != nil {
			res.Failed++
			p.logger.Error().
				Err(err).
				Str("tag", tag.Name).
				Uint16("address", tag.Address).
				Msgf("Failed to read tag %s with address %d", tag.Name, tag.Address)

			if ctx.Err() != nil {
				continue
			}
			res.Reconnects++
			p.conn.Reconnect(ctx)
			continue
		}
		res.Read++

		smp := sink.Sample{
			Device:      name,
			Tag:         tag.Name,
			Description: tag.Description,
			Timestamp:   at,
			Value:       codec.Decode(tag.Kind, regs),
		}

		// A completed read is written even while shutting down.
		err = p.sink.Record(context.WithoutCancel(ctx), smp)
		p.metrics.ObserveRecord(name, err)
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("tag", tag.Name).
				Msg("sample lost")
			continue
		}
		res.Recorded++
	}

	p.conn.noteCycle(at)
	return res
}
