// internal/poller/conn.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-datalogger/internal/codec"
	"github.com/tamzrod/modbus-datalogger/internal/metrics"
	"github.com/tamzrod/modbus-datalogger/internal/status"
)

// ErrNotConnected is returned by Read when no session is live.
var ErrNotConnected = errors.New("poller: not connected")

// Conn owns the single session of one device.
//
// Session methods are called from the device goroutine only.
// Status may be called from anywhere.
type Conn struct {
	device  string
	factory Factory
	delay   time.Duration
	sleep   SleepFunc
	logger  zerolog.Logger
	metrics metrics.Collector

	client Client

	mu        sync.Mutex
	snap      status.Snapshot
	connected bool // at least one session was ever established
}

func newConn(device string, factory Factory, delay time.Duration, sleep SleepFunc, logger zerolog.Logger, mc metrics.Collector) *Conn {
	return &Conn{
		device:  device,
		factory: factory,
		delay:   delay,
		sleep:   sleep,
		logger:  logger,
		metrics: mc,
		snap:    status.Snapshot{Device: device, State: status.StateDisconnected},
	}
}

// Connected reports whether a session is live.
func (c *Conn) Connected() bool {
	return c.client != nil
}

// Connect makes exactly one connection attempt.
func (c *Conn) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.setState(status.StateConnecting, nil)

	client, err := c.factory()
	c.metrics.ObserveConnect(c.device, err)
	if err != nil {
		c.setState(status.StateDisconnected, err)
		return err
	}

	c.client = client

	c.mu.Lock()
	if c.connected {
		c.snap.Reconnects++
	}
	c.connected = true
	c.mu.Unlock()

	c.setState(status.StateConnected, nil)
	return nil
}

// ConnectLoop retries Connect with a fixed delay until it succeeds or ctx
// is cancelled. There is no attempt cap.
func (c *Conn) ConnectLoop(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			c.logger.Info().Int("attempt", attempt).Msg("Connected to device")
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", c.delay).
			Msg("connect failed")

		if err := c.sleep(ctx, c.delay); err != nil {
			return err
		}
	}
}

// Reconnect makes exactly one attempt to replace the session.
func (c *Conn) Reconnect(ctx context.Context) bool {
	if c.client != nil {
		c.Invalidate(nil)
	}

	if err := c.Connect(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("reconnect failed")
		return false
	}

	c.logger.Info().Msg("Reconnected to Modbus server")
	return true
}

// Read fetches the registers of tag from its table. Any failure closes
// and drops the session before the error is returned.
func (c *Conn) Read(tag Tag) ([]uint16, error) {
	if c.client == nil {
		c.noteRead(ErrNotConnected)
		return nil, ErrNotConnected
	}

	regs, err := c.read(tag)
	c.noteRead(err)
	if err != nil {
		c.Invalidate(err)
		return nil, err
	}
	return regs, nil
}

func (c *Conn) read(tag Tag) ([]uint16, error) {
	qty := tag.Kind.RegisterCount()

	var (
		regs []uint16
		err  error
	)

	switch tag.Kind.Table() {
	case codec.TableHolding:
		regs, err = c.client.ReadHoldingRegisters(tag.Address, qty)
	case codec.TableInput:
		regs, err = c.client.ReadInputRegisters(tag.Address, qty)
	case codec.TableCoil:
		var bits []bool
		bits, err = c.client.ReadCoils(tag.Address, qty)
		if err == nil {
			if len(bits) != int(qty) {
				return nil, fmt.Errorf("poller: read %s@%d: got %d coils, want %d", tag.Name, tag.Address, len(bits), qty)
			}
			regs = []uint16{codec.CoilWord(bits[0])}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("poller: read %s@%d: %w", tag.Name, tag.Address, err)
	}
	if len(regs) != int(qty) {
		return nil, fmt.Errorf("poller: read %s@%d: got %d registers, want %d", tag.Name, tag.Address, len(regs), qty)
	}
	return regs, nil
}

// Invalidate closes and drops the session. cause is recorded in the status.
func (c *Conn) Invalidate(cause error) {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("session close")
		}
		c.client = nil
	}
	c.setState(status.StateDisconnected, cause)
}

// Close ends the session, if any.
func (c *Conn) Close() {
	c.Invalidate(nil)
}

// Status returns a copy of the current session snapshot.
func (c *Conn) Status() status.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *Conn) noteCycle(at time.Time) {
	c.mu.Lock()
	c.snap.LastCycle = at
	c.mu.Unlock()
}

func (c *Conn) noteRead(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.snap.ConsecutiveReadFailures++
		c.snap.LastError = err.Error()
		return
	}
	c.snap.ConsecutiveReadFailures = 0
}

func (c *Conn) setState(s status.State, cause error) {
	c.mu.Lock()
	c.snap.State = s
	if cause != nil {
		c.snap.LastError = cause.Error()
	}
	c.mu.Unlock()

	c.metrics.SetSessionState(c.device, s)
}
