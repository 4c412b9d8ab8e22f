// internal/poller/types.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/modbus-datalogger/internal/codec"
)

// Client abstracts the Modbus session operations the poller needs.
// The poller depends on geometry only; decoding belongs to the codec.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
	Close() error
}

// Factory opens a new session. ONE attempt per call.
type Factory func() (Client, error)

// SleepFunc blocks for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Tag is one named value read from a device.
type Tag struct {
	Name        string
	Description string
	Address     uint16
	Kind        codec.Kind
}

// Device is the immutable runtime view of one Modbus TCP device.
type Device struct {
	Name     string
	Endpoint string
	UnitID   uint8
	Tags     []Tag
}

// CycleResult summarizes one pass over all tags of a device.
type CycleResult struct {
	Device string
	At     time.Time

	Read       int // successful tag reads
	Recorded   int // samples accepted by the sink
	Failed     int // tag reads that failed
	Reconnects int // reconnect attempts made after failed reads; none once ctx is done
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
