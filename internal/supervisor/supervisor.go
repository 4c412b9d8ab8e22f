// internal/supervisor/supervisor.go
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-datalogger/internal/metrics"
)

// Runner is one independently polled device.
type Runner interface {
	Name() string
	Run(ctx context.Context)
}

// Supervisor runs one goroutine per device and confines a panic to the
// device that raised it.
type Supervisor struct {
	logger  zerolog.Logger
	metrics metrics.Collector
	wg      sync.WaitGroup
}

// New creates a supervisor. A nil collector disables metrics.
func New(logger zerolog.Logger, mc metrics.Collector) *Supervisor {
	if mc == nil {
		mc = metrics.Noop()
	}
	return &Supervisor{logger: logger, metrics: mc}
}

// Start launches every runner. It does not block.
func (s *Supervisor) Start(ctx context.Context, runners []Runner) {
	for _, r := range runners {
		s.wg.Add(1)
		go s.run(ctx, r)
	}
}

// Wait blocks until every started runner has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) run(ctx context.Context, r Runner) {
	defer s.wg.Done()
	defer func() {
		if v := recover(); v != nil {
			s.metrics.IncPanic(r.Name())
			s.logger.Error().
				Str("device", r.Name()).
				Str("panic", fmt.Sprint(v)).
				Bytes("stack", debug.Stack()).
				Msg("device stopped by panic")
		}
	}()

	r.Run(ctx)
}
