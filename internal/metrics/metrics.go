// internal/metrics/metrics.go
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/modbus-datalogger/internal/status"
)

// Collector captures polling events. Hooks run inline with reads and
// writes, so implementations must be cheap.
type Collector interface {
	ObserveConnect(device string, err error)
	ObserveRead(device string, err error)
	ObserveRecord(device string, err error)
	ObserveCycle(device string, d time.Duration)
	SetSessionState(device string, s status.State)
	IncPanic(device string)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ObserveConnect(string, error)         {}
func (noopCollector) ObserveRead(string, error)            {}
func (noopCollector) ObserveRecord(string, error)          {}
func (noopCollector) ObserveCycle(string, time.Duration)   {}
func (noopCollector) SetSessionState(string, status.State) {}
func (noopCollector) IncPanic(string)                      {}

// PrometheusCollector exposes polling metrics via Prometheus.
type PrometheusCollector struct {
	connects *prometheus.CounterVec
	reads    *prometheus.CounterVec
	recorded *prometheus.CounterVec
	sinkErrs *prometheus.CounterVec
	state    *prometheus.GaugeVec
	cycle    *prometheus.HistogramVec
	panics   *prometheus.CounterVec
}

// NewPrometheusCollector registers the metrics with reg (default registerer
// when nil). Metrics already registered by an earlier collector are reused.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var (
		p   PrometheusCollector
		err error
	)

	if p.connects, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datalogger_connect_attempts_total",
		Help: "Connection attempts per device, by result.",
	}, []string{"device", "result"})); err != nil {
		return nil, err
	}
	if p.reads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datalogger_reads_total",
		Help: "Tag reads per device, by result.",
	}, []string{"device", "result"})); err != nil {
		return nil, err
	}
	if p.recorded, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datalogger_samples_recorded_total",
		Help: "Samples durably written per device.",
	}, []string{"device"})); err != nil {
		return nil, err
	}
	if p.sinkErrs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datalogger_sink_errors_total",
		Help: "Samples lost because storage rejected them.",
	}, []string{"device"})); err != nil {
		return nil, err
	}
	if p.state, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "datalogger_session_state",
		Help: "Session state per device (0 disconnected, 1 connecting, 2 connected).",
	}, []string{"device"})); err != nil {
		return nil, err
	}
	if p.cycle, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "datalogger_cycle_duration_seconds",
		Help:    "Wall time of one read cycle over all tags of a device.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"device"})); err != nil {
		return nil, err
	}
	if p.panics, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datalogger_device_panics_total",
		Help: "Device goroutines stopped by a panic.",
	}, []string{"device"})); err != nil {
		return nil, err
	}

	return &p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusCollector) ObserveConnect(device string, err error) {
	p.connects.WithLabelValues(device, result(err)).Inc()
}

func (p *PrometheusCollector) ObserveRead(device string, err error) {
	p.reads.WithLabelValues(device, result(err)).Inc()
}

func (p *PrometheusCollector) ObserveRecord(device string, err error) {
	if err != nil {
		p.sinkErrs.WithLabelValues(device).Inc()
		return
	}
	p.recorded.WithLabelValues(device).Inc()
}

func (p *PrometheusCollector) ObserveCycle(device string, d time.Duration) {
	p.cycle.WithLabelValues(device).Observe(d.Seconds())
}

func (p *PrometheusCollector) SetSessionState(device string, s status.State) {
	p.state.WithLabelValues(device).Set(float64(s))
}

func (p *PrometheusCollector) IncPanic(device string) {
	p.panics.WithLabelValues(device).Inc()
}

var _ Collector = (*PrometheusCollector)(nil)
