// internal/logging/logging.go
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grafana/loki-client-go/loki"
	"github.com/prometheus/common/model"
	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-datalogger/internal/config"
)

// Setup creates a zerolog logger writing to out according to cfg.
// The returned cleanup flushes any remote writer and must be called on exit.
func Setup(cfg config.LoggingConfig, out io.Writer) (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("logging: parse level: %w", err)
		}
		level = parsed
	}

	var local io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", config.LogFormatText:
		local = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case config.LogFormatJSON:
		local = out
	default:
		return zerolog.Logger{}, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	writers := []io.Writer{local}
	cleanup := func() {}

	if cfg.Loki.Enabled {
		lw, closer, err := newLokiWriter(cfg.Loki)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		writers = append(writers, lw)
		cleanup = closer
	}

	multi := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(multi).With().Timestamp().Logger().Level(level)
	return logger, cleanup, nil
}

func newLokiWriter(cfg config.LokiConfig) (io.Writer, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("logging: loki url is required")
	}
	lokiCfg, err := loki.NewDefaultConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: prepare loki config: %w", err)
	}
	client, err := loki.New(lokiCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: create loki client: %w", err)
	}

	return &lokiWriter{client: client, base: baseLabels(cfg.Labels)}, client.Stop, nil
}

func baseLabels(in map[string]string) model.LabelSet {
	labels := model.LabelSet{}
	for k, v := range in {
		labels[model.LabelName(k)] = model.LabelValue(v)
	}
	if _, ok := labels["app"]; !ok {
		labels["app"] = "modbus-datalogger"
	}
	return labels
}

// entryHandler is the part of *loki.Client the writer needs.
type entryHandler interface {
	Handle(ls model.LabelSet, t time.Time, s string) error
}

// lokiWriter ships JSON log lines to Loki, one stream per device and level.
type lokiWriter struct {
	client entryHandler
	base   model.LabelSet
}

func (l *lokiWriter) Write(p []byte) (int, error) {
	return l.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (l *lokiWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	entry := strings.TrimSpace(string(p))
	if entry == "" {
		return len(p), nil
	}
	err := l.client.Handle(l.streamLabels(level, entry), time.Now(), entry)
	return len(p), err
}

func (l *lokiWriter) streamLabels(level zerolog.Level, entry string) model.LabelSet {
	labels := l.base.Clone()
	if level != zerolog.NoLevel {
		labels["level"] = model.LabelValue(level.String())
	}

	var fields struct {
		Device string `json:"device"`
	}
	if json.Unmarshal([]byte(entry), &fields) == nil && fields.Device != "" {
		labels["device"] = model.LabelValue(fields.Device)
	}
	return labels
}
