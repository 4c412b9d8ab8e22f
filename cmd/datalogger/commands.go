// cmd/datalogger/commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tamzrod/modbus-datalogger/internal/config"
	"github.com/tamzrod/modbus-datalogger/internal/logging"
	"github.com/tamzrod/modbus-datalogger/internal/metrics"
	"github.com/tamzrod/modbus-datalogger/internal/sink"
	"github.com/tamzrod/modbus-datalogger/internal/supervisor"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll every configured device until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			list, _ := cmd.Flags().GetBool("list")

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			logger, closeLogs, err := logging.Setup(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLogs()

			if list {
				fmt.Fprintln(cmd.OutOrStdout(), formatDeviceList(cfg))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeRun(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringP("config", "c", "config.yaml", "path to the configuration file (.yaml or .toml)")
	cmd.Flags().Bool("list", false, "print the configured devices and tags before polling")
	return cmd
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-config",
		Short: "Write a sample configuration to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return writeSample(cmd.OutOrStdout(), config.Format(format))
		},
	}
	cmd.Flags().String("format", string(config.FormatYAML), "output format: yaml or toml")
	return cmd
}

func writeSample(w io.Writer, format config.Format) error {
	switch format {
	case config.FormatYAML:
		_, err := io.WriteString(w, config.Sample())
		return err
	case config.FormatTOML:
		out, err := config.SampleTOML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format %q (want yaml or toml)", format)
	}
}

// executeRun opens storage, starts one poller per device and blocks until
// ctx is cancelled and every poller has stopped.
func executeRun(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, err := sink.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	names := make([]string, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		names = append(names, d.Name)
	}
	if err := sink.Bootstrap(ctx, db, names); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	mc, err := metrics.NewPrometheusCollector(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	runners, err := supervisor.Build(cfg, sink.NewSQLSink(db), logger, mc)
	if err != nil {
		return err
	}
	if len(runners) == 0 {
		logger.Warn().Msg("no device can be polled; waiting for shutdown")
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, reg, logger); err != nil {
				logger.Error().Err(err).Str("addr", cfg.Metrics.Listen).Msg("metrics listener failed")
			}
		}()
	}

	logger.Info().
		Str("database", cfg.DatabasePath).
		Int("devices", len(runners)).
		Uint32("poll_period_s", cfg.PollPeriod).
		Msg("datalogger started")

	sup := supervisor.New(logger, mc)
	sup.Start(ctx, runners)
	sup.Wait()
	<-ctx.Done()

	logger.Info().Msg("datalogger stopped")
	return nil
}
