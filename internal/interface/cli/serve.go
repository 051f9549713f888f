package cli

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/neilberkman/hireplan/internal/core/logging"
	"github.com/neilberkman/hireplan/internal/core/metrics"
	"github.com/neilberkman/hireplan/internal/interface/httpapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve sessions, conversation turns, artifacts and usage statistics over
HTTP, with Prometheus metrics on /metrics and a liveness probe on /health.

Logs are JSON on stderr. The address defaults to [server].addr in the config.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	// Servers log at info unless asked otherwise.
	if !cmd.Flags().Changed("log-level") {
		level = slog.LevelInfo
	}
	logger := logging.Setup(cmd.ErrOrStderr(), logging.FormatJSON, level)

	a, err := openAppWithLogger(logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	ag, err := a.newAgent(ctx, collector)
	if err != nil {
		return fmt.Errorf("failed to set up completion provider: %w", err)
	}

	refresher := metrics.NewRefresher(collector, a.analytics, a.cfg.Server.MetricsInterval, logger)
	go func() {
		if err := refresher.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("metrics refresher stopped", "error", err)
		}
	}()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	handler := httpapi.NewRouter(httpapi.Deps{
		Agent:     ag,
		Sessions:  a.sessions,
		Analytics: a.analytics,
		Generator: a.generator(),
		Gatherer:  reg,
		Logger:    logger,
	})
	logger.Info("starting hireplan API", "store", a.docs.Name(), "provider", a.cfg.LLM.Provider)
	return httpapi.Run(ctx, httpapi.NewServer(addr, handler), ln, logger)
}
