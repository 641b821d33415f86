// Command climatehub runs the climate control coordinator: it logs into
// the vendor cloud, discovers every device on the account, keeps each
// device's state refreshed via polling and push notifications, and
// exposes the result to fan-out subscribers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"climatehub.dev/hub/internal/clock"
	"climatehub.dev/hub/internal/cloudapi"
	"climatehub.dev/hub/internal/config"
	"climatehub.dev/hub/internal/coordinator"
	"climatehub.dev/hub/internal/fanout"
	"climatehub.dev/hub/internal/logging"
	"climatehub.dev/hub/internal/metrics"
	"climatehub.dev/hub/internal/protocol"
	"climatehub.dev/hub/internal/pushlistener"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "climatehub:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	logger.Info("starting climate hub", "region", cfg.Region, "interactive", isInteractive())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	clk := clock.New()

	cloud := cloudapi.New(protocol.Region(cfg.Region), logger, m, clk)
	if err := cloud.Login(context.Background(), cfg.Email, cfg.Password); err != nil {
		return fmt.Errorf("climatehub: login: %w", err)
	}

	hub := fanout.New(logger, m)
	coord := coordinator.New(cloud, hub, clk, logger, m, cfg.DiscoveryInterval, cfg.MonitorInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.DisablePushListener {
		push := pushlistener.New(protocol.Region(cfg.Region), cloud.SessionToken(), cloud.SessionToken(), cloud.UserID(), nil, clk, logger, m)
		push.Subscribe(func(msg pushlistener.Message) {
			if _, err := coord.FindDevice(msg.EndpointID); err == nil {
				coord.TriggerUpdate(msg.EndpointID)
			}
		})
		go push.Run(ctx)
	}

	if err := coord.Start(ctx); err != nil {
		logger.Warn("coordinator start did not complete cleanly", "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	coord.Stop()
	return nil
}

// isInteractive reports whether stdin is an interactive terminal, mirroring
// the crash-supervisor's own service-vs-interactive detection: an
// interactive session skips systemd-oriented behaviors (here, just a log
// hint) since a human is already watching.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
