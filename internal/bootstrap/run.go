package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/applyforge/applyforge/config"
	"github.com/applyforge/applyforge/internal/adapters/engine"
	"github.com/applyforge/applyforge/internal/observability/statsd"
)

// ServiceOrchestrationConfig groups dependencies for running the enabled services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts every enabled service and blocks until a
// termination signal arrives, then shuts everything down gracefully.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Config.IsHTTPServerEnabled() {
		server := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		g.Go(func() error {
			<-gctx.Done()
			// Shutdown gets a fresh context; gctx is already cancelled.
			return ShutdownHTTPServer(context.Background(), server, cfg.Config.HTTP.ShutdownTimeout, logger)
		})
	}

	if cfg.Config.IsEngineEnabled() {
		var sink statsd.Sink
		if cfg.Services.Observability.MetricsSink != nil {
			sink = cfg.Services.Observability.MetricsSink
		}

		runner, err := engine.NewRunner(engine.RunnerOptions{
			Scheduler:            cfg.Services.Scheduler,
			Adapters:             cfg.Services.Adapters,
			WorkersPerPlatform:   cfg.Config.Engine.WorkersPerPlatform,
			PollInterval:         cfg.Config.Engine.PollInterval,
			BatchSize:            cfg.Config.Engine.BatchSize,
			SessionCheckInterval: cfg.Config.Engine.SessionCheckInterval,
			RecoveryInterval:     cfg.Config.Engine.RecoveryInterval,
			Logger:               logger,
			Metrics:              sink,
		})
		if err != nil {
			stop()
			return fmt.Errorf("build engine runner: %w", err)
		}

		g.Go(func() error {
			return runner.Run(gctx)
		})
	}

	logger.InfoContext(ctx, "services running", "services", GetEnabledServices(cfg.Config))

	err := g.Wait()

	if sink := cfg.Services.Observability.MetricsSink; sink != nil {
		if cerr := sink.Close(); cerr != nil {
			logger.Error("close metrics sink failed", "error", cerr)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
