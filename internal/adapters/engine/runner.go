// Package engine provides the runner that drives the orchestration loop:
// per-platform worker pools pulling due records and advancing them through
// the application lifecycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
	obserrors "github.com/applyforge/applyforge/internal/observability/errors"
	"github.com/applyforge/applyforge/internal/observability/metrics"
	"github.com/applyforge/applyforge/internal/observability/statsd"
	"github.com/applyforge/applyforge/internal/service"
)

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Scheduler *service.Scheduler                      // Required: record processing
	Adapters  map[model.Platform]core.PlatformAdapter // Required: used for session checks

	WorkersPerPlatform   int           // Optional: defaults to 2
	PollInterval         time.Duration // Optional: defaults to 5s
	BatchSize            int           // Optional: records claimed per poll, defaults to 10
	SessionCheckInterval time.Duration // Optional: defaults to 10m, negative disables
	RecoveryInterval     time.Duration // Optional: stale-submission sweep, defaults to 1m, negative disables
	Logger               *slog.Logger  // Optional: structured logger
	Metrics              statsd.Sink   // Optional: metrics sink
}

// Runner runs one bounded worker pool per platform. Workers poll for due
// records on an interval; a slow or failing platform only stalls its own
// pool. Shutdown is cooperative: workers finish the record they hold, and an
// in-flight submission is never abandoned midway.
type Runner struct {
	scheduler *service.Scheduler
	adapters  map[model.Platform]core.PlatformAdapter

	workers          int
	pollInterval     time.Duration
	batchSize        int
	sessionInterval  time.Duration
	recoveryInterval time.Duration
	logger           *slog.Logger
	metrics          statsd.Sink
}

// NewRunner creates a new engine runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	if len(opts.Adapters) == 0 {
		return nil, errors.New("at least one platform adapter is required")
	}

	workers := opts.WorkersPerPlatform
	if workers <= 0 {
		workers = 2
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 10
	}
	sessionInterval := opts.SessionCheckInterval
	if sessionInterval == 0 {
		sessionInterval = 10 * time.Minute
	}
	recoveryInterval := opts.RecoveryInterval
	if recoveryInterval == 0 {
		recoveryInterval = time.Minute
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "engine_runner")
	}

	return &Runner{
		scheduler:        opts.Scheduler,
		adapters:         opts.Adapters,
		workers:          workers,
		pollInterval:     interval,
		batchSize:        batch,
		sessionInterval:  sessionInterval,
		recoveryInterval: recoveryInterval,
		logger:           logger,
		metrics:          opts.Metrics,
	}, nil
}

// Run starts the worker pools and blocks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.logger != nil {
		r.logger.InfoContext(ctx, "engine starting",
			"platforms", len(r.adapters),
			"workers_per_platform", r.workers,
			"poll_interval", r.pollInterval,
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	for platform := range r.adapters {
		for i := 0; i < r.workers; i++ {
			g.Go(func() error {
				r.workerLoop(gctx, platform, i)
				return nil
			})
		}
		if r.sessionInterval > 0 {
			g.Go(func() error {
				r.sessionLoop(gctx, platform)
				return nil
			})
		}
	}
	if r.recoveryInterval > 0 {
		g.Go(func() error {
			r.recoveryLoop(gctx)
			return nil
		})
	}

	err := g.Wait()
	if r.logger != nil {
		r.logger.Info("engine stopped")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("engine run: %w", err)
	}
	return nil
}

// workerLoop polls one platform for due records until cancelled.
func (r *Runner) workerLoop(ctx context.Context, platform model.Platform, worker int) {
	logger := r.logger
	if logger != nil {
		logger = logger.With("platform", platform, "worker", worker)
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if logger != nil {
				logger.Debug("worker stopping")
			}
			return
		case <-ticker.C:
			start := time.Now()
			processed, err := r.scheduler.ProcessDue(ctx, platform, r.batchSize)
			r.emitPassMetrics(platform, processed, time.Since(start), err)

			if err != nil {
				if logger != nil && !errors.Is(err, context.Canceled) {
					logger.ErrorContext(ctx, "processing pass failed", "error", err)
				}
				continue
			}
			if processed > 0 && logger != nil {
				logger.DebugContext(ctx, "processing pass complete", "claimed", processed)
			}
		}
	}
}

// sessionLoop periodically verifies the portal session so an expired login
// surfaces in the logs before a submission trips over it.
func (r *Runner) sessionLoop(ctx context.Context, platform model.Platform) {
	adapter := r.adapters[platform]

	ticker := time.NewTicker(r.sessionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := adapter.CheckSession(ctx); err != nil {
				if r.metrics != nil {
					r.metrics.Count(metrics.MetricSessionCheckFailed, 1,
						map[string]string{"platform": string(platform)})
				}
				if r.logger != nil && !errors.Is(err, context.Canceled) {
					r.logger.WarnContext(ctx, "portal session check failed",
						"platform", platform, "error", err)
				}
			}
		}
	}
}

// recoveryLoop periodically sweeps records stranded mid-submission by a crash
// or hard kill into the review queue.
func (r *Runner) recoveryLoop(ctx context.Context) {
	ticker := time.NewTicker(r.recoveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			recovered, err := r.scheduler.RecoverStale(ctx, r.batchSize)
			if err != nil {
				if r.logger != nil && !errors.Is(err, context.Canceled) {
					r.logger.ErrorContext(ctx, "stale submission sweep failed", "error", err)
				}
				continue
			}
			if recovered > 0 && r.metrics != nil {
				r.metrics.Count(metrics.MetricRecordsRecovered, int64(recovered), nil)
			}
		}
	}
}

func (r *Runner) emitPassMetrics(platform model.Platform, processed int, elapsed time.Duration, err error) {
	if r.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if processed == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{
		"platform": string(platform),
		"result":   result,
	}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	r.metrics.Count(metrics.MetricProcessPass, 1, tags)
	if processed > 0 {
		r.metrics.Count(metrics.MetricRecordsClaimed, int64(processed), tags)
	}
	if elapsed > 0 {
		r.metrics.Timing(metrics.MetricPassDuration, elapsed, metrics.CloneTags(tags))
	}
}
