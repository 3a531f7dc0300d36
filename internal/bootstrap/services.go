package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/applyforge/applyforge/config"
	"github.com/applyforge/applyforge/internal/adapters/extract"
	"github.com/applyforge/applyforge/internal/adapters/llm"
	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/backoff"
	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/domain/record"
	"github.com/applyforge/applyforge/internal/observability/statsd"
	"github.com/applyforge/applyforge/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Applications *service.ApplicationService
	Review       *service.ReviewService
	Discovery    *service.DiscoveryService
	Scheduler    *service.Scheduler
	Governor     *service.Governor

	Adapters  map[model.Platform]core.PlatformAdapter
	Extractor *extract.TextExtractor
	Records   core.RecordRepository
	Postings  core.PostingRepository
	Resumes   core.ResumeStore

	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	RecordRepo  *data.RecordRepo
	PostingRepo *data.PostingRepo
	ResumeRepo  *data.ResumeRepo
	QuotaRepo   *data.RedisQuotaRepo
}

func buildRepositories(deps ServiceDeps) *serviceRepositories {
	return &serviceRepositories{
		RecordRepo: data.NewRecordRepo(deps.DB, data.RecordRepoConfig{
			Logger: deps.Logger,
		}),
		PostingRepo: data.NewPostingRepo(deps.DB, data.PostingRepoConfig{
			Logger: deps.Logger,
		}),
		ResumeRepo: data.NewResumeRepo(deps.DB, nil),
		QuotaRepo:  data.NewRedisQuotaRepo(deps.RedisClient),
	}
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.StatsdPrefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// BuildServices wires repositories, adapters, and the service layer.
func BuildServices(ctx context.Context, deps ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	repos := buildRepositories(deps)
	observability := buildObservability(deps.Logger, cfg.Observability)

	adapters, err := BuildPortalAdapters(cfg.Platforms, deps.Logger)
	if err != nil {
		return nil, err
	}

	languageModel, err := BuildLanguageModel(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	gateway, err := llm.NewGateway(llm.GatewayOptions{
		Model:       languageModel,
		CallTimeout: cfg.LLM.CallTimeout,
		Temperature: cfg.LLM.Temperature,
		Logger:      deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm gateway: %w", err)
	}

	governor, err := service.NewGovernor(service.GovernorOptions{
		Quotas: repos.QuotaRepo,
		Limits: cfg.Platforms.Limits(cfg.Governor),
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build governor: %w", err)
	}

	applications, err := service.NewApplicationService(service.ApplicationServiceOptions{
		Repo:     repos.RecordRepo,
		Notifier: record.NewNotifier(),
		Logger:   deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build application service: %w", err)
	}

	review, err := service.NewReviewService(service.ReviewServiceOptions{
		Applications: applications,
		Logger:       deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build review service: %w", err)
	}

	discovery, err := service.NewDiscoveryService(service.DiscoveryOptions{
		Applications: applications,
		Postings:     repos.PostingRepo,
		Governor:     governor,
		Adapters:     adapters,
		Logger:       deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build discovery service: %w", err)
	}

	retryPolicy, err := backoff.New(backoff.Options{
		Base: cfg.Engine.BackoffBase,
		Max:  cfg.Engine.BackoffMax,
	})
	if err != nil {
		return nil, fmt.Errorf("build backoff policy: %w", err)
	}

	scheduler, err := service.NewScheduler(service.SchedulerOptions{
		Applications:      applications,
		Records:           repos.RecordRepo,
		Postings:          repos.PostingRepo,
		Resumes:           repos.ResumeRepo,
		Analyzer:          gateway,
		Optimizer:         gateway,
		Governor:          governor,
		Adapters:          adapters,
		Backoff:           retryPolicy,
		MaxAttempts:       cfg.Engine.MaxAttempts,
		MinMatchScore:     cfg.Engine.MinMatchScore,
		OptimizationLevel: cfg.Engine.OptimizationLevel,
		SubmitTimeout:     cfg.Engine.SubmitTimeout,
		StaleSubmitAfter:  cfg.Engine.StaleSubmitAfter,
		Logger:            deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}

	return &ServiceContainer{
		Applications:  applications,
		Review:        review,
		Discovery:     discovery,
		Scheduler:     scheduler,
		Governor:      governor,
		Adapters:      adapters,
		Extractor:     extract.NewTextExtractor(),
		Records:       repos.RecordRepo,
		Postings:      repos.PostingRepo,
		Resumes:       repos.ResumeRepo,
		Observability: observability,
	}, nil
}
