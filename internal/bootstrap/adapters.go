package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/applyforge/applyforge/config"
	"github.com/applyforge/applyforge/internal/adapters/platform"
	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// BuildPortalAdapters constructs one portal adapter per enabled platform and
// returns them keyed by platform.
func BuildPortalAdapters(cfg config.PlatformsConfig, logger *slog.Logger) (map[model.Platform]core.PlatformAdapter, error) {
	adapters := make([]core.PlatformAdapter, 0, 3)

	for pf, portal := range cfg.Enabled() {
		switch pf {
		case model.PlatformLinkedIn:
			adapters = append(adapters, platform.NewLinkedInAdapter(platform.LinkedInOptions{
				BaseURL:   portal.BaseURL,
				AuthToken: portal.AuthToken,
				PageSize:  portal.PageSize,
				Logger:    logger,
			}))
		case model.PlatformIndeed:
			adapters = append(adapters, platform.NewIndeedAdapter(platform.IndeedOptions{
				BaseURL:   portal.BaseURL,
				AuthToken: portal.AuthToken,
				PageSize:  portal.PageSize,
				Logger:    logger,
			}))
		case model.PlatformDice:
			adapters = append(adapters, platform.NewDiceAdapter(platform.DiceOptions{
				BaseURL:   portal.BaseURL,
				AuthToken: portal.AuthToken,
				PageSize:  portal.PageSize,
				Logger:    logger,
			}))
		}
	}

	if len(adapters) == 0 {
		return nil, errors.New("no portal adapters enabled; set at least one of LINKEDIN_ENABLED, INDEED_ENABLED, DICE_ENABLED")
	}

	registry, err := platform.NewRegistry(adapters...)
	if err != nil {
		return nil, fmt.Errorf("build adapter registry: %w", err)
	}
	return registry.All(), nil
}

// BuildLanguageModel constructs the langchaingo model backing the resume
// optimization gateway.
//
//nolint:ireturn // llms.Model is the seam the gateway consumes.
func BuildLanguageModel(ctx context.Context, cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init openai model: %w", err)
		}
		return model, nil
	case "googleai":
		opts := []googleai.Option{googleai.WithDefaultModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, googleai.WithAPIKey(cfg.APIKey))
		}
		model, err := googleai.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("init googleai model: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q (valid options: openai, googleai)", cfg.Provider)
	}
}
