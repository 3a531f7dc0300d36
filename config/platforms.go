package config

import (
	"strings"

	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/service"
)

// PortalConfig contains one job portal adapter's configuration.
type PortalConfig struct {
	// Enabled controls whether the adapter is registered at startup.
	Enabled bool `env:"ENABLED" envDefault:"false"`

	// BaseURL is the portal API base URL.
	BaseURL string `env:"BASE_URL"`

	// AuthToken is the bearer token for the portal session.
	AuthToken string `env:"AUTH_TOKEN"`

	// PageSize is the number of postings requested per search page.
	PageSize int `env:"PAGE_SIZE" envDefault:"25"`

	// SearchPerMinute overrides the governor default when > 0.
	SearchPerMinute float64 `env:"SEARCH_PER_MINUTE" envDefault:"0"`

	// SubmitPerMinute overrides the governor default when > 0.
	SubmitPerMinute float64 `env:"SUBMIT_PER_MINUTE" envDefault:"0"`

	// Burst overrides the governor default when > 0.
	Burst int `env:"BURST" envDefault:"0"`

	// DailySubmissionCap overrides the governor default when > 0.
	DailySubmissionCap int64 `env:"DAILY_SUBMISSION_CAP" envDefault:"0"`
}

func (p *PortalConfig) sanitize() {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	p.AuthToken = strings.TrimSpace(p.AuthToken)
	if p.PageSize < 1 {
		p.PageSize = 25
	}
	if p.Enabled && p.BaseURL == "" {
		p.Enabled = false
	}
}

// limits resolves the portal's effective governor limits, falling back to the
// shared defaults where no override is set.
func (p *PortalConfig) limits(defaults GovernorConfig) service.PlatformLimits {
	l := service.PlatformLimits{
		SearchPerMinute:    defaults.SearchPerMinute,
		SubmitPerMinute:    defaults.SubmitPerMinute,
		Burst:              defaults.Burst,
		DailySubmissionCap: defaults.DailySubmissionCap,
	}
	if p.SearchPerMinute > 0 {
		l.SearchPerMinute = p.SearchPerMinute
	}
	if p.SubmitPerMinute > 0 {
		l.SubmitPerMinute = p.SubmitPerMinute
	}
	if p.Burst > 0 {
		l.Burst = p.Burst
	}
	if p.DailySubmissionCap > 0 {
		l.DailySubmissionCap = p.DailySubmissionCap
	}
	return l
}

// PlatformsConfig groups per-portal adapter configuration.
type PlatformsConfig struct {
	LinkedIn PortalConfig `envPrefix:"LINKEDIN_"`
	Indeed   PortalConfig `envPrefix:"INDEED_"`
	Dice     PortalConfig `envPrefix:"DICE_"`
}

// Sanitize applies guardrails to portal configuration values.
func (c *PlatformsConfig) Sanitize() {
	c.LinkedIn.sanitize()
	c.Indeed.sanitize()
	c.Dice.sanitize()
}

// Enabled returns the enabled portals keyed by platform.
func (c *PlatformsConfig) Enabled() map[model.Platform]PortalConfig {
	out := make(map[model.Platform]PortalConfig, 3)
	if c.LinkedIn.Enabled {
		out[model.PlatformLinkedIn] = c.LinkedIn
	}
	if c.Indeed.Enabled {
		out[model.PlatformIndeed] = c.Indeed
	}
	if c.Dice.Enabled {
		out[model.PlatformDice] = c.Dice
	}
	return out
}

// Limits resolves the effective governor limits for every enabled portal.
func (c *PlatformsConfig) Limits(defaults GovernorConfig) map[model.Platform]service.PlatformLimits {
	out := make(map[model.Platform]service.PlatformLimits, 3)
	for platform, portal := range c.Enabled() {
		out[platform] = portal.limits(defaults)
	}
	return out
}
