package config

import (
	"time"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// EngineConfig contains orchestration engine configuration.
type EngineConfig struct {
	// WorkersPerPlatform is the number of worker goroutines per platform pool.
	WorkersPerPlatform int `env:"ENGINE_WORKERS_PER_PLATFORM" envDefault:"2"`

	// PollInterval is the interval between due-record polls.
	PollInterval time.Duration `env:"ENGINE_POLL_INTERVAL" envDefault:"5s"`

	// BatchSize is the maximum number of records claimed per poll.
	BatchSize int `env:"ENGINE_BATCH_SIZE" envDefault:"10"`

	// MaxAttempts is the retry cap before a record is marked failed.
	MaxAttempts int `env:"ENGINE_MAX_ATTEMPTS" envDefault:"5"`

	// MinMatchScore declines applications scoring below this threshold on a
	// 0-100 scale (0 disables the gate).
	MinMatchScore int `env:"ENGINE_MIN_MATCH_SCORE" envDefault:"0"`

	// OptimizationLevel selects how aggressively resumes are tailored.
	// Valid values: conservative, balanced, aggressive.
	OptimizationLevel model.OptimizationLevel `env:"ENGINE_OPTIMIZATION_LEVEL" envDefault:"balanced"`

	// BackoffBase is the first retry delay; subsequent retries double up to BackoffMax.
	BackoffBase time.Duration `env:"ENGINE_BACKOFF_BASE" envDefault:"30s"`

	// BackoffMax caps the exponential retry delay.
	BackoffMax time.Duration `env:"ENGINE_BACKOFF_MAX" envDefault:"30m"`

	// SubmitTimeout bounds a single portal submission call.
	SubmitTimeout time.Duration `env:"ENGINE_SUBMIT_TIMEOUT" envDefault:"2m"`

	// SessionCheckInterval is how often portal sessions are probed (0 disables).
	SessionCheckInterval time.Duration `env:"ENGINE_SESSION_CHECK_INTERVAL" envDefault:"10m"`

	// StaleSubmitAfter is the age past which an in-flight submission is
	// presumed interrupted and escalated to review.
	StaleSubmitAfter time.Duration `env:"ENGINE_STALE_SUBMIT_AFTER" envDefault:"15m"`

	// RecoveryInterval is how often stranded submissions are swept.
	RecoveryInterval time.Duration `env:"ENGINE_RECOVERY_INTERVAL" envDefault:"1m"`
}

// Sanitize applies guardrails to engine configuration values.
func (e *EngineConfig) Sanitize() {
	if e.WorkersPerPlatform < 1 {
		e.WorkersPerPlatform = 1
	}
	if e.PollInterval < time.Second {
		e.PollInterval = time.Second
	}
	if e.BatchSize < 1 {
		e.BatchSize = 1
	}
	if e.MaxAttempts < 1 {
		e.MaxAttempts = 1
	}
	if e.MinMatchScore < 0 {
		e.MinMatchScore = 0
	}
	if e.MinMatchScore > 100 {
		e.MinMatchScore = 100
	}
	if !e.OptimizationLevel.Valid() {
		e.OptimizationLevel = model.OptimizationBalanced
	}
	if e.BackoffBase < time.Second {
		e.BackoffBase = time.Second
	}
	if e.BackoffMax < e.BackoffBase {
		e.BackoffMax = e.BackoffBase
	}
	if e.SubmitTimeout < 10*time.Second {
		e.SubmitTimeout = 10 * time.Second
	}
	// Sweeping younger than the submit deadline would race live submissions.
	if e.StaleSubmitAfter < e.SubmitTimeout {
		e.StaleSubmitAfter = e.SubmitTimeout
	}
	if e.RecoveryInterval > 0 && e.RecoveryInterval < 10*time.Second {
		e.RecoveryInterval = 10 * time.Second
	}
}

// GovernorConfig contains rate and quota governor configuration shared by
// every platform. Per-platform overrides live in PlatformsConfig.
type GovernorConfig struct {
	// SearchPerMinute is the default search token refill rate.
	SearchPerMinute float64 `env:"GOVERNOR_SEARCH_PER_MINUTE" envDefault:"10"`

	// SubmitPerMinute is the default submission token refill rate.
	SubmitPerMinute float64 `env:"GOVERNOR_SUBMIT_PER_MINUTE" envDefault:"2"`

	// Burst is the default token bucket depth.
	Burst int `env:"GOVERNOR_BURST" envDefault:"3"`

	// DailySubmissionCap bounds accepted submissions per platform per UTC day.
	DailySubmissionCap int64 `env:"GOVERNOR_DAILY_SUBMISSION_CAP" envDefault:"50"`
}

// Sanitize applies guardrails to governor configuration values.
func (g *GovernorConfig) Sanitize() {
	if g.SearchPerMinute <= 0 {
		g.SearchPerMinute = 1
	}
	if g.SubmitPerMinute <= 0 {
		g.SubmitPerMinute = 1
	}
	if g.Burst < 1 {
		g.Burst = 1
	}
	if g.DailySubmissionCap < 0 {
		g.DailySubmissionCap = 0
	}
}

// LLMConfig contains resume optimization gateway configuration.
type LLMConfig struct {
	// Provider selects the backing model provider. Only "openai" is wired.
	Provider string `env:"LLM_PROVIDER" envDefault:"openai"`

	// Model is the model identifier passed to the provider.
	Model string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	// APIKey authenticates with the provider. Falls back to the provider's
	// own environment variable (e.g. OPENAI_API_KEY) when empty.
	APIKey string `env:"LLM_API_KEY" envDefault:""`

	// BaseURL overrides the provider endpoint (for proxies and self-hosted gateways).
	BaseURL string `env:"LLM_BASE_URL" envDefault:""`

	// CallTimeout bounds a single model call.
	CallTimeout time.Duration `env:"LLM_CALL_TIMEOUT" envDefault:"60s"`

	// Temperature is the sampling temperature for optimization calls.
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.2"`
}

// Sanitize applies guardrails to LLM configuration values.
func (l *LLMConfig) Sanitize() {
	if l.CallTimeout < 5*time.Second {
		l.CallTimeout = 5 * time.Second
	}
	if l.Temperature < 0 {
		l.Temperature = 0
	}
	if l.Temperature > 2 {
		l.Temperature = 2
	}
}
