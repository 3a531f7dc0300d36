package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// PlatformLimits holds the governed budget for one platform.
type PlatformLimits struct {
	// SearchPerMinute and SubmitPerMinute feed the short-term token buckets.
	SearchPerMinute float64
	SubmitPerMinute float64
	Burst           int
	// DailySubmissionCap bounds accepted submissions per calendar day (UTC).
	// The cap counts outcomes, not attempts.
	DailySubmissionCap int64
}

// GovernorOptions groups dependencies for Governor.
type GovernorOptions struct {
	Quotas       core.QuotaStore                   // Required: atomic daily counters
	Limits       map[model.Platform]PlatformLimits // Required: per-platform budgets
	TokenTTL     time.Duration                     // Optional: permission token lifetime
	Logger       *slog.Logger                      // Optional: structured logger
	TimeProvider data.TimeProvider                 // Optional: override time source
}

// Governor grants permission tokens for rate- and quota-limited platform
// actions. Short-term pacing uses in-process token buckets; the daily
// submission cap is enforced through the shared atomic quota store so
// multiple engine instances cannot jointly overshoot it.
type Governor struct {
	quotas       core.QuotaStore
	limits       map[model.Platform]PlatformLimits
	tokenTTL     time.Duration
	logger       *slog.Logger
	timeProvider data.TimeProvider

	mu      sync.Mutex
	buckets map[bucketKey]*rate.Limiter
}

type bucketKey struct {
	platform model.Platform
	kind     model.PermissionKind
}

// NewGovernor constructs a new Governor.
func NewGovernor(opts GovernorOptions) (*Governor, error) {
	if opts.Quotas == nil {
		return nil, errors.New("QuotaStore is required")
	}
	if len(opts.Limits) == 0 {
		return nil, errors.New("at least one platform limit is required")
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "governor")
	}

	return &Governor{
		quotas:       opts.Quotas,
		limits:       opts.Limits,
		tokenTTL:     ttl,
		logger:       logger,
		timeProvider: tp,
		buckets:      make(map[bucketKey]*rate.Limiter),
	}, nil
}

// MustNewGovernor constructs a new Governor and panics on error.
func MustNewGovernor(opts GovernorOptions) *Governor {
	g, err := NewGovernor(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create Governor: %v", err))
	}
	return g
}

// Acquire grants a permission token for one governed action or returns a
// DeniedError carrying the earliest instant worth retrying at. Quota is never
// spent on a denial: the bucket reservation is cancelled and the daily
// counter increments atomically only under its cap.
func (g *Governor) Acquire(ctx context.Context, platform model.Platform, kind model.PermissionKind) (*core.PermissionToken, error) {
	limits, ok := g.limits[platform]
	if !ok {
		return nil, fmt.Errorf("no limits configured for platform %s", platform)
	}
	now := g.timeProvider.Now()

	bucket := g.bucket(platform, kind, limits)
	reservation := bucket.ReserveN(now, 1)
	if !reservation.OK() {
		return nil, &core.DeniedError{
			Platform:   string(platform),
			Kind:       string(kind),
			RetryAfter: now.Add(time.Minute),
		}
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return nil, &core.DeniedError{
			Platform:   string(platform),
			Kind:       string(kind),
			RetryAfter: now.Add(delay),
		}
	}

	if kind == model.PermissionSubmission && limits.DailySubmissionCap > 0 {
		rollover := nextUTCMidnight(now)
		count, applied, err := g.quotas.IncrWithCap(ctx, dailyQuotaKey(platform, now), limits.DailySubmissionCap, rollover.Sub(now))
		if err != nil {
			reservation.CancelAt(now)
			return nil, fmt.Errorf("check daily submission quota: %w", err)
		}
		if !applied {
			reservation.CancelAt(now)
			if g.logger != nil {
				g.logger.InfoContext(ctx, "daily submission cap reached",
					"platform", platform, "count", count, "cap", limits.DailySubmissionCap)
			}
			return nil, &core.DeniedError{
				Platform:   string(platform),
				Kind:       string(kind),
				RetryAfter: rollover,
			}
		}
	}

	token := &core.PermissionToken{
		ID:        uuid.NewString(),
		Platform:  platform,
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.tokenTTL),
	}
	if g.logger != nil {
		g.logger.DebugContext(ctx, "permission granted",
			"platform", platform, "kind", kind, "token_id", token.ID)
	}
	return token, nil
}

// Release returns quota for a submission that never completed. A submission
// that failed before the platform accepted it must not count against the
// daily cap.
func (g *Governor) Release(ctx context.Context, token *core.PermissionToken) error {
	if token == nil || token.Kind != model.PermissionSubmission {
		return nil
	}
	limits, ok := g.limits[token.Platform]
	if !ok || limits.DailySubmissionCap <= 0 {
		return nil
	}

	// Refund against the issue day, not today: a submission granted just
	// before midnight is returned to the day whose cap it consumed.
	if _, err := g.quotas.Decr(ctx, dailyQuotaKey(token.Platform, token.IssuedAt)); err != nil {
		return fmt.Errorf("release submission quota: %w", err)
	}
	return nil
}

// Usage returns the submissions already counted against today's cap.
func (g *Governor) Usage(ctx context.Context, platform model.Platform) (int64, error) {
	return g.quotas.Count(ctx, dailyQuotaKey(platform, g.timeProvider.Now()))
}

func (g *Governor) bucket(platform model.Platform, kind model.PermissionKind, limits PlatformLimits) *rate.Limiter {
	key := bucketKey{platform: platform, kind: kind}

	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.buckets[key]; ok {
		return b
	}

	perMinute := limits.SearchPerMinute
	if kind == model.PermissionSubmission {
		perMinute = limits.SubmitPerMinute
	}
	burst := limits.Burst
	if burst <= 0 {
		burst = 1
	}
	b := rate.NewLimiter(rate.Limit(perMinute/60.0), burst)
	g.buckets[key] = b
	return b
}

func dailyQuotaKey(platform model.Platform, day time.Time) string {
	return fmt.Sprintf("quota:submission:%s:%s", platform, day.UTC().Format("2006-01-02"))
}

// nextUTCMidnight returns the start of the next UTC day, when daily quotas reset.
func nextUTCMidnight(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
