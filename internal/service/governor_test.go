package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/mocks"
	"github.com/applyforge/applyforge/internal/service"
)

func defaultLimits() map[model.Platform]service.PlatformLimits {
	return map[model.Platform]service.PlatformLimits{
		model.PlatformLinkedIn: {
			SearchPerMinute:    10,
			SubmitPerMinute:    2,
			Burst:              3,
			DailySubmissionCap: 50,
		},
	}
}

func newGovernor(t *testing.T, quotas core.QuotaStore, tp data.TimeProvider) *service.Governor {
	t.Helper()
	g, err := service.NewGovernor(service.GovernorOptions{
		Quotas:       quotas,
		Limits:       defaultLimits(),
		TimeProvider: tp,
	})
	require.NoError(t, err)
	return g
}

func TestNewGovernorValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)

	_, err := service.NewGovernor(service.GovernorOptions{Limits: defaultLimits()})
	require.Error(t, err)

	_, err = service.NewGovernor(service.GovernorOptions{Quotas: quotas})
	require.Error(t, err)
}

func TestAcquireSearchWithinBurst(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	// Searches never touch the quota store; burst of 3 grants immediately.
	for i := 0; i < 3; i++ {
		token, err := g.Acquire(context.Background(), model.PlatformLinkedIn, model.PermissionSearch)
		require.NoError(t, err, "grant %d", i+1)
		require.NotNil(t, token)
		require.Equal(t, model.PermissionSearch, token.Kind)
		require.True(t, token.ValidAt(fixedNow))
	}
}

func TestAcquireDeniesWhenBucketDrained(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	tp := data.NewFixedTimeProvider(fixedNow)
	g := newGovernor(t, quotas, tp)

	for i := 0; i < 3; i++ {
		_, err := g.Acquire(context.Background(), model.PlatformLinkedIn, model.PermissionSearch)
		require.NoError(t, err)
	}

	_, err := g.Acquire(context.Background(), model.PlatformLinkedIn, model.PermissionSearch)
	require.ErrorIs(t, err, core.ErrPermissionDenied)

	var denied *core.DeniedError
	require.ErrorAs(t, err, &denied)
	require.True(t, denied.RetryAfter.After(fixedNow))

	// Once the bucket refills the grant succeeds again.
	tp.AddTime(time.Minute)
	_, err = g.Acquire(context.Background(), model.PlatformLinkedIn, model.PermissionSearch)
	require.NoError(t, err)
}

func TestAcquireUnknownPlatform(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	_, err := g.Acquire(context.Background(), model.PlatformDice, model.PermissionSearch)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no limits configured")
}

func TestAcquireSubmissionCountsAgainstDailyCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	wantKey := fmt.Sprintf("quota:submission:linkedin:%s", fixedNow.UTC().Format("2006-01-02"))
	rollover := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	quotas.EXPECT().
		IncrWithCap(gomock.Any(), wantKey, int64(50), rollover.Sub(fixedNow)).
		Return(int64(1), true, nil)

	token, err := g.Acquire(context.Background(), model.PlatformLinkedIn, model.PermissionSubmission)
	require.NoError(t, err)
	require.Equal(t, model.PermissionSubmission, token.Kind)
}

func TestAcquireSubmissionDeniedAtCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	quotas.EXPECT().
		IncrWithCap(gomock.Any(), gomock.Any(), int64(50), gomock.Any()).
		Return(int64(50), false, nil)

	_, err := g.Acquire(context.Background(), model.PlatformLinkedIn, model.PermissionSubmission)
	require.ErrorIs(t, err, core.ErrPermissionDenied)

	// A cap denial advises retrying at the UTC day rollover.
	var denied *core.DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), denied.RetryAfter)
}

func TestReleaseRefundsIssueDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	// Issued just before midnight; the refund lands on the issue day even if
	// Release runs after rollover.
	issued := time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)
	token := &core.PermissionToken{
		ID:       "tok-1",
		Platform: model.PlatformLinkedIn,
		Kind:     model.PermissionSubmission,
		IssuedAt: issued,
	}

	quotas.EXPECT().Decr(gomock.Any(), "quota:submission:linkedin:2026-02-28").Return(int64(0), nil)
	require.NoError(t, g.Release(context.Background(), token))
}

func TestReleaseIgnoresSearchTokens(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	require.NoError(t, g.Release(context.Background(), nil))
	require.NoError(t, g.Release(context.Background(), &core.PermissionToken{
		Platform: model.PlatformLinkedIn,
		Kind:     model.PermissionSearch,
	}))
}

func TestUsage(t *testing.T) {
	ctrl := gomock.NewController(t)
	quotas := mocks.NewMockQuotaStore(ctrl)
	g := newGovernor(t, quotas, data.NewFixedTimeProvider(fixedNow))

	quotas.EXPECT().
		Count(gomock.Any(), "quota:submission:linkedin:2026-03-01").
		Return(int64(12), nil)

	count, err := g.Usage(context.Background(), model.PlatformLinkedIn)
	require.NoError(t, err)
	require.EqualValues(t, 12, count)
}
