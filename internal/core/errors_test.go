package core_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/applyforge/applyforge/internal/core"
)

func TestDeniedErrorUnwrapsToPermissionDenied(t *testing.T) {
	err := &core.DeniedError{
		Platform:   "linkedin",
		Kind:       "submission",
		RetryAfter: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	require.ErrorIs(t, err, core.ErrPermissionDenied)
	require.Contains(t, err.Error(), "linkedin/submission")

	wrapped := fmt.Errorf("acquire: %w", err)
	var denied *core.DeniedError
	require.ErrorAs(t, wrapped, &denied)
	require.Equal(t, err.RetryAfter, denied.RetryAfter)
}

func TestSubmitErrorClassification(t *testing.T) {
	for kind, transient := range map[core.SubmitFailureKind]bool{
		core.SubmitRateLimited:     true,
		core.SubmitUnknown:         true,
		core.SubmitCaptchaRequired: false,
		core.SubmitSessionExpired:  false,
		core.SubmitRejected:        false,
	} {
		se := &core.SubmitError{Kind: kind, Platform: "dice"}
		require.Equal(t, transient, se.Transient(), "kind %s", kind)
	}

	require.True(t, (&core.SubmitError{Kind: core.SubmitCaptchaRequired}).HumanActionable())
	require.True(t, (&core.SubmitError{Kind: core.SubmitSessionExpired}).HumanActionable())
	require.False(t, (&core.SubmitError{Kind: core.SubmitRateLimited}).HumanActionable())
}

func TestSubmitErrorMessage(t *testing.T) {
	bare := &core.SubmitError{Kind: core.SubmitRejected, Platform: "indeed"}
	require.Equal(t, "submit failed on indeed: rejected", bare.Error())

	detailed := &core.SubmitError{Kind: core.SubmitRateLimited, Platform: "indeed", Message: "429 too many requests"}
	require.Contains(t, detailed.Error(), "429 too many requests")
}

func TestIsTransient(t *testing.T) {
	require.False(t, core.IsTransient(nil))
	require.True(t, core.IsTransient(core.ErrOptimizationUnavailable))
	require.True(t, core.IsTransient(core.ErrAnalysisUnavailable))
	require.True(t, core.IsTransient(fmt.Errorf("call: %w", core.ErrOptimizationUnavailable)))
	require.True(t, core.IsTransient(&core.SubmitError{Kind: core.SubmitRateLimited}))
	require.False(t, core.IsTransient(&core.SubmitError{Kind: core.SubmitRejected}))
	require.False(t, core.IsTransient(core.ErrInvalidTransition))
	require.False(t, core.IsTransient(errors.New("boom")))
}

func TestPermissionTokenValidAt(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := &core.PermissionToken{
		ID:        "tok-1",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Minute),
	}

	require.True(t, token.ValidAt(issued))
	require.True(t, token.ValidAt(issued.Add(59*time.Second)))
	require.False(t, token.ValidAt(issued.Add(time.Minute)))
	require.False(t, token.ValidAt(issued.Add(-time.Second)))

	var nilToken *core.PermissionToken
	require.False(t, nilToken.ValidAt(issued))
}
