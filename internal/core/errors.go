package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Engine error taxonomy. Only the transient class is retried automatically;
// everything else surfaces a concrete reason code on the record.
var (
	// ErrInvalidTransition indicates the source state does not permit the
	// requested target. A contract error: never retried.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPermissionDenied indicates the Governor refused a permission token.
	// Expected; retry after the advised delay.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict indicates the record was concurrently mutated since it was
	// loaded. Expected under concurrency; reload and retry.
	ErrConflict = errors.New("record version conflict")

	// ErrOptimizationUnavailable indicates the optimization gateway timed out
	// or returned malformed output. Transient; bounded retry.
	ErrOptimizationUnavailable = errors.New("optimization unavailable")

	// ErrAnalysisUnavailable indicates the analysis collaborator failed.
	// Transient; bounded retry.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")

	// ErrUnsupportedFormat indicates the document extractor cannot read the format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptDocument indicates the document bytes could not be parsed.
	ErrCorruptDocument = errors.New("corrupt document")
)

// DeniedError carries the retry hint for a refused permission request.
// It wraps ErrPermissionDenied so callers can match with errors.Is.
type DeniedError struct {
	Platform   string
	Kind       string
	RetryAfter time.Time
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s/%s until %s",
		e.Platform, e.Kind, e.RetryAfter.Format(time.RFC3339))
}

// Unwrap lets errors.Is(err, ErrPermissionDenied) match.
func (e *DeniedError) Unwrap() error { return ErrPermissionDenied }

// SubmitFailureKind classifies a failed submission attempt.
type SubmitFailureKind string

const (
	// SubmitCaptchaRequired means the portal raised a CAPTCHA challenge.
	// Terminal to automation: escalated to human review, never auto-retried.
	SubmitCaptchaRequired SubmitFailureKind = "captcha_required"
	// SubmitSessionExpired means the portal session is no longer valid.
	// Terminal to automation: escalated to human review, never auto-retried.
	SubmitSessionExpired SubmitFailureKind = "session_expired"
	// SubmitRateLimited means the portal throttled the request. Transient.
	SubmitRateLimited SubmitFailureKind = "rate_limited"
	// SubmitRejected means the portal rejected the application outright.
	// Terminal; recorded as-is, not an engine error.
	SubmitRejected SubmitFailureKind = "rejected"
	// SubmitUnknown covers unclassified failures. Treated as transient.
	SubmitUnknown SubmitFailureKind = "unknown"
)

// SubmitError is the classified failure returned by a platform adapter submit.
type SubmitError struct {
	Kind     SubmitFailureKind
	Platform string
	Message  string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("submit failed on %s: %s", e.Platform, e.Kind)
	}
	return fmt.Sprintf("submit failed on %s: %s: %s", e.Platform, e.Kind, e.Message)
}

// Transient reports whether the failure is expected to resolve on retry.
func (e *SubmitError) Transient() bool {
	return e.Kind == SubmitRateLimited || e.Kind == SubmitUnknown
}

// HumanActionable reports whether the failure requires human intervention.
func (e *SubmitError) HumanActionable() bool {
	return e.Kind == SubmitCaptchaRequired || e.Kind == SubmitSessionExpired
}

// IsTransient reports whether an error belongs to the retryable class:
// network timeouts, collaborator unavailability, and transient submit failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOptimizationUnavailable) || errors.Is(err, ErrAnalysisUnavailable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
