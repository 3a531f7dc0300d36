// Package model defines the core data types used throughout the applyforge
// orchestration engine.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is a lifecycle state of an ApplicationRecord.
type State string

const (
	// StateDiscovered indicates a posting was found and paired with a resume.
	StateDiscovered State = "discovered"
	// StateAnalyzed indicates requirement extraction completed for the posting.
	StateAnalyzed State = "analyzed"
	// StateOptimized indicates a tailored resume payload was produced.
	StateOptimized State = "optimized"
	// StatePendingReview indicates the record awaits a human decision.
	StatePendingReview State = "pending_review"
	// StateApproved indicates a human approved the record for submission.
	StateApproved State = "approved"
	// StateSubmitting indicates a submission call is in flight.
	StateSubmitting State = "submitting"
	// StateSubmitted is terminal: the platform accepted the application.
	StateSubmitted State = "submitted"
	// StateRejected is terminal: the platform rejected the application.
	StateRejected State = "rejected"
	// StateDeclined is terminal: a human (or the low-match gate) declined the pairing.
	StateDeclined State = "declined"
	// StateFailed is terminal: automation gave up after exhausting retries or
	// hitting a non-transient failure.
	StateFailed State = "failed"
)

// Valid returns true if the State is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateDiscovered, StateAnalyzed, StateOptimized, StatePendingReview,
		StateApproved, StateSubmitting, StateSubmitted, StateRejected,
		StateDeclined, StateFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further automated transition may leave s.
func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateRejected || s == StateDeclined || s == StateFailed
}

// Reason is a machine-readable cause attached to every transition.
type Reason string

const (
	// ReasonDiscovered records initial pairing of a resume with a posting.
	ReasonDiscovered Reason = "discovered"
	// ReasonAnalysisComplete records successful requirement extraction.
	ReasonAnalysisComplete Reason = "analysis_complete"
	// ReasonOptimizationComplete records a produced tailored resume.
	ReasonOptimizationComplete Reason = "optimization_complete"
	// ReasonAwaitingReview records entry into human review.
	ReasonAwaitingReview Reason = "awaiting_review"
	// ReasonApprovedByReviewer records a human approval.
	ReasonApprovedByReviewer Reason = "approved_by_reviewer"
	// ReasonDeclinedByReviewer records a human decline.
	ReasonDeclinedByReviewer Reason = "declined_by_reviewer"
	// ReasonLowMatchScore records an automatic decline below the score gate.
	ReasonLowMatchScore Reason = "low_match_score"
	// ReasonSubmissionStarted records the start of a submission attempt.
	ReasonSubmissionStarted Reason = "submission_started"
	// ReasonSubmissionAccepted records platform acceptance.
	ReasonSubmissionAccepted Reason = "submission_accepted"
	// ReasonPlatformRejected records platform rejection; not an engine error.
	ReasonPlatformRejected Reason = "platform_rejected"
	// ReasonCaptchaRequired escalates a CAPTCHA challenge to human review.
	ReasonCaptchaRequired Reason = "captcha_required"
	// ReasonSessionExpired escalates an expired portal session to human review.
	ReasonSessionExpired Reason = "session_expired"
	// ReasonRateLimited records a platform rate-limit response; retried with backoff.
	ReasonRateLimited Reason = "rate_limited"
	// ReasonRetryScheduled records an automatic re-approval after backoff.
	ReasonRetryScheduled Reason = "retry_scheduled"
	// ReasonAnalysisUnavailable records a transient analysis collaborator failure.
	ReasonAnalysisUnavailable Reason = "analysis_unavailable"
	// ReasonOptimizationUnavailable records a transient gateway failure.
	ReasonOptimizationUnavailable Reason = "optimization_unavailable"
	// ReasonNetworkTimeout records a transient network failure.
	ReasonNetworkTimeout Reason = "network_timeout"
	// ReasonMalformedPosting records a posting the engine cannot process; never retried.
	ReasonMalformedPosting Reason = "malformed_posting"
	// ReasonJobClosed records a permanently closed posting; never retried.
	ReasonJobClosed Reason = "job_closed"
	// ReasonRetriesExhausted records the retry cap being reached.
	ReasonRetriesExhausted Reason = "retries_exhausted"
	// ReasonSubmissionOutcomeUnknown records a submission interrupted before
	// its outcome was durable; a human must reconcile against the platform.
	ReasonSubmissionOutcomeUnknown Reason = "submission_outcome_unknown"
)

// HumanActionable reports whether the reason requires human intervention
// before automation may continue. These are never retried automatically.
func (r Reason) HumanActionable() bool {
	return r == ReasonCaptchaRequired || r == ReasonSessionExpired ||
		r == ReasonSubmissionOutcomeUnknown
}

// Transition is one append-only entry in a record's history.
// (From, To, CausalID) identifies a transition for idempotent re-delivery:
// re-applying the same triple is a no-op, not an error.
type Transition struct {
	Seq        int       `json:"seq"         db:"seq"`
	From       State     `json:"from"        db:"from_state"`
	To         State     `json:"to"          db:"to_state"`
	Reason     Reason    `json:"reason"      db:"reason"`
	CausalID   string    `json:"causal_id"   db:"causal_id"`
	Note       string    `json:"note,omitempty" db:"note"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}

// ApplicationRecord is the unit the state machine governs: exactly one exists
// per (resume identity, job identity) pair. It is created on first scheduling,
// mutated only through the state machine, and never deleted.
type ApplicationRecord struct {
	ID         string   `json:"id"          db:"id"`
	ResumeID   string   `json:"resume_id"   db:"resume_id"`
	JobID      string   `json:"job_id"      db:"job_id"`
	Platform   Platform `json:"platform"    db:"platform"`
	State      State    `json:"state"       db:"state"`
	// Version equals the length of the transition history and is the
	// optimistic concurrency token for appends.
	Version         int             `json:"version"                    db:"version"`
	MatchScore      *int            `json:"match_score,omitempty"      db:"match_score"`
	OptimizedResume json.RawMessage `json:"optimized_resume,omitempty" db:"optimized_resume"`
	AttemptCount    int             `json:"attempt_count"              db:"attempt_count"`
	PlatformRef     *string         `json:"platform_ref,omitempty"     db:"platform_ref"`
	Priority        int             `json:"priority"                   db:"priority"`
	DueAt           time.Time       `json:"due_at"                     db:"due_at"`
	LastReason      Reason          `json:"last_reason,omitempty"      db:"last_reason"`
	History         []Transition    `json:"history,omitempty"`
	CreatedAt       time.Time       `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"                 db:"updated_at"`
}

// recordNamespace scopes deterministic record identities.
var recordNamespace = uuid.MustParse("9fd1b8a4-22c5-4c6e-9d2e-ab5a81f3c0de")

// RecordIdentity derives the deterministic record id for a
// (resume identity, job identity) pair. Concurrent enqueues of the same pair
// compute the same id, which the unique index turns into a single row.
func RecordIdentity(resumeID, jobID string) string {
	return uuid.NewSHA1(recordNamespace, []byte(resumeID+"\x00"+jobID)).String()
}

// ErrEmptyHistory is returned when folding a record with no transitions.
var ErrEmptyHistory = errors.New("transition history is empty")

// FoldHistory replays a transition history from the initial state and returns
// the resulting state. The current state of any record must always be
// reproducible this way; a gap or mismatch means the history was corrupted.
func FoldHistory(history []Transition) (State, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}
	if history[0].From != StateDiscovered && history[0].To != StateDiscovered {
		return "", fmt.Errorf("history does not start at %s", StateDiscovered)
	}

	current := history[0].To
	for i := 1; i < len(history); i++ {
		t := history[i]
		if t.From != current {
			return "", fmt.Errorf("history gap at seq %d: have %s, transition expects %s", t.Seq, current, t.From)
		}
		current = t.To
	}
	return current, nil
}

// CreateRecordRequest carries the inputs for first-time scheduling of a pair.
type CreateRecordRequest struct {
	ResumeID string   `json:"resume_id"`
	JobID    string   `json:"job_id"`
	Platform Platform `json:"platform"`
	Priority int      `json:"priority,omitempty"`
	CausalID string   `json:"causal_id"`
}

// Validate validates the CreateRecordRequest fields.
func (r *CreateRecordRequest) Validate() error {
	if strings.TrimSpace(r.ResumeID) == "" {
		return errors.New("resume id is required")
	}
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job id is required")
	}
	if !r.Platform.Valid() {
		return errors.New("invalid platform")
	}
	if r.Priority < 0 || r.Priority > 100 {
		return errors.New("priority must be between 0 and 100")
	}
	if strings.TrimSpace(r.CausalID) == "" {
		return errors.New("causal id is required")
	}
	return nil
}

// RecordStats summarizes records per lifecycle state for the dashboard.
type RecordStats struct {
	Discovered    int `json:"discovered"`
	Analyzed      int `json:"analyzed"`
	Optimized     int `json:"optimized"`
	PendingReview int `json:"pending_review"`
	Approved      int `json:"approved"`
	Submitting    int `json:"submitting"`
	Submitted     int `json:"submitted"`
	Rejected      int `json:"rejected"`
	Declined      int `json:"declined"`
	Failed        int `json:"failed"`
	// SubmittedLast7Days and SubmittedLast30Days are rolling submission counts.
	SubmittedLast7Days  int `json:"submitted_last_7_days"`
	SubmittedLast30Days int `json:"submitted_last_30_days"`
}

// StatusChange is the engine-emitted event consumed by the dashboard layer.
type StatusChange struct {
	RecordID   string    `json:"record_id"`
	Platform   Platform  `json:"platform"`
	From       State     `json:"from"`
	To         State     `json:"to"`
	Reason     Reason    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
