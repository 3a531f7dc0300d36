package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// This file contains the engine's port definitions (hexagonal architecture).
// Service implementations depend on these interfaces, not on the concrete
// data or adapter packages.

// AppendTransitionParams groups the inputs for an atomic history append.
// ExpectedVersion is the optimistic concurrency token: the append is rejected
// with ErrConflict when the stored version differs.
type AppendTransitionParams struct {
	RecordID        string
	ExpectedVersion int
	Transition      model.Transition

	// Optional field updates applied atomically with the append.
	MatchScore      *int
	OptimizedResume json.RawMessage
	PlatformRef     *string
	DueAt           *time.Time
	// AttemptDelta increments the submission attempt counter (0 leaves it).
	AttemptDelta int
}

// RescheduleParams pushes a record's due time without a state transition.
// Used for transient failures that retry in place: the state machine is not
// touched, only the dispatch time (and optionally the attempt counter) move.
type RescheduleParams struct {
	RecordID        string
	ExpectedVersion int
	DueAt           time.Time
	AttemptDelta    int
}

// ListDueParams bounds a due-work query for one platform.
type ListDueParams struct {
	Platform model.Platform
	Before   time.Time
	Limit    int
}

// RecordRepository defines the persistence boundary for application records.
// The transition history is the durable source of truth; the record row's
// state/score/attempt columns are derived views kept in the same transaction.
type RecordRepository interface {
	// Create inserts the record for a (resume, job) pair, writing the initial
	// Discovered transition. If the pair already exists the stored record is
	// returned unchanged; exactly one record per pair ever exists.
	Create(ctx context.Context, req *model.CreateRecordRequest) (*model.ApplicationRecord, error)
	GetByID(ctx context.Context, id string) (*model.ApplicationRecord, error)
	// GetWithHistory loads the record including its full transition history.
	GetWithHistory(ctx context.Context, id string) (*model.ApplicationRecord, error)
	// AppendTransition appends one history entry and updates the derived
	// columns atomically. Returns ErrConflict on a version mismatch. An
	// append that duplicates an existing (from, to, causal id) triple is a
	// no-op and returns the stored record.
	AppendTransition(ctx context.Context, params AppendTransitionParams) (*model.ApplicationRecord, error)
	// Reschedule pushes the record's due time without appending history.
	// Returns ErrConflict on a version mismatch.
	Reschedule(ctx context.Context, params RescheduleParams) (*model.ApplicationRecord, error)
	// ListDue returns records whose due time has passed and whose state
	// permits an automated action, claimed so concurrent workers never
	// double-dispatch one record.
	ListDue(ctx context.Context, params ListDueParams) ([]*model.ApplicationRecord, error)
	// RecoverStaleSubmitting parks records stuck in Submitting since before
	// the cutoff into PendingReview with a human-actionable reason, appending
	// the transition to each record's history. Returns how many were moved.
	RecoverStaleSubmitting(ctx context.Context, before time.Time, limit int) (int, error)
	ListByState(ctx context.Context, state model.State, limit int) ([]*model.ApplicationRecord, error)
	Stats(ctx context.Context) (*model.RecordStats, error)
}

// PostingRepository defines the persistence boundary for job postings.
type PostingRepository interface {
	// Upsert stores a fetched posting keyed by its identity; an existing
	// identity returns the stored posting (postings are immutable after
	// analysis).
	Upsert(ctx context.Context, posting *model.JobPosting) (*model.JobPosting, error)
	GetByID(ctx context.Context, id string) (*model.JobPosting, error)
	// SaveAnalysis attaches extracted requirements. Re-analysis of an already
	// analyzed posting writes a new version and retains the old for audit.
	SaveAnalysis(ctx context.Context, id string, reqs model.JobRequirements) (*model.JobPosting, error)
}

// ResumeStore is the persistence boundary for immutable resume profiles.
type ResumeStore interface {
	// Put stores the profile under its content identity; storing the same
	// content twice is a no-op returning the same identity.
	Put(ctx context.Context, profile *model.ResumeProfile) (string, error)
	Get(ctx context.Context, id string) (*model.ResumeProfile, error)
}

// QuotaStore is the atomic counter backing the Governor's daily submission
// caps. Implementations must make IncrWithCap a single atomic operation.
type QuotaStore interface {
	// IncrWithCap increments the counter at key unless the increment would
	// exceed limit. Returns the resulting count and whether the increment was
	// applied. The ttl bounds the counter's lifetime (until day rollover).
	IncrWithCap(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error)
	// Decr returns quota for an action that was granted but never completed.
	Decr(ctx context.Context, key string) (int64, error)
	// Count returns the current counter value (0 when absent).
	Count(ctx context.Context, key string) (int64, error)
}

// PermissionToken is a short-lived grant authorizing one governed action.
type PermissionToken struct {
	ID        string
	Platform  model.Platform
	Kind      model.PermissionKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the token is usable at the given instant.
func (t *PermissionToken) ValidAt(now time.Time) bool {
	return t != nil && !now.Before(t.IssuedAt) && now.Before(t.ExpiresAt)
}

// Governor grants or denies permission tokens for rate- and quota-limited
// actions. All daily submission counting goes through its atomic acquire.
type Governor interface {
	Acquire(ctx context.Context, platform model.Platform, kind model.PermissionKind) (*PermissionToken, error)
}

// OptimizeRequest carries the inputs for one gateway optimization call.
type OptimizeRequest struct {
	Resume  *model.ResumeProfile
	Posting *model.JobPosting
	Level   model.OptimizationLevel
}

// OptimizeGateway wraps the external LLM collaborator behind a stable
// request/response contract with a bounded timeout.
type OptimizeGateway interface {
	// Optimize returns the tailored resume or ErrOptimizationUnavailable on
	// timeout or malformed model output.
	Optimize(ctx context.Context, req OptimizeRequest) (*model.OptimizedResume, error)
}

// Analyzer extracts structured requirements from posting text.
type Analyzer interface {
	// Analyze returns the requirement set or ErrAnalysisUnavailable.
	Analyze(ctx context.Context, text string) (*model.JobRequirements, error)
}

// Extractor converts a source document into plain text.
type Extractor interface {
	// Extract fails with ErrUnsupportedFormat or ErrCorruptDocument.
	Extract(ctx context.Context, document []byte, format string) (string, error)
}

// SearchPager is a lazy, restartable iterator over search results. A failed
// page does not invalidate already-yielded postings: callers may retry Next
// and resume from the last good cursor.
type SearchPager interface {
	// Next returns the next page of postings. It returns (nil, nil) when the
	// result set is exhausted.
	Next(ctx context.Context) ([]*model.JobPosting, error)
}

// SubmitRequest carries everything an adapter needs to submit one application.
type SubmitRequest struct {
	Posting *model.JobPosting
	Resume  json.RawMessage
}

// SubmitResult is the portal's acknowledgment of an accepted submission.
type SubmitResult struct {
	PlatformRef string
	SubmittedAt time.Time
}

// PlatformAdapter is the fixed capability contract each job portal implements.
type PlatformAdapter interface {
	Platform() model.Platform
	// Search returns a pager over postings matching the criteria.
	Search(ctx context.Context, criteria model.SearchCriteria) (SearchPager, error)
	// FetchDetail fetches and normalizes a single posting.
	FetchDetail(ctx context.Context, externalID string) (*model.JobPosting, error)
	// Submit submits an application; failures are classified SubmitErrors.
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	// CheckSession reports whether the portal session is still valid.
	CheckSession(ctx context.Context) error
}
