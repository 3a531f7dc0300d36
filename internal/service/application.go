package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/lifecycle"
	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/domain/record"
)

// ApplicationServiceOptions groups dependencies for ApplicationService.
type ApplicationServiceOptions struct {
	Repo         core.RecordRepository // Required: record repository
	Notifier     record.Notifier       // Optional: status-change fan-out
	Logger       *slog.Logger          // Optional: structured logger
	TimeProvider data.TimeProvider     // Optional: override time source
}

// ApplicationService owns every mutation of an application record. All writes
// go through the transition rules: an illegal edge is rejected, a concurrent
// writer surfaces as a version conflict, and a re-delivered transition is a
// no-op.
type ApplicationService struct {
	repo         core.RecordRepository
	notifier     record.Notifier
	logger       *slog.Logger
	timeProvider data.TimeProvider
}

// NewApplicationService constructs a new ApplicationService.
func NewApplicationService(opts ApplicationServiceOptions) (*ApplicationService, error) {
	if opts.Repo == nil {
		return nil, errors.New("RecordRepository is required")
	}

	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "application_service")
	}

	return &ApplicationService{
		repo:         opts.Repo,
		notifier:     opts.Notifier,
		logger:       logger,
		timeProvider: tp,
	}, nil
}

// MustNewApplicationService constructs a new ApplicationService and panics on error.
func MustNewApplicationService(opts ApplicationServiceOptions) *ApplicationService {
	svc, err := NewApplicationService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ApplicationService: %v", err))
	}
	return svc
}

// Enqueue schedules a (resume, job) pair for processing. Enqueueing a pair
// that already has a record returns the existing record unchanged, whatever
// state it is in.
func (s *ApplicationService) Enqueue(ctx context.Context, req *model.CreateRecordRequest) (*model.ApplicationRecord, error) {
	rec, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("enqueue application: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "application enqueued",
			"record_id", rec.ID,
			"platform", rec.Platform,
			"state", rec.State,
		)
	}
	return rec, nil
}

// TransitionRequest carries one requested state transition plus the field
// updates that land atomically with it.
type TransitionRequest struct {
	RecordID        string
	ExpectedVersion int
	To              model.State
	Reason          model.Reason
	CausalID        string
	Note            string

	MatchScore      *int
	OptimizedResume json.RawMessage
	PlatformRef     *string
	DueAt           *time.Time
	AttemptDelta    int
}

// Transition applies one state transition. The edge must be legal from the
// record's current state (core.ErrInvalidTransition otherwise) and the
// caller's ExpectedVersion must still match (core.ErrConflict otherwise).
// Re-applying an already recorded (from, to, causal id) is a no-op.
func (s *ApplicationService) Transition(ctx context.Context, req TransitionRequest) (*model.ApplicationRecord, error) {
	current, err := s.repo.GetByID(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("load record for transition: %w", err)
	}

	if !lifecycle.CanTransition(current.State, req.To) {
		return nil, fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, current.State, req.To)
	}

	updated, err := s.repo.AppendTransition(ctx, core.AppendTransitionParams{
		RecordID:        req.RecordID,
		ExpectedVersion: req.ExpectedVersion,
		Transition: model.Transition{
			From:       current.State,
			To:         req.To,
			Reason:     req.Reason,
			CausalID:   req.CausalID,
			Note:       req.Note,
			OccurredAt: s.timeProvider.Now(),
		},
		MatchScore:      req.MatchScore,
		OptimizedResume: req.OptimizedResume,
		PlatformRef:     req.PlatformRef,
		DueAt:           req.DueAt,
		AttemptDelta:    req.AttemptDelta,
	})
	if err != nil {
		return nil, err
	}

	// A no-op re-delivery leaves the state unchanged; only a real transition
	// is announced.
	if updated.State == req.To && updated.Version == req.ExpectedVersion+1 {
		s.publish(current.State, updated, req.Reason)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "application transitioned",
			"record_id", updated.ID,
			"from", current.State,
			"to", updated.State,
			"reason", req.Reason,
			"version", updated.Version,
		)
	}
	return updated, nil
}

func (s *ApplicationService) publish(from model.State, rec *model.ApplicationRecord, reason model.Reason) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(model.StatusChange{
		RecordID:   rec.ID,
		Platform:   rec.Platform,
		From:       from,
		To:         rec.State,
		Reason:     reason,
		OccurredAt: rec.UpdatedAt,
	})
}

// Get returns the record without history.
func (s *ApplicationService) Get(ctx context.Context, id string) (*model.ApplicationRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return rec, nil
}

// GetWithHistory returns the record with its full transition history and
// verifies the history still replays to the stored state.
func (s *ApplicationService) GetWithHistory(ctx context.Context, id string) (*model.ApplicationRecord, error) {
	rec, err := s.repo.GetWithHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application with history: %w", err)
	}

	folded, err := model.FoldHistory(rec.History)
	if err != nil {
		return nil, fmt.Errorf("replay history for %s: %w", id, err)
	}
	if folded != rec.State {
		return nil, fmt.Errorf("history for %s folds to %s but record is %s", id, folded, rec.State)
	}
	return rec, nil
}

// ListByState returns records in the given state, oldest first.
func (s *ApplicationService) ListByState(ctx context.Context, state model.State, limit int) ([]*model.ApplicationRecord, error) {
	return s.repo.ListByState(ctx, state, limit)
}

// Stats returns the per-state record counts for the dashboard.
func (s *ApplicationService) Stats(ctx context.Context) (*model.RecordStats, error) {
	return s.repo.Stats(ctx)
}

// Subscribe registers a dashboard subscriber for status-change events.
func (s *ApplicationService) Subscribe(buffer int) (func(), <-chan model.StatusChange) {
	if s.notifier == nil {
		ch := make(chan model.StatusChange)
		close(ch)
		return func() {}, ch
	}
	return s.notifier.Subscribe(buffer)
}
