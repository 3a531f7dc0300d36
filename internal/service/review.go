package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// ReviewServiceOptions groups dependencies for ReviewService.
type ReviewServiceOptions struct {
	Applications *ApplicationService // Required: state machine facade
	Logger       *slog.Logger        // Optional: structured logger
}

// ReviewService exposes the human decision surface: approving or declining
// records that wait in pending review. Declining is allowed from any
// non-terminal state, not just pending review.
type ReviewService struct {
	apps   *ApplicationService
	logger *slog.Logger
}

// NewReviewService constructs a new ReviewService.
func NewReviewService(opts ReviewServiceOptions) (*ReviewService, error) {
	if opts.Applications == nil {
		return nil, errors.New("ApplicationService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "review_service")
	}

	return &ReviewService{apps: opts.Applications, logger: logger}, nil
}

// Approve moves a pending-review record to approved, releasing it to the
// scheduler for submission.
func (s *ReviewService) Approve(ctx context.Context, recordID string, note string) (*model.ApplicationRecord, error) {
	rec, err := s.apps.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	updated, err := s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StateApproved,
		Reason:          model.ReasonApprovedByReviewer,
		CausalID:        "review:" + uuid.NewString(),
		Note:            note,
	})
	if err != nil {
		return nil, fmt.Errorf("approve record: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "record approved", "record_id", updated.ID)
	}
	return updated, nil
}

// Decline terminally declines a record. Legal from every non-terminal state;
// a decline that races a submission is re-checked by the scheduler right
// before the submit call goes out.
func (s *ReviewService) Decline(ctx context.Context, recordID string, note string) (*model.ApplicationRecord, error) {
	rec, err := s.apps.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	updated, err := s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StateDeclined,
		Reason:          model.ReasonDeclinedByReviewer,
		CausalID:        "review:" + uuid.NewString(),
		Note:            note,
	})
	if err != nil {
		return nil, fmt.Errorf("decline record: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "record declined", "record_id", updated.ID)
	}
	return updated, nil
}

// ListPending returns records waiting for a human decision, oldest first.
func (s *ReviewService) ListPending(ctx context.Context, limit int) ([]*model.ApplicationRecord, error) {
	return s.apps.ListByState(ctx, model.StatePendingReview, limit)
}
