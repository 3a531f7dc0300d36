package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/backoff"
	"github.com/applyforge/applyforge/internal/domain/lifecycle"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// SchedulerOptions groups dependencies for Scheduler.
type SchedulerOptions struct {
	Applications *ApplicationService                     // Required: state machine facade
	Records      core.RecordRepository                   // Required: due-work claiming
	Postings     core.PostingRepository                  // Required: posting persistence
	Resumes      core.ResumeStore                        // Required: resume profiles
	Analyzer     core.Analyzer                           // Required: requirement extraction
	Optimizer    core.OptimizeGateway                    // Required: resume tailoring
	Governor     core.Governor                           // Required: rate and quota grants
	Adapters     map[model.Platform]core.PlatformAdapter // Required: portal adapters
	Backoff      *backoff.Policy                         // Required: transient retry delays

	MaxAttempts       int                     // Optional: retry cap, defaults to 5
	MinMatchScore     int                     // Optional: auto-decline gate, 0 disables
	OptimizationLevel model.OptimizationLevel // Optional: defaults to balanced
	SubmitTimeout     time.Duration           // Optional: per-submission deadline
	StaleSubmitAfter  time.Duration           // Optional: age before an in-flight submission is presumed interrupted
	Logger            *slog.Logger            // Optional: structured logger
	TimeProvider      data.TimeProvider       // Optional: override time source
}

// Scheduler drives records through their lifecycle. Each due record resolves
// to exactly one automated action; failures are classified into transient
// (retried in place with backoff), human-actionable (parked in pending
// review), and permanent (terminal state).
type Scheduler struct {
	apps      *ApplicationService
	records   core.RecordRepository
	postings  core.PostingRepository
	resumes   core.ResumeStore
	analyzer  core.Analyzer
	optimizer core.OptimizeGateway
	governor  core.Governor
	adapters  map[model.Platform]core.PlatformAdapter
	backoff   *backoff.Policy

	maxAttempts      int
	minMatchScore    int
	level            model.OptimizationLevel
	submitTimeout    time.Duration
	staleSubmitAfter time.Duration
	logger           *slog.Logger
	timeProvider     data.TimeProvider
}

// NewScheduler constructs a new Scheduler.
func NewScheduler(opts SchedulerOptions) (*Scheduler, error) {
	switch {
	case opts.Applications == nil:
		return nil, errors.New("ApplicationService is required")
	case opts.Records == nil:
		return nil, errors.New("RecordRepository is required")
	case opts.Postings == nil:
		return nil, errors.New("PostingRepository is required")
	case opts.Resumes == nil:
		return nil, errors.New("ResumeStore is required")
	case opts.Analyzer == nil:
		return nil, errors.New("Analyzer is required")
	case opts.Optimizer == nil:
		return nil, errors.New("OptimizeGateway is required")
	case opts.Governor == nil:
		return nil, errors.New("Governor is required")
	case len(opts.Adapters) == 0:
		return nil, errors.New("at least one PlatformAdapter is required")
	case opts.Backoff == nil:
		return nil, errors.New("backoff Policy is required")
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	level := opts.OptimizationLevel
	if !level.Valid() {
		level = model.OptimizationBalanced
	}
	submitTimeout := opts.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 2 * time.Minute
	}
	staleAfter := opts.StaleSubmitAfter
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	// A submission older than its own deadline has certainly ended; sweeping
	// younger than that would race live submit calls.
	if staleAfter < submitTimeout {
		staleAfter = submitTimeout
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "scheduler")
	}

	return &Scheduler{
		apps:          opts.Applications,
		records:       opts.Records,
		postings:      opts.Postings,
		resumes:       opts.Resumes,
		analyzer:      opts.Analyzer,
		optimizer:     opts.Optimizer,
		governor:      opts.Governor,
		adapters:      opts.Adapters,
		backoff:       opts.Backoff,
		maxAttempts:      maxAttempts,
		minMatchScore:    opts.MinMatchScore,
		level:            level,
		submitTimeout:    submitTimeout,
		staleSubmitAfter: staleAfter,
		logger:           logger,
		timeProvider:     tp,
	}, nil
}

// MustNewScheduler constructs a new Scheduler and panics on error.
func MustNewScheduler(opts SchedulerOptions) *Scheduler {
	s, err := NewScheduler(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create Scheduler: %v", err))
	}
	return s
}

// ProcessDue claims and processes up to limit due records for one platform.
// Returns the number of records claimed. Processing errors are absorbed per
// record: one bad record never stalls the batch.
func (s *Scheduler) ProcessDue(ctx context.Context, platform model.Platform, limit int) (int, error) {
	due, err := s.records.ListDue(ctx, core.ListDueParams{
		Platform: platform,
		Before:   s.timeProvider.Now(),
		Limit:    limit,
	})
	if err != nil {
		return 0, fmt.Errorf("list due records: %w", err)
	}

	for _, rec := range due {
		if err := s.ProcessRecord(ctx, rec); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "record processing failed",
					"record_id", rec.ID, "state", rec.State, "error", err)
			}
		}
		if ctx.Err() != nil {
			break
		}
	}
	return len(due), nil
}

// RecoverStale parks records stuck in submitting past the stale age into
// pending review for a human to reconcile against the platform. A crash or
// hard kill mid-submission leaves the outcome unknown; such records are not
// claimable and would otherwise stay invisible forever.
func (s *Scheduler) RecoverStale(ctx context.Context, limit int) (int, error) {
	cutoff := s.timeProvider.Now().Add(-s.staleSubmitAfter)
	recovered, err := s.records.RecoverStaleSubmitting(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("recover stale submissions: %w", err)
	}
	if recovered > 0 && s.logger != nil {
		s.logger.WarnContext(ctx, "stranded submissions escalated to review",
			"count", recovered, "older_than", s.staleSubmitAfter)
	}
	return recovered, nil
}

// ProcessRecord advances one record by its single legal next action.
func (s *Scheduler) ProcessRecord(ctx context.Context, rec *model.ApplicationRecord) error {
	// Rate-limited or timed-out submissions parked in pending review are
	// re-approved automatically once their backoff elapsed, while the
	// attempt budget lasts.
	if lifecycle.AutoRetryable(rec.State, rec.LastReason) {
		return s.reapprove(ctx, rec)
	}

	switch lifecycle.NextAction(rec.State) {
	case lifecycle.ActionAnalyze:
		return s.analyze(ctx, rec)
	case lifecycle.ActionOptimize:
		return s.optimize(ctx, rec)
	case lifecycle.ActionReview:
		return s.routeToReview(ctx, rec)
	case lifecycle.ActionSubmit:
		return s.submit(ctx, rec)
	case lifecycle.ActionNone:
		return nil
	}
	return nil
}

func (s *Scheduler) reapprove(ctx context.Context, rec *model.ApplicationRecord) error {
	if rec.AttemptCount >= s.maxAttempts {
		_, err := s.apps.Transition(ctx, TransitionRequest{
			RecordID:        rec.ID,
			ExpectedVersion: rec.Version,
			To:              model.StateFailed,
			Reason:          model.ReasonRetriesExhausted,
			CausalID:        fmt.Sprintf("retry-cap:%s:%d", rec.ID, rec.AttemptCount),
		})
		return err
	}

	_, err := s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StateApproved,
		Reason:          model.ReasonRetryScheduled,
		CausalID:        fmt.Sprintf("retry:%s:%d", rec.ID, rec.AttemptCount),
	})
	return err
}

func (s *Scheduler) analyze(ctx context.Context, rec *model.ApplicationRecord) error {
	posting, err := s.postings.GetByID(ctx, rec.JobID)
	if err != nil {
		if errors.Is(err, data.ErrPostingNotFound) {
			_, terr := s.apps.Transition(ctx, TransitionRequest{
				RecordID:        rec.ID,
				ExpectedVersion: rec.Version,
				To:              model.StateFailed,
				Reason:          model.ReasonMalformedPosting,
				CausalID:        "analyze:" + rec.ID,
				Note:            "posting missing from store",
			})
			return terr
		}
		return fmt.Errorf("load posting: %w", err)
	}

	if !posting.Analyzed() {
		reqs, err := s.analyzer.Analyze(ctx, posting.Description)
		if err != nil {
			return s.handleStageFailure(ctx, rec, err, model.ReasonAnalysisUnavailable)
		}
		if _, err := s.postings.SaveAnalysis(ctx, posting.ID, *reqs); err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
	}

	_, err = s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StateAnalyzed,
		Reason:          model.ReasonAnalysisComplete,
		CausalID:        "analyze:" + rec.ID + ":" + posting.ID,
	})
	return err
}

func (s *Scheduler) optimize(ctx context.Context, rec *model.ApplicationRecord) error {
	posting, err := s.postings.GetByID(ctx, rec.JobID)
	if err != nil {
		return fmt.Errorf("load posting: %w", err)
	}
	resume, err := s.resumes.Get(ctx, rec.ResumeID)
	if err != nil {
		return fmt.Errorf("load resume: %w", err)
	}

	optimized, err := s.optimizer.Optimize(ctx, core.OptimizeRequest{
		Resume:  resume,
		Posting: posting,
		Level:   s.level,
	})
	if err != nil {
		return s.handleStageFailure(ctx, rec, err, model.ReasonOptimizationUnavailable)
	}
	if err := optimized.Validate(); err != nil {
		return s.handleStageFailure(ctx, rec,
			fmt.Errorf("%w: %w", core.ErrOptimizationUnavailable, err),
			model.ReasonOptimizationUnavailable)
	}

	payload, err := json.Marshal(optimized)
	if err != nil {
		return fmt.Errorf("encode optimized resume: %w", err)
	}
	score := optimized.MatchScore

	_, err = s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StateOptimized,
		Reason:          model.ReasonOptimizationComplete,
		CausalID:        "optimize:" + rec.ID + ":" + posting.ID,
		MatchScore:      &score,
		OptimizedResume: payload,
	})
	return err
}

// routeToReview moves an optimized record into human review, or declines it
// outright when its match score falls below the configured gate.
func (s *Scheduler) routeToReview(ctx context.Context, rec *model.ApplicationRecord) error {
	if s.minMatchScore > 0 && rec.MatchScore != nil && *rec.MatchScore < s.minMatchScore {
		_, err := s.apps.Transition(ctx, TransitionRequest{
			RecordID:        rec.ID,
			ExpectedVersion: rec.Version,
			To:              model.StateDeclined,
			Reason:          model.ReasonLowMatchScore,
			CausalID:        "gate:" + rec.ID,
			Note:            fmt.Sprintf("match score %d below threshold %d", *rec.MatchScore, s.minMatchScore),
		})
		return err
	}

	_, err := s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StatePendingReview,
		Reason:          model.ReasonAwaitingReview,
		CausalID:        "review-queue:" + rec.ID,
	})
	return err
}

func (s *Scheduler) submit(ctx context.Context, rec *model.ApplicationRecord) error {
	adapter, ok := s.adapters[rec.Platform]
	if !ok {
		return fmt.Errorf("no adapter registered for platform %s", rec.Platform)
	}

	token, err := s.governor.Acquire(ctx, rec.Platform, model.PermissionSubmission)
	if err != nil {
		var denied *core.DeniedError
		if errors.As(err, &denied) {
			// Quota or pacing says no: push the record, no state change, no
			// attempt spent.
			_, rerr := s.records.Reschedule(ctx, core.RescheduleParams{
				RecordID:        rec.ID,
				ExpectedVersion: rec.Version,
				DueAt:           denied.RetryAfter,
			})
			return rerr
		}
		return fmt.Errorf("acquire submission permission: %w", err)
	}

	posting, err := s.postings.GetByID(ctx, rec.JobID)
	if err != nil {
		return fmt.Errorf("load posting: %w", err)
	}

	// The grant must still be live when the submitting transition is issued:
	// a stale token no longer carries the pacing decision it encoded.
	if !token.ValidAt(s.timeProvider.Now()) {
		rerr := s.releaseQuota(ctx, token)
		return errors.Join(
			fmt.Errorf("submission grant expired before dispatch: %w", core.ErrPermissionDenied),
			rerr,
		)
	}

	attemptID := uuid.NewString()
	// The approved -> submitting transition doubles as the pre-submission
	// decline re-check: a decline that raced in changes the stored state, the
	// optimistic append fails, and the submit call never goes out.
	inFlight, err := s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              model.StateSubmitting,
		Reason:          model.ReasonSubmissionStarted,
		CausalID:        "attempt:" + attemptID,
		AttemptDelta:    1,
	})
	if err != nil {
		if errors.Is(err, core.ErrConflict) || errors.Is(err, core.ErrInvalidTransition) {
			if s.logger != nil {
				s.logger.InfoContext(ctx, "submission aborted by concurrent decision", "record_id", rec.ID)
			}
			return s.releaseQuota(ctx, token)
		}
		return err
	}

	// An in-flight submission survives engine shutdown: abandoning it midway
	// could double-submit on the next run.
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout)
	defer cancel()

	result, submitErr := adapter.Submit(submitCtx, core.SubmitRequest{
		Posting: posting,
		Resume:  inFlight.OptimizedResume,
	})

	// Recording the outcome rides the same shutdown-proof footing as the call
	// itself: a cancellation between the platform's answer and the transition
	// would strand the record in submitting with the platform ref lost.
	outcomeCtx := context.WithoutCancel(ctx)
	if submitErr == nil {
		_, err := s.apps.Transition(outcomeCtx, TransitionRequest{
			RecordID:        inFlight.ID,
			ExpectedVersion: inFlight.Version,
			To:              model.StateSubmitted,
			Reason:          model.ReasonSubmissionAccepted,
			CausalID:        "attempt:" + attemptID,
			PlatformRef:     &result.PlatformRef,
		})
		return err
	}

	return s.handleSubmitFailure(outcomeCtx, inFlight, attemptID, token, submitErr)
}

func (s *Scheduler) handleSubmitFailure(
	ctx context.Context,
	rec *model.ApplicationRecord,
	attemptID string,
	token *core.PermissionToken,
	submitErr error,
) error {
	reason, target := classifySubmitFailure(submitErr)

	var due *time.Time
	if target == model.StatePendingReview && !reason.HumanActionable() {
		d := s.backoff.NextDue(s.timeProvider.Now(), rec.AttemptCount)
		due = &d
	}

	_, err := s.apps.Transition(ctx, TransitionRequest{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		To:              target,
		Reason:          reason,
		CausalID:        "attempt:" + attemptID,
		Note:            submitErr.Error(),
		DueAt:           due,
	})
	if err != nil {
		return errors.Join(submitErr, err)
	}

	// A submission the platform never accepted gives its quota back; an
	// outright rejection was still a spent submission.
	if target != model.StateRejected {
		if rerr := s.releaseQuota(ctx, token); rerr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "quota release failed", "record_id", rec.ID, "error", rerr)
		}
	}

	if s.logger != nil {
		s.logger.WarnContext(ctx, "submission failed",
			"record_id", rec.ID, "reason", reason, "target", target, "error", submitErr)
	}
	return nil
}

// releaseQuota refunds daily quota when the governor supports it. The core
// Governor port only grants; refunding is an extension of the concrete type.
func (s *Scheduler) releaseQuota(ctx context.Context, token *core.PermissionToken) error {
	type releaser interface {
		Release(ctx context.Context, token *core.PermissionToken) error
	}
	if r, ok := s.governor.(releaser); ok {
		return r.Release(ctx, token)
	}
	return nil
}

func (s *Scheduler) handleStageFailure(ctx context.Context, rec *model.ApplicationRecord, stageErr error, reason model.Reason) error {
	if !core.IsTransient(stageErr) {
		_, err := s.apps.Transition(ctx, TransitionRequest{
			RecordID:        rec.ID,
			ExpectedVersion: rec.Version,
			To:              model.StateFailed,
			Reason:          reason,
			CausalID:        fmt.Sprintf("stage-fail:%s:%d", rec.ID, rec.Version),
			Note:            stageErr.Error(),
		})
		return errors.Join(stageErr, err)
	}

	if rec.AttemptCount >= s.maxAttempts {
		_, err := s.apps.Transition(ctx, TransitionRequest{
			RecordID:        rec.ID,
			ExpectedVersion: rec.Version,
			To:              model.StateFailed,
			Reason:          model.ReasonRetriesExhausted,
			CausalID:        fmt.Sprintf("retry-cap:%s:%d", rec.ID, rec.AttemptCount),
			Note:            stageErr.Error(),
		})
		return errors.Join(stageErr, err)
	}

	// Transient: retry in place after backoff, one attempt spent.
	_, err := s.records.Reschedule(ctx, core.RescheduleParams{
		RecordID:        rec.ID,
		ExpectedVersion: rec.Version,
		DueAt:           s.backoff.NextDue(s.timeProvider.Now(), rec.AttemptCount+1),
		AttemptDelta:    1,
	})
	if err != nil {
		return errors.Join(stageErr, err)
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "transient stage failure, retry scheduled",
			"record_id", rec.ID, "state", rec.State, "attempt", rec.AttemptCount+1, "error", stageErr)
	}
	return nil
}

// classifySubmitFailure maps a submit error onto the transition it causes.
// Everything unrecognized is treated as a transient network failure: the
// recovery edge parks the record and the scheduler retries under the cap.
func classifySubmitFailure(err error) (model.Reason, model.State) {
	var se *core.SubmitError
	if errors.As(err, &se) {
		switch se.Kind {
		case core.SubmitRejected:
			return model.ReasonPlatformRejected, model.StateRejected
		case core.SubmitCaptchaRequired:
			return model.ReasonCaptchaRequired, model.StatePendingReview
		case core.SubmitSessionExpired:
			return model.ReasonSessionExpired, model.StatePendingReview
		case core.SubmitRateLimited:
			return model.ReasonRateLimited, model.StatePendingReview
		case core.SubmitUnknown:
			return model.ReasonNetworkTimeout, model.StatePendingReview
		}
	}
	return model.ReasonNetworkTimeout, model.StatePendingReview
}
