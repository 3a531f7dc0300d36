package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/testutil"
)

func createRequest(resumeID, jobID string) *model.CreateRecordRequest {
	return &model.CreateRecordRequest{
		ResumeID: resumeID,
		JobID:    jobID,
		Platform: model.PlatformLinkedIn,
		Priority: 50,
		CausalID: "test:enqueue",
	}
}

func analyzedTransition(causalID string) model.Transition {
	return model.Transition{
		From:     model.StateDiscovered,
		To:       model.StateAnalyzed,
		Reason:   model.ReasonAnalysisComplete,
		CausalID: causalID,
	}
}

func TestRecordRepo_CreateAndDedup(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		req := createRequest("resume-1", "linkedin:job-1")
		rec, err := repo.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, model.RecordIdentity("resume-1", "linkedin:job-1"), rec.ID)
		assert.Equal(t, model.StateDiscovered, rec.State)
		assert.Equal(t, 1, rec.Version)
		assert.Equal(t, 50, rec.Priority)
		assert.Equal(t, model.ReasonDiscovered, rec.LastReason)

		// A second enqueue of the same pair converges on the stored row.
		again, err := repo.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, again.ID)
		assert.Equal(t, 1, again.Version)

		withHistory, err := repo.GetWithHistory(ctx, rec.ID)
		require.NoError(t, err)
		require.Len(t, withHistory.History, 1)
		assert.Equal(t, 1, withHistory.History[0].Seq)
		assert.Equal(t, "test:enqueue", withHistory.History[0].CausalID)
	})
}

func TestRecordRepo_CreateValidates(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewRecordRepo(db, RecordRepoConfig{})
		_, err := repo.Create(context.Background(), &model.CreateRecordRequest{})
		require.Error(t, err)
	})
}

func TestRecordRepo_AppendTransition(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		rec, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)

		updated, err := repo.AppendTransition(ctx, core.AppendTransitionParams{
			RecordID:        rec.ID,
			ExpectedVersion: 1,
			Transition:      analyzedTransition("analyze:1"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.StateAnalyzed, updated.State)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, model.ReasonAnalysisComplete, updated.LastReason)

		withHistory, err := repo.GetWithHistory(ctx, rec.ID)
		require.NoError(t, err)
		require.Len(t, withHistory.History, 2)
		assert.Equal(t, 2, withHistory.History[1].Seq)
	})
}

func TestRecordRepo_AppendTransitionIdempotentRedelivery(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		rec, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)

		params := core.AppendTransitionParams{
			RecordID:        rec.ID,
			ExpectedVersion: 1,
			Transition:      analyzedTransition("analyze:1"),
		}
		first, err := repo.AppendTransition(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, 2, first.Version)

		// Same (from, to, causal id) triple delivered again: no new history
		// entry and no version bump.
		second, err := repo.AppendTransition(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, 2, second.Version)
		assert.Equal(t, model.StateAnalyzed, second.State)

		withHistory, err := repo.GetWithHistory(ctx, rec.ID)
		require.NoError(t, err)
		assert.Len(t, withHistory.History, 2)
	})
}

func TestRecordRepo_AppendTransitionVersionConflict(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		rec, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)

		_, err = repo.AppendTransition(ctx, core.AppendTransitionParams{
			RecordID:        rec.ID,
			ExpectedVersion: 7,
			Transition:      analyzedTransition("analyze:1"),
		})
		require.ErrorIs(t, err, core.ErrConflict)
	})
}

func TestRecordRepo_AppendTransitionMissingRecord(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewRecordRepo(db, RecordRepoConfig{})

		_, err := repo.AppendTransition(context.Background(), core.AppendTransitionParams{
			RecordID:        model.RecordIdentity("ghost", "ghost"),
			ExpectedVersion: 1,
			Transition:      analyzedTransition("analyze:1"),
		})
		require.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestRecordRepo_AppendTransitionRequiresFields(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewRecordRepo(db, RecordRepoConfig{})

		_, err := repo.AppendTransition(context.Background(), core.AppendTransitionParams{
			RecordID:        "rec-1",
			ExpectedVersion: 1,
			Transition:      model.Transition{From: model.StateDiscovered},
		})
		require.ErrorIs(t, err, ErrTransitionRequired)
	})
}

func TestRecordRepo_AppendTransitionUpdatesDerivedColumns(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		rec, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)

		score := 85
		ref := "app-77"
		due := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
		updated, err := repo.AppendTransition(ctx, core.AppendTransitionParams{
			RecordID:        rec.ID,
			ExpectedVersion: 1,
			Transition: model.Transition{
				From:     model.StateDiscovered,
				To:       model.StateAnalyzed,
				Reason:   model.ReasonAnalysisComplete,
				CausalID: "analyze:1",
				Note:     "looks good",
			},
			MatchScore:      &score,
			OptimizedResume: json.RawMessage(`{"content":"tailored"}`),
			PlatformRef:     &ref,
			DueAt:           &due,
			AttemptDelta:    1,
		})
		require.NoError(t, err)

		require.NotNil(t, updated.MatchScore)
		assert.Equal(t, 85, *updated.MatchScore)
		assert.JSONEq(t, `{"content":"tailored"}`, string(updated.OptimizedResume))
		require.NotNil(t, updated.PlatformRef)
		assert.Equal(t, "app-77", *updated.PlatformRef)
		assert.WithinDuration(t, due, updated.DueAt, time.Second)
		assert.Equal(t, 1, updated.AttemptCount)
	})
}

func TestRecordRepo_Reschedule(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		rec, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)

		due := time.Now().Add(30 * time.Minute).UTC()
		updated, err := repo.Reschedule(ctx, core.RescheduleParams{
			RecordID:        rec.ID,
			ExpectedVersion: 1,
			DueAt:           due,
			AttemptDelta:    1,
		})
		require.NoError(t, err)
		assert.WithinDuration(t, due, updated.DueAt, time.Second)
		assert.Equal(t, 1, updated.AttemptCount)
		// No state transition happened.
		assert.Equal(t, 1, updated.Version)
		assert.Equal(t, model.StateDiscovered, updated.State)

		_, err = repo.Reschedule(ctx, core.RescheduleParams{
			RecordID:        rec.ID,
			ExpectedVersion: 9,
			DueAt:           due,
		})
		require.ErrorIs(t, err, core.ErrConflict)

		_, err = repo.Reschedule(ctx, core.RescheduleParams{
			RecordID:        model.RecordIdentity("ghost", "ghost"),
			ExpectedVersion: 1,
			DueAt:           due,
		})
		require.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestRecordRepo_ListDueClaims(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{ClaimLease: 5 * time.Minute})

		lowPriority := createRequest("resume-1", "linkedin:job-1")
		lowPriority.Priority = 10
		highPriority := createRequest("resume-1", "linkedin:job-2")
		highPriority.Priority = 90

		_, err := repo.Create(ctx, lowPriority)
		require.NoError(t, err)
		_, err = repo.Create(ctx, highPriority)
		require.NoError(t, err)

		due, err := repo.ListDue(ctx, core.ListDueParams{
			Platform: model.PlatformLinkedIn,
			Before:   time.Now().Add(time.Second),
			Limit:    10,
		})
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, 90, due[0].Priority)
		assert.Equal(t, 10, due[1].Priority)

		// The claim lease hides the records from a concurrent worker.
		again, err := repo.ListDue(ctx, core.ListDueParams{
			Platform: model.PlatformLinkedIn,
			Before:   time.Now().Add(time.Second),
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Empty(t, again)

		// Other platforms see nothing.
		other, err := repo.ListDue(ctx, core.ListDueParams{
			Platform: model.PlatformIndeed,
			Before:   time.Now().Add(time.Second),
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestRecordRepo_ListDueSkipsHumanActionablePendingReview(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		retryable, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)
		waiting, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-2"))
		require.NoError(t, err)

		_, err = repo.AppendTransition(ctx, core.AppendTransitionParams{
			RecordID:        retryable.ID,
			ExpectedVersion: 1,
			Transition: model.Transition{
				From: model.StateDiscovered, To: model.StatePendingReview,
				Reason: model.ReasonRateLimited, CausalID: "attempt:1",
			},
		})
		require.NoError(t, err)
		_, err = repo.AppendTransition(ctx, core.AppendTransitionParams{
			RecordID:        waiting.ID,
			ExpectedVersion: 1,
			Transition: model.Transition{
				From: model.StateDiscovered, To: model.StatePendingReview,
				Reason: model.ReasonAwaitingReview, CausalID: "attempt:1",
			},
		})
		require.NoError(t, err)

		due, err := repo.ListDue(ctx, core.ListDueParams{
			Platform: model.PlatformLinkedIn,
			Before:   time.Now().Add(time.Second),
			Limit:    10,
		})
		require.NoError(t, err)
		// Only the rate-limited record is auto-retryable; the one awaiting a
		// human stays parked.
		require.Len(t, due, 1)
		assert.Equal(t, retryable.ID, due[0].ID)
	})
}

func TestRecordRepo_RecoverStaleSubmitting(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		toSubmitting := func(resumeID, jobID string) *model.ApplicationRecord {
			rec, err := repo.Create(ctx, createRequest(resumeID, jobID))
			require.NoError(t, err)
			rec, err = repo.AppendTransition(ctx, core.AppendTransitionParams{
				RecordID:        rec.ID,
				ExpectedVersion: 1,
				Transition: model.Transition{
					From: model.StateDiscovered, To: model.StateSubmitting,
					Reason: model.ReasonSubmissionStarted, CausalID: "attempt:1",
				},
			})
			require.NoError(t, err)
			return rec
		}

		stranded := toSubmitting("resume-1", "linkedin:job-1")
		fresh := toSubmitting("resume-1", "linkedin:job-2")

		// Age the first record past the cutoff; the second stays recent.
		_, err := db.ExecContext(ctx,
			`UPDATE application_records SET updated_at = $2 WHERE id = $1`,
			stranded.ID, time.Now().Add(-time.Hour).UTC(),
		)
		require.NoError(t, err)

		recovered, err := repo.RecoverStaleSubmitting(ctx, time.Now().Add(-15*time.Minute), 10)
		require.NoError(t, err)
		assert.Equal(t, 1, recovered)

		parked, err := repo.GetWithHistory(ctx, stranded.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatePendingReview, parked.State)
		assert.Equal(t, model.ReasonSubmissionOutcomeUnknown, parked.LastReason)
		assert.Equal(t, 3, parked.Version)
		require.Len(t, parked.History, 3)
		assert.Equal(t, 3, parked.History[2].Seq)
		assert.Equal(t, "recover:"+stranded.ID+":2", parked.History[2].CausalID)

		untouched, err := repo.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StateSubmitting, untouched.State)

		// The parked record waits for a human; the scheduler must not pick
		// it back up.
		due, err := repo.ListDue(ctx, core.ListDueParams{
			Platform: model.PlatformLinkedIn,
			Before:   time.Now().Add(time.Second),
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Empty(t, due)

		// A second sweep finds nothing left.
		recovered, err = repo.RecoverStaleSubmitting(ctx, time.Now().Add(-15*time.Minute), 10)
		require.NoError(t, err)
		assert.Zero(t, recovered)
	})
}

func TestRecordRepo_ListByStateAndStats(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewRecordRepo(db, RecordRepoConfig{})

		_, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-1"))
		require.NoError(t, err)
		submitted, err := repo.Create(ctx, createRequest("resume-1", "linkedin:job-2"))
		require.NoError(t, err)

		_, err = repo.AppendTransition(ctx, core.AppendTransitionParams{
			RecordID:        submitted.ID,
			ExpectedVersion: 1,
			Transition: model.Transition{
				From: model.StateDiscovered, To: model.StateSubmitted,
				Reason: model.ReasonSubmissionAccepted, CausalID: "attempt:1",
			},
		})
		require.NoError(t, err)

		records, err := repo.ListByState(ctx, model.StateSubmitted, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, submitted.ID, records[0].ID)

		_, err = repo.ListByState(ctx, model.State("galactic"), 10)
		require.Error(t, err)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Discovered)
		assert.Equal(t, 1, stats.Submitted)
		assert.Equal(t, 1, stats.SubmittedLast7Days)
		assert.Equal(t, 1, stats.SubmittedLast30Days)
	})
}
