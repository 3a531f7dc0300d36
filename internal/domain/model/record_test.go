package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/applyforge/applyforge/internal/domain/model"
)

func TestRecordIdentityDeterministic(t *testing.T) {
	a := model.RecordIdentity("resume-1", "linkedin:job-1")
	b := model.RecordIdentity("resume-1", "linkedin:job-1")
	require.Equal(t, a, b)

	parsed := model.RecordIdentity("resume-1", "linkedin:job-1")
	require.Len(t, parsed, 36, "expected a UUID string")
}

func TestRecordIdentityDistinguishesPairs(t *testing.T) {
	base := model.RecordIdentity("resume-1", "linkedin:job-1")
	require.NotEqual(t, base, model.RecordIdentity("resume-2", "linkedin:job-1"))
	require.NotEqual(t, base, model.RecordIdentity("resume-1", "linkedin:job-2"))

	// The separator prevents concatenation collisions between the two parts.
	require.NotEqual(t,
		model.RecordIdentity("ab", "c"),
		model.RecordIdentity("a", "bc"))
}

func TestFoldHistoryReplaysToCurrentState(t *testing.T) {
	history := []model.Transition{
		{Seq: 1, From: model.StateDiscovered, To: model.StateDiscovered, Reason: model.ReasonDiscovered},
		{Seq: 2, From: model.StateDiscovered, To: model.StateAnalyzed, Reason: model.ReasonAnalysisComplete},
		{Seq: 3, From: model.StateAnalyzed, To: model.StateOptimized, Reason: model.ReasonOptimizationComplete},
		{Seq: 4, From: model.StateOptimized, To: model.StatePendingReview, Reason: model.ReasonAwaitingReview},
	}

	state, err := model.FoldHistory(history)
	require.NoError(t, err)
	require.Equal(t, model.StatePendingReview, state)
}

func TestFoldHistoryEmpty(t *testing.T) {
	_, err := model.FoldHistory(nil)
	require.ErrorIs(t, err, model.ErrEmptyHistory)
}

func TestFoldHistoryRejectsWrongOrigin(t *testing.T) {
	_, err := model.FoldHistory([]model.Transition{
		{Seq: 1, From: model.StateAnalyzed, To: model.StateOptimized},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not start")
}

func TestFoldHistoryDetectsGap(t *testing.T) {
	_, err := model.FoldHistory([]model.Transition{
		{Seq: 1, From: model.StateDiscovered, To: model.StateDiscovered},
		{Seq: 2, From: model.StateDiscovered, To: model.StateAnalyzed},
		{Seq: 3, From: model.StateOptimized, To: model.StatePendingReview},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "history gap at seq 3")
}

func TestStateValid(t *testing.T) {
	for _, s := range []model.State{
		model.StateDiscovered, model.StateAnalyzed, model.StateOptimized,
		model.StatePendingReview, model.StateApproved, model.StateSubmitting,
		model.StateSubmitted, model.StateRejected, model.StateDeclined, model.StateFailed,
	} {
		require.True(t, s.Valid(), "expected %s to be valid", s)
	}
	require.False(t, model.State("queued").Valid())
	require.False(t, model.State("").Valid())
}

func TestReasonHumanActionable(t *testing.T) {
	require.True(t, model.ReasonCaptchaRequired.HumanActionable())
	require.True(t, model.ReasonSessionExpired.HumanActionable())
	require.True(t, model.ReasonSubmissionOutcomeUnknown.HumanActionable())
	require.False(t, model.ReasonRateLimited.HumanActionable())
	require.False(t, model.ReasonNetworkTimeout.HumanActionable())
}

func TestCreateRecordRequestValidate(t *testing.T) {
	valid := model.CreateRecordRequest{
		ResumeID: "resume-1",
		JobID:    "linkedin:job-1",
		Platform: model.PlatformLinkedIn,
		Priority: 50,
		CausalID: "discover:abc",
	}
	require.NoError(t, valid.Validate())

	missingResume := valid
	missingResume.ResumeID = "  "
	require.Error(t, missingResume.Validate())

	missingJob := valid
	missingJob.JobID = ""
	require.Error(t, missingJob.Validate())

	badPlatform := valid
	badPlatform.Platform = "monster"
	require.Error(t, badPlatform.Validate())

	badPriority := valid
	badPriority.Priority = 101
	require.Error(t, badPriority.Validate())

	missingCausal := valid
	missingCausal.CausalID = ""
	require.Error(t, missingCausal.Validate())
}
