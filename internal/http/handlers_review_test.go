package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/model"
)

func pendingReviewRecord(id string) *model.ApplicationRecord {
	return &model.ApplicationRecord{
		ID:       id,
		ResumeID: "resume-1",
		JobID:    "linkedin:job-1",
		Platform: model.PlatformLinkedIn,
		State:    model.StatePendingReview,
		Version:  4,
	}
}

func TestReviewListPending(t *testing.T) {
	f := newRouterFixture(t)
	f.records.EXPECT().
		ListByState(gomock.Any(), model.StatePendingReview, 50).
		Return([]*model.ApplicationRecord{pendingReviewRecord("rec-1")}, nil)

	rr := f.do(t, http.MethodGet, "/api/review/pending", nil)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Records []*model.ApplicationRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Records, 1)
	require.Equal(t, "rec-1", body.Records[0].ID)
}

func TestReviewApproveWithNote(t *testing.T) {
	f := newRouterFixture(t)
	rec := pendingReviewRecord("rec-1")

	// One load for the review check, one inside the transition.
	f.records.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil).Times(2)

	var captured core.AppendTransitionParams
	f.records.EXPECT().
		AppendTransition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params core.AppendTransitionParams) (*model.ApplicationRecord, error) {
			captured = params
			approved := *rec
			approved.State = model.StateApproved
			approved.Version = 5
			return &approved, nil
		})

	rr := f.do(t, http.MethodPost, "/api/review/rec-1/approve", map[string]string{"note": "ship it"})

	require.Equal(t, http.StatusOK, rr.Code)

	var got model.ApplicationRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, model.StateApproved, got.State)

	require.Equal(t, 4, captured.ExpectedVersion)
	require.Equal(t, model.StateApproved, captured.Transition.To)
	require.Equal(t, model.ReasonApprovedByReviewer, captured.Transition.Reason)
	require.Equal(t, "ship it", captured.Transition.Note)
	require.True(t, strings.HasPrefix(captured.Transition.CausalID, "review:"))
}

func TestReviewApproveWithoutBody(t *testing.T) {
	f := newRouterFixture(t)
	rec := pendingReviewRecord("rec-1")
	f.records.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil).Times(2)
	f.records.EXPECT().
		AppendTransition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params core.AppendTransitionParams) (*model.ApplicationRecord, error) {
			require.Empty(t, params.Transition.Note)
			approved := *rec
			approved.State = model.StateApproved
			approved.Version = 5
			return &approved, nil
		})

	rr := f.do(t, http.MethodPost, "/api/review/rec-1/approve", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestReviewApproveUnknownRecord(t *testing.T) {
	f := newRouterFixture(t)
	f.records.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, data.ErrRecordNotFound)

	rr := f.do(t, http.MethodPost, "/api/review/missing/approve", nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, rr))
}

func TestReviewApproveNonPendingIsConflict(t *testing.T) {
	f := newRouterFixture(t)
	rec := pendingReviewRecord("rec-1")
	rec.State = model.StateDiscovered
	f.records.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil).Times(2)

	rr := f.do(t, http.MethodPost, "/api/review/rec-1/approve", nil)

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "invalid_transition", decodeErrorBody(t, rr))
}

func TestReviewApproveVersionConflict(t *testing.T) {
	f := newRouterFixture(t)
	rec := pendingReviewRecord("rec-1")
	f.records.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil).Times(2)
	f.records.EXPECT().
		AppendTransition(gomock.Any(), gomock.Any()).
		Return(nil, core.ErrConflict)

	rr := f.do(t, http.MethodPost, "/api/review/rec-1/approve", nil)

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "version_conflict", decodeErrorBody(t, rr))
}

func TestReviewDeclineFromAnalyzed(t *testing.T) {
	f := newRouterFixture(t)
	rec := analyzedRecord("rec-1")
	f.records.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil).Times(2)
	f.records.EXPECT().
		AppendTransition(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params core.AppendTransitionParams) (*model.ApplicationRecord, error) {
			require.Equal(t, model.StateDeclined, params.Transition.To)
			require.Equal(t, model.ReasonDeclinedByReviewer, params.Transition.Reason)
			declined := *rec
			declined.State = model.StateDeclined
			declined.Version = rec.Version + 1
			return &declined, nil
		})

	rr := f.do(t, http.MethodPost, "/api/review/rec-1/decline", map[string]string{"note": "not a fit"})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestReviewDeclineTerminalRecordIsConflict(t *testing.T) {
	f := newRouterFixture(t)
	rec := pendingReviewRecord("rec-1")
	rec.State = model.StateSubmitted
	f.records.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil).Times(2)

	rr := f.do(t, http.MethodPost, "/api/review/rec-1/decline", nil)

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "invalid_transition", decodeErrorBody(t, rr))
}

func TestReviewDecisionRejectsMalformedJSON(t *testing.T) {
	f := newRouterFixture(t)

	req := newRawRequest(t, http.MethodPost, "/api/review/rec-1/approve", `{"note":`)
	rr := serve(f, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_json", decodeErrorBody(t, rr))
}
