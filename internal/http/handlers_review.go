package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/service"
)

// ReviewHandlers serves the human decision surface.
type ReviewHandlers struct {
	Svc *service.ReviewService
}

type reviewDecisionRequest struct {
	Note string `json:"note,omitempty"`
}

// ListPending returns records waiting for a reviewer, oldest first.
func (h *ReviewHandlers) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_limit",
				Err: errors.New("limit must be a positive integer")})
			return
		}
		limit = parsed
	}

	records, err := h.Svc.ListPending(r.Context(), limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

// Approve releases a pending record to the scheduler for submission.
func (h *ReviewHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Svc.Approve)
}

// Decline terminally declines a record.
func (h *ReviewHandlers) Decline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Svc.Decline)
}

type reviewDecision func(ctx context.Context, recordID, note string) (*model.ApplicationRecord, error)

func (h *ReviewHandlers) decide(w http.ResponseWriter, r *http.Request, apply reviewDecision) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_id", Err: errors.New("record id is required")})
		return
	}

	// The note body is optional; an empty body is a decision without comment.
	var req reviewDecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else if r.Body != nil {
		_, _ = io.Copy(io.Discard, r.Body)
	}

	rec, err := apply(r.Context(), id, req.Note)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}
