package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/service"
)

const defaultListLimit = 50

// RecordHandlers serves read access to application records.
type RecordHandlers struct {
	Svc *service.ApplicationService
}

// Get returns one record with its full transition history.
func (h *RecordHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_id", Err: errors.New("record id is required")})
		return
	}

	rec, err := h.Svc.GetWithHistory(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// List returns records filtered by state, oldest first.
func (h *RecordHandlers) List(w http.ResponseWriter, r *http.Request) {
	state := model.State(r.URL.Query().Get("state"))
	if !state.Valid() {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state",
			Err: errors.New("state query parameter is required and must be a known state")})
		return
	}

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

	records, err := h.Svc.ListByState(r.Context(), state, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

// Stats returns per-state record counts and rolling submission totals.
func (h *RecordHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
