package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/service"
)

// DiscoveryHandlers serves on-demand discovery runs.
type DiscoveryHandlers struct {
	Svc    *service.DiscoveryService
	Logger *slog.Logger
}

type discoverRequest struct {
	ResumeID string               `json:"resume_id"`
	Platform model.Platform       `json:"platform"`
	Criteria model.SearchCriteria `json:"criteria"`
}

// Discover runs a governed search on one platform and enqueues records for
// newly discovered postings. A search cut short by the governor still
// returns the partial result with 200.
func (h *DiscoveryHandlers) Discover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	switch {
	case req.ResumeID == "":
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_resume_id",
			Err: errors.New("resume_id is required")})
		return
	case !req.Platform.Valid():
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_platform",
			Err: errors.New("platform must be one of linkedin, indeed, dice")})
		return
	}
	if err := req.Criteria.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_criteria", Err: err})
		return
	}

	result, err := h.Svc.Discover(r.Context(), req.ResumeID, req.Platform, req.Criteria)
	if err != nil {
		// A failed page fetch still reports what was ingested so far.
		if result != nil && result.Found > 0 {
			if h.Logger != nil {
				h.Logger.WarnContext(r.Context(), "discovery ended early", "error", err)
			}
			WriteJSON(w, http.StatusOK, result)
			return
		}
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
