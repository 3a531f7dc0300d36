package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/applyforge/applyforge/internal/adapters/extract"
	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// ResumeHandlers serves resume intake and retrieval.
type ResumeHandlers struct {
	Store     core.ResumeStore
	Extractor *extract.TextExtractor
}

type resumeUploadRequest struct {
	// Document and Format are optional; when present the document text is
	// extracted and becomes the profile's raw text.
	Document string `json:"document,omitempty"`
	Format   string `json:"format,omitempty"`

	Profile model.ResumeProfile `json:"profile"`
}

type resumeUploadResponse struct {
	ResumeID string `json:"resume_id"`
}

// Upload stores a resume profile and returns its content identity. Uploading
// byte-identical content twice returns the same identity.
func (h *ResumeHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	var req resumeUploadRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile := req.Profile
	if req.Document != "" {
		text, err := h.Extractor.Extract(r.Context(), []byte(req.Document), req.Format)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		profile.RawText = text
	}

	if strings.TrimSpace(profile.RawText) == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "empty_resume",
			Err: errors.New("either a document or profile raw_text is required")})
		return
	}

	id, err := h.Store.Put(r.Context(), &profile)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, resumeUploadResponse{ResumeID: id})
}

// Get returns a stored resume profile by its content identity.
func (h *ResumeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_id", Err: errors.New("resume id is required")})
		return
	}

	profile, err := h.Store.Get(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}
