package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteDomainError maps engine errors onto HTTP status codes and writes the
// JSON error response.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, data.ErrRecordNotFound),
		errors.Is(err, data.ErrPostingNotFound),
		errors.Is(err, data.ErrResumeNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case errors.Is(err, core.ErrConflict):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "version_conflict", Err: err})
	case errors.Is(err, core.ErrInvalidTransition):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "invalid_transition", Err: err})
	case errors.Is(err, core.ErrPermissionDenied):
		WriteError(w, ErrorParams{Code: http.StatusTooManyRequests, ErrCode: "rate_limited", Err: err})
	case errors.Is(err, core.ErrUnsupportedFormat):
		WriteError(w, ErrorParams{Code: http.StatusUnsupportedMediaType, ErrCode: "unsupported_format", Err: err})
	case errors.Is(err, core.ErrCorruptDocument):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "corrupt_document", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
	}
}
