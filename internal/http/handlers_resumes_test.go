package httpx

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/model"
)

func TestResumeUploadProfile(t *testing.T) {
	f := newRouterFixture(t)
	f.resumes.EXPECT().
		Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, profile *model.ResumeProfile) (string, error) {
			require.Equal(t, "Alex Doe", profile.Name)
			require.Equal(t, "Alex Doe\nBackend engineer.", profile.RawText)
			return "resume-abc", nil
		})

	rr := f.do(t, http.MethodPost, "/api/resumes", map[string]any{
		"profile": map[string]any{
			"name":     "Alex Doe",
			"raw_text": "Alex Doe\nBackend engineer.",
		},
	})

	require.Equal(t, http.StatusCreated, rr.Code)

	var body struct {
		ResumeID string `json:"resume_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "resume-abc", body.ResumeID)
}

func TestResumeUploadExtractsDocument(t *testing.T) {
	f := newRouterFixture(t)
	f.resumes.EXPECT().
		Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, profile *model.ResumeProfile) (string, error) {
			// CRLF normalized and surrounding whitespace trimmed by extraction.
			require.Equal(t, "Alex Doe\nBackend engineer.", profile.RawText)
			return "resume-abc", nil
		})

	rr := f.do(t, http.MethodPost, "/api/resumes", map[string]any{
		"document": "  Alex Doe\r\nBackend engineer.\r\n",
		"format":   "txt",
		"profile":  map[string]any{"name": "Alex Doe"},
	})

	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestResumeUploadUnsupportedFormat(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.do(t, http.MethodPost, "/api/resumes", map[string]any{
		"document": "binary stuff",
		"format":   "pdf",
	})

	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	require.Equal(t, "unsupported_format", decodeErrorBody(t, rr))
}

func TestResumeUploadEmpty(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.do(t, http.MethodPost, "/api/resumes", map[string]any{
		"profile": map[string]any{"name": "Alex Doe", "raw_text": "   "},
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "empty_resume", decodeErrorBody(t, rr))
}

func TestResumeUploadMalformedJSON(t *testing.T) {
	f := newRouterFixture(t)

	rr := serve(f, newRawRequest(t, http.MethodPost, "/api/resumes", `{"profile":`))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_json", decodeErrorBody(t, rr))
}

func TestResumeUploadRejectsUnknownFields(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.do(t, http.MethodPost, "/api/resumes", map[string]any{
		"resume_text": "legacy field",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_json", decodeErrorBody(t, rr))
}

func TestResumeGet(t *testing.T) {
	f := newRouterFixture(t)
	f.resumes.EXPECT().
		Get(gomock.Any(), "resume-abc").
		Return(&model.ResumeProfile{Name: "Alex Doe", RawText: "text"}, nil)

	rr := f.do(t, http.MethodGet, "/api/resumes/resume-abc", nil)

	require.Equal(t, http.StatusOK, rr.Code)

	var profile model.ResumeProfile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	require.Equal(t, "Alex Doe", profile.Name)
}

func TestResumeGetNotFound(t *testing.T) {
	f := newRouterFixture(t)
	f.resumes.EXPECT().Get(gomock.Any(), "missing").Return(nil, data.ErrResumeNotFound)

	rr := f.do(t, http.MethodGet, "/api/resumes/missing", nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, rr))
}
