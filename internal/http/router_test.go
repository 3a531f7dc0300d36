package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/applyforge/applyforge/internal/adapters/extract"
	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/mocks"
	"github.com/applyforge/applyforge/internal/service"
)

// routerFixture wires the full router over mocked persistence so handler
// tests exercise the real services and routing patterns.
type routerFixture struct {
	records  *mocks.MockRecordRepository
	postings *mocks.MockPostingRepository
	resumes  *mocks.MockResumeStore
	governor *mocks.MockGovernor
	adapter  *mocks.MockPlatformAdapter
	handler  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &routerFixture{
		records:  mocks.NewMockRecordRepository(ctrl),
		postings: mocks.NewMockPostingRepository(ctrl),
		resumes:  mocks.NewMockResumeStore(ctrl),
		governor: mocks.NewMockGovernor(ctrl),
		adapter:  mocks.NewMockPlatformAdapter(ctrl),
	}
	f.adapter.EXPECT().Platform().Return(model.PlatformLinkedIn).AnyTimes()

	apps, err := service.NewApplicationService(service.ApplicationServiceOptions{Repo: f.records})
	require.NoError(t, err)
	review, err := service.NewReviewService(service.ReviewServiceOptions{Applications: apps})
	require.NoError(t, err)
	discovery, err := service.NewDiscoveryService(service.DiscoveryOptions{
		Applications: apps,
		Postings:     f.postings,
		Governor:     f.governor,
		Adapters: map[model.Platform]core.PlatformAdapter{
			model.PlatformLinkedIn: f.adapter,
		},
	})
	require.NoError(t, err)

	f.handler = NewRouter(RouterServices{
		Applications: apps,
		Review:       review,
		Discovery:    discovery,
		Resumes:      f.resumes,
		Extractor:    extract.NewTextExtractor(),
	})
	return f
}

// do performs a request against the router. A non-nil body is sent as JSON.
func (f *routerFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

// newRawRequest builds a request with a raw string body, for malformed JSON cases.
func newRawRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(f *routerFixture, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

// decodeErrorBody asserts a JSON error envelope and returns its error code.
func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotEmpty(t, body["message"])
	return body["error"]
}

// analyzedRecord returns a record whose history replays cleanly to its state.
func analyzedRecord(id string) *model.ApplicationRecord {
	return &model.ApplicationRecord{
		ID:       id,
		ResumeID: "resume-1",
		JobID:    "linkedin:job-1",
		Platform: model.PlatformLinkedIn,
		State:    model.StateAnalyzed,
		Version:  2,
		History: []model.Transition{
			{Seq: 1, From: "", To: model.StateDiscovered, Reason: model.ReasonDiscovered},
			{Seq: 2, From: model.StateDiscovered, To: model.StateAnalyzed, Reason: model.ReasonAnalysisComplete},
		},
	}
}
