package platform_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/applyforge/applyforge/internal/adapters/platform"
	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

func linkedinJob(id int) map[string]any {
	return map[string]any{
		"id":          fmt.Sprintf("job-%d", id),
		"title":       fmt.Sprintf("Backend Engineer %d", id),
		"companyName": "Example Corp",
		"snippet":     "Build distributed systems in Go.",
		"jobUrl":      fmt.Sprintf("https://example.com/jobs/%d", id),
		"location":    "remote",
	}
}

func TestLinkedInSearchPagesByOffset(t *testing.T) {
	var starts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/job-search", r.URL.Path)
		starts = append(starts, r.URL.Query().Get("start"))

		var jobs []map[string]any
		switch r.URL.Query().Get("start") {
		case "0":
			jobs = []map[string]any{linkedinJob(1), linkedinJob(2)}
		case "2":
			jobs = []map[string]any{linkedinJob(3)}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 3, "jobs": jobs})
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL, PageSize: 2})
	pager, err := a.Search(context.Background(), model.SearchCriteria{Titles: []string{"Backend Engineer"}})
	require.NoError(t, err)

	page1, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, "linkedin:job-1", page1[0].ID)
	require.Equal(t, "Remote", page1[0].Location)

	page2, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page2, 1)

	// Exhausted: no further request goes out.
	page3, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, page3)

	require.Equal(t, []string{"0", "2"}, starts)
}

func TestLinkedInPagerResumesAfterFailedPage(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var jobs []map[string]any
		if r.URL.Query().Get("start") == "0" {
			jobs = []map[string]any{linkedinJob(1)}
		} else {
			jobs = []map[string]any{linkedinJob(2)}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 2, "jobs": jobs})
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL, PageSize: 1})
	pager, err := a.Search(context.Background(), model.SearchCriteria{Titles: []string{"x"}})
	require.NoError(t, err)

	first, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The failed fetch leaves the cursor in place.
	_, err = pager.Next(context.Background())
	require.Error(t, err)

	retried, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, retried, 1)
	require.Equal(t, "linkedin:job-2", retried[0].ID)
}

func TestLinkedInSearchSkipsMalformedPostings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		broken := linkedinJob(2)
		broken["title"] = ""
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"jobs":  []map[string]any{linkedinJob(1), broken},
		})
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL})
	pager, err := a.Search(context.Background(), model.SearchCriteria{Titles: []string{"x"}})
	require.NoError(t, err)

	page, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page, 1, "posting without a title is dropped")
}

func TestLinkedInSearchValidatesCriteria(t *testing.T) {
	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: "http://unused"})
	_, err := a.Search(context.Background(), model.SearchCriteria{})
	require.Error(t, err)
}

func TestLinkedInFetchDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/jobs/job-7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "job-7",
			"title":       "Staff Engineer",
			"companyName": "Example Corp",
			"description": "Full description text.",
			"location":    "new york, ny",
		})
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL})
	posting, err := a.FetchDetail(context.Background(), "job-7")
	require.NoError(t, err)
	require.Equal(t, "linkedin:job-7", posting.ID)
	require.Equal(t, "Full description text.", posting.Description)
	require.Equal(t, "New York, Ny", posting.Location)
}

func TestLinkedInSubmit(t *testing.T) {
	submittedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/applications", r.URL.Path)

		var req struct {
			JobID  string `json:"jobId"`
			Resume string `json:"resume"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "job-7", req.JobID)
		require.NotEmpty(t, req.Resume)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"applicationId": "app-123",
			"submittedAt":   submittedAt,
		})
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL})
	result, err := a.Submit(context.Background(), core.SubmitRequest{
		Posting: &model.JobPosting{ExternalID: "job-7"},
		Resume:  []byte(`{"content":"tailored"}`),
	})
	require.NoError(t, err)
	require.Equal(t, "app-123", result.PlatformRef)
	require.True(t, result.SubmittedAt.Equal(submittedAt))
}

func TestLinkedInSubmitCaptcha(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("captcha verification required"))
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL})
	_, err := a.Submit(context.Background(), core.SubmitRequest{
		Posting: &model.JobPosting{ExternalID: "job-7"},
	})

	var se *core.SubmitError
	require.ErrorAs(t, err, &se)
	require.Equal(t, core.SubmitCaptchaRequired, se.Kind)
}

func TestLinkedInCheckSession(t *testing.T) {
	var status int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/me", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	a := platform.NewLinkedInAdapter(platform.LinkedInOptions{BaseURL: srv.URL})

	status = http.StatusOK
	require.NoError(t, a.CheckSession(context.Background()))

	status = http.StatusUnauthorized
	err := a.CheckSession(context.Background())
	require.ErrorIs(t, err, platform.ErrSessionInvalid)
}
