package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// LinkedInAdapter speaks the LinkedIn jobs API. Search results page by
// offset: each request carries a start index and the portal reports the
// total match count.
type LinkedInAdapter struct {
	client   *restClient
	pageSize int
}

// LinkedInOptions configure a LinkedInAdapter.
type LinkedInOptions struct {
	BaseURL   string
	AuthToken string
	PageSize  int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewLinkedInAdapter constructs a LinkedIn portal adapter.
func NewLinkedInAdapter(opts LinkedInOptions) *LinkedInAdapter {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	return &LinkedInAdapter{
		client: newRESTClient(restClientOptions{
			Platform:  model.PlatformLinkedIn,
			BaseURL:   opts.BaseURL,
			AuthToken: opts.AuthToken,
			Timeout:   opts.Timeout,
			Logger:    opts.Logger,
		}),
		pageSize: pageSize,
	}
}

// Platform returns the portal identifier.
func (a *LinkedInAdapter) Platform() model.Platform { return model.PlatformLinkedIn }

type linkedinSearchResponse struct {
	Total int `json:"total"`
	Jobs  []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		CompanyName string `json:"companyName"`
		Snippet     string `json:"snippet"`
		JobURL      string `json:"jobUrl"`
		Location    string `json:"location"`
		SalaryText  string `json:"salaryText"`
	} `json:"jobs"`
}

// linkedinPager pages search results by offset. A failed page leaves the
// offset where it was, so retrying Next resumes from the last good cursor.
type linkedinPager struct {
	adapter *LinkedInAdapter
	query   url.Values

	mu     sync.Mutex
	offset int
	total  int
	began  bool
}

// Search returns an offset-based pager over matching postings.
func (a *LinkedInAdapter) Search(_ context.Context, criteria model.SearchCriteria) (core.SearchPager, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("validate criteria: %w", err)
	}

	q := url.Values{}
	q.Set("keywords", strings.Join(criteria.Titles, " OR "))
	if len(criteria.Locations) > 0 {
		q.Set("location", criteria.Locations[0])
	}
	if criteria.ExperienceLevel != "" {
		q.Set("experience", criteria.ExperienceLevel)
	}
	count := criteria.PageSize
	if count <= 0 {
		count = a.pageSize
	}
	q.Set("count", strconv.Itoa(count))

	return &linkedinPager{adapter: a, query: q}, nil
}

// Next fetches the next page, returning (nil, nil) once every match was yielded.
func (p *linkedinPager) Next(ctx context.Context) ([]*model.JobPosting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.began && p.offset >= p.total {
		return nil, nil
	}

	q := p.query
	q.Set("start", strconv.Itoa(p.offset))

	var resp linkedinSearchResponse
	if err := p.adapter.client.doJSON(ctx, http.MethodGet, "/v2/job-search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	p.began = true
	p.total = resp.Total
	p.offset += len(resp.Jobs)

	if len(resp.Jobs) == 0 {
		return nil, nil
	}

	postings := make([]*model.JobPosting, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		posting, err := wirePosting{
			ExternalID:  j.ID,
			Title:       j.Title,
			Company:     j.CompanyName,
			Description: j.Snippet,
			URL:         j.JobURL,
			Location:    j.Location,
			SalaryRange: j.SalaryText,
		}.toModel(model.PlatformLinkedIn)
		if err != nil {
			continue
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

type linkedinDetailResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
	JobURL      string `json:"jobUrl"`
	Location    string `json:"location"`
	SalaryText  string `json:"salaryText"`
}

// FetchDetail fetches and normalizes one posting by its portal id.
func (a *LinkedInAdapter) FetchDetail(ctx context.Context, externalID string) (*model.JobPosting, error) {
	var resp linkedinDetailResponse
	if err := a.client.doJSON(ctx, http.MethodGet, "/v2/jobs/"+url.PathEscape(externalID), nil, &resp); err != nil {
		return nil, err
	}
	return wirePosting{
		ExternalID:  resp.ID,
		Title:       resp.Title,
		Company:     resp.CompanyName,
		Description: resp.Description,
		URL:         resp.JobURL,
		Location:    resp.Location,
		SalaryRange: resp.SalaryText,
	}.toModel(model.PlatformLinkedIn)
}

type linkedinSubmitRequest struct {
	JobID  string `json:"jobId"`
	Resume string `json:"resume"`
}

type linkedinSubmitResponse struct {
	ApplicationID string    `json:"applicationId"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Submit submits one application. Failures come back classified.
func (a *LinkedInAdapter) Submit(ctx context.Context, req core.SubmitRequest) (*core.SubmitResult, error) {
	var resp linkedinSubmitResponse
	err := a.client.doJSON(ctx, http.MethodPost, "/v2/applications", linkedinSubmitRequest{
		JobID:  req.Posting.ExternalID,
		Resume: string(req.Resume),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &core.SubmitResult{PlatformRef: resp.ApplicationID, SubmittedAt: resp.SubmittedAt}, nil
}

// CheckSession verifies the configured credentials are still accepted.
func (a *LinkedInAdapter) CheckSession(ctx context.Context) error {
	if err := a.client.doJSON(ctx, http.MethodGet, "/v2/me", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	return nil
}
