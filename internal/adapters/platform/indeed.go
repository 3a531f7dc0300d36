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

// IndeedAdapter speaks the Indeed jobs API. Search results page by opaque
// cursor: each response carries the token for the next page, empty at the end.
type IndeedAdapter struct {
	client   *restClient
	pageSize int
}

// IndeedOptions configure an IndeedAdapter.
type IndeedOptions struct {
	BaseURL   string
	AuthToken string
	PageSize  int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewIndeedAdapter constructs an Indeed portal adapter.
func NewIndeedAdapter(opts IndeedOptions) *IndeedAdapter {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	return &IndeedAdapter{
		client: newRESTClient(restClientOptions{
			Platform:  model.PlatformIndeed,
			BaseURL:   opts.BaseURL,
			AuthToken: opts.AuthToken,
			Timeout:   opts.Timeout,
			Logger:    opts.Logger,
		}),
		pageSize: pageSize,
	}
}

// Platform returns the portal identifier.
func (a *IndeedAdapter) Platform() model.Platform { return model.PlatformIndeed }

type indeedSearchResponse struct {
	NextCursor string `json:"nextCursor"`
	Results    []struct {
		JobKey   string `json:"jobkey"`
		Title    string `json:"jobtitle"`
		Company  string `json:"company"`
		Snippet  string `json:"snippet"`
		URL      string `json:"url"`
		Location string `json:"formattedLocation"`
		Salary   string `json:"formattedRelativeSalary"`
	} `json:"results"`
}

// indeedPager pages by cursor. A failed fetch keeps the cursor, so retrying
// Next resumes where the last good page ended.
type indeedPager struct {
	adapter *IndeedAdapter
	query   url.Values

	mu     sync.Mutex
	cursor string
	done   bool
}

// Search returns a cursor-based pager over matching postings.
func (a *IndeedAdapter) Search(_ context.Context, criteria model.SearchCriteria) (core.SearchPager, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("validate criteria: %w", err)
	}

	q := url.Values{}
	q.Set("q", strings.Join(criteria.Titles, " "))
	if len(criteria.Locations) > 0 {
		q.Set("l", criteria.Locations[0])
	}
	limit := criteria.PageSize
	if limit <= 0 {
		limit = a.pageSize
	}
	q.Set("limit", strconv.Itoa(limit))

	return &indeedPager{adapter: a, query: q}, nil
}

// Next fetches the next page, returning (nil, nil) once the cursor runs out.
func (p *indeedPager) Next(ctx context.Context) ([]*model.JobPosting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return nil, nil
	}

	q := p.query
	if p.cursor != "" {
		q.Set("cursor", p.cursor)
	}

	var resp indeedSearchResponse
	if err := p.adapter.client.doJSON(ctx, http.MethodGet, "/v1/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	p.cursor = resp.NextCursor
	if resp.NextCursor == "" {
		p.done = true
	}

	if len(resp.Results) == 0 {
		p.done = true
		return nil, nil
	}

	postings := make([]*model.JobPosting, 0, len(resp.Results))
	for _, j := range resp.Results {
		posting, err := wirePosting{
			ExternalID:  j.JobKey,
			Title:       j.Title,
			Company:     j.Company,
			Description: j.Snippet,
			URL:         j.URL,
			Location:    j.Location,
			SalaryRange: j.Salary,
		}.toModel(model.PlatformIndeed)
		if err != nil {
			continue
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

type indeedDetailResponse struct {
	JobKey      string `json:"jobkey"`
	Title       string `json:"jobtitle"`
	Company     string `json:"company"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Location    string `json:"formattedLocation"`
	Salary      string `json:"formattedRelativeSalary"`
}

// FetchDetail fetches and normalizes one posting by its portal key.
func (a *IndeedAdapter) FetchDetail(ctx context.Context, externalID string) (*model.JobPosting, error) {
	var resp indeedDetailResponse
	if err := a.client.doJSON(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(externalID), nil, &resp); err != nil {
		return nil, err
	}
	return wirePosting{
		ExternalID:  resp.JobKey,
		Title:       resp.Title,
		Company:     resp.Company,
		Description: resp.Description,
		URL:         resp.URL,
		Location:    resp.Location,
		SalaryRange: resp.Salary,
	}.toModel(model.PlatformIndeed)
}

type indeedSubmitRequest struct {
	JobKey      string `json:"jobkey"`
	ResumeBody  string `json:"resumeBody"`
	ContentType string `json:"contentType"`
}

type indeedSubmitResponse struct {
	ConfirmationID string    `json:"confirmationId"`
	AcceptedAt     time.Time `json:"acceptedAt"`
}

// Submit submits one application. Failures come back classified.
func (a *IndeedAdapter) Submit(ctx context.Context, req core.SubmitRequest) (*core.SubmitResult, error) {
	var resp indeedSubmitResponse
	err := a.client.doJSON(ctx, http.MethodPost, "/v1/applications", indeedSubmitRequest{
		JobKey:      req.Posting.ExternalID,
		ResumeBody:  string(req.Resume),
		ContentType: "application/json",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &core.SubmitResult{PlatformRef: resp.ConfirmationID, SubmittedAt: resp.AcceptedAt}, nil
}

// CheckSession verifies the configured credentials are still accepted.
func (a *IndeedAdapter) CheckSession(ctx context.Context) error {
	if err := a.client.doJSON(ctx, http.MethodGet, "/v1/account", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	return nil
}
