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

// DiceAdapter speaks the Dice jobs API. Search results page by page number:
// the response reports the page count up front.
type DiceAdapter struct {
	client   *restClient
	pageSize int
}

// DiceOptions configure a DiceAdapter.
type DiceOptions struct {
	BaseURL   string
	AuthToken string
	PageSize  int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewDiceAdapter constructs a Dice portal adapter.
func NewDiceAdapter(opts DiceOptions) *DiceAdapter {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	return &DiceAdapter{
		client: newRESTClient(restClientOptions{
			Platform:  model.PlatformDice,
			BaseURL:   opts.BaseURL,
			AuthToken: opts.AuthToken,
			Timeout:   opts.Timeout,
			Logger:    opts.Logger,
		}),
		pageSize: pageSize,
	}
}

// Platform returns the portal identifier.
func (a *DiceAdapter) Platform() model.Platform { return model.PlatformDice }

type diceSearchResponse struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Data       []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		CompanyName string `json:"companyName"`
		Summary     string `json:"summary"`
		DetailsURL  string `json:"detailsPageUrl"`
		JobLocation string `json:"jobLocation"`
		Salary      string `json:"salary"`
	} `json:"data"`
}

// dicePager pages by page number starting at 1. A failed fetch keeps the page
// counter, so retrying Next re-requests the same page.
type dicePager struct {
	adapter *DiceAdapter
	query   url.Values

	mu         sync.Mutex
	page       int
	totalPages int
	began      bool
}

// Search returns a page-number pager over matching postings.
func (a *DiceAdapter) Search(_ context.Context, criteria model.SearchCriteria) (core.SearchPager, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("validate criteria: %w", err)
	}

	q := url.Values{}
	q.Set("q", strings.Join(criteria.Titles, ","))
	if len(criteria.Skills) > 0 {
		q.Set("skills", strings.Join(criteria.Skills, ","))
	}
	if len(criteria.Locations) > 0 {
		q.Set("locations", strings.Join(criteria.Locations, "|"))
	}
	size := criteria.PageSize
	if size <= 0 {
		size = a.pageSize
	}
	q.Set("pageSize", strconv.Itoa(size))

	return &dicePager{adapter: a, query: q, page: 1}, nil
}

// Next fetches the next page, returning (nil, nil) after the last page.
func (p *dicePager) Next(ctx context.Context) ([]*model.JobPosting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.began && p.page > p.totalPages {
		return nil, nil
	}

	q := p.query
	q.Set("page", strconv.Itoa(p.page))

	var resp diceSearchResponse
	if err := p.adapter.client.doJSON(ctx, http.MethodGet, "/api/jobs/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	p.began = true
	p.totalPages = resp.TotalPages
	p.page++

	if len(resp.Data) == 0 {
		return nil, nil
	}

	postings := make([]*model.JobPosting, 0, len(resp.Data))
	for _, j := range resp.Data {
		posting, err := wirePosting{
			ExternalID:  j.ID,
			Title:       j.Title,
			Company:     j.CompanyName,
			Description: j.Summary,
			URL:         j.DetailsURL,
			Location:    j.JobLocation,
			SalaryRange: j.Salary,
		}.toModel(model.PlatformDice)
		if err != nil {
			continue
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

type diceDetailResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
	DetailsURL  string `json:"detailsPageUrl"`
	JobLocation string `json:"jobLocation"`
	Salary      string `json:"salary"`
}

// FetchDetail fetches and normalizes one posting by its portal id.
func (a *DiceAdapter) FetchDetail(ctx context.Context, externalID string) (*model.JobPosting, error) {
	var resp diceDetailResponse
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(externalID), nil, &resp); err != nil {
		return nil, err
	}
	return wirePosting{
		ExternalID:  resp.ID,
		Title:       resp.Title,
		Company:     resp.CompanyName,
		Description: resp.Description,
		URL:         resp.DetailsURL,
		Location:    resp.JobLocation,
		SalaryRange: resp.Salary,
	}.toModel(model.PlatformDice)
}

type diceSubmitRequest struct {
	JobID  string `json:"jobId"`
	Resume string `json:"resume"`
}

type diceSubmitResponse struct {
	ReceiptID   string    `json:"receiptId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submit submits one application. Failures come back classified.
func (a *DiceAdapter) Submit(ctx context.Context, req core.SubmitRequest) (*core.SubmitResult, error) {
	var resp diceSubmitResponse
	err := a.client.doJSON(ctx, http.MethodPost, "/api/applications", diceSubmitRequest{
		JobID:  req.Posting.ExternalID,
		Resume: string(req.Resume),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &core.SubmitResult{PlatformRef: resp.ReceiptID, SubmittedAt: resp.SubmittedAt}, nil
}

// CheckSession verifies the configured credentials are still accepted.
func (a *DiceAdapter) CheckSession(ctx context.Context) error {
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/profile", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	return nil
}
