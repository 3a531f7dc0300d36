package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// DiscoveryOptions groups dependencies for DiscoveryService.
type DiscoveryOptions struct {
	Applications *ApplicationService                     // Required: record enqueueing
	Postings     core.PostingRepository                  // Required: posting persistence
	Governor     core.Governor                           // Required: search pacing
	Adapters     map[model.Platform]core.PlatformAdapter // Required: portal adapters
	Logger       *slog.Logger                            // Optional: structured logger
}

// DiscoveryService runs governed searches against the portals and enqueues
// one application record per newly discovered (resume, posting) pair. Pairs
// seen before are deduplicated by the persistence boundary, so re-running a
// search is harmless.
type DiscoveryService struct {
	apps     *ApplicationService
	postings core.PostingRepository
	governor core.Governor
	adapters map[model.Platform]core.PlatformAdapter
	logger   *slog.Logger
}

// NewDiscoveryService constructs a new DiscoveryService.
func NewDiscoveryService(opts DiscoveryOptions) (*DiscoveryService, error) {
	switch {
	case opts.Applications == nil:
		return nil, errors.New("ApplicationService is required")
	case opts.Postings == nil:
		return nil, errors.New("PostingRepository is required")
	case opts.Governor == nil:
		return nil, errors.New("Governor is required")
	case len(opts.Adapters) == 0:
		return nil, errors.New("at least one PlatformAdapter is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "discovery_service")
	}

	return &DiscoveryService{
		apps:     opts.Applications,
		postings: opts.Postings,
		governor: opts.Governor,
		adapters: opts.Adapters,
		logger:   logger,
	}, nil
}

// DiscoverResult summarizes one search run on one platform.
type DiscoverResult struct {
	Found    int `json:"found"`    // postings yielded by the portal
	Enqueued int `json:"enqueued"` // new records created (excludes deduplicated pairs)
}

// Discover searches one platform for the given resume and criteria, storing
// postings and enqueueing records as it pages. Each page fetch spends one
// search permit; starting the search is free since pagers are lazy. A denial
// after the first page ends the run early with the partial result, since
// already-yielded postings stay valid.
func (s *DiscoveryService) Discover(
	ctx context.Context,
	resumeID string,
	platform model.Platform,
	criteria model.SearchCriteria,
) (*DiscoverResult, error) {
	adapter, ok := s.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %s", platform)
	}
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("validate search criteria: %w", err)
	}

	pager, err := adapter.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("start search on %s: %w", platform, err)
	}

	result := &DiscoverResult{}
	for {
		if _, err := s.governor.Acquire(ctx, platform, model.PermissionSearch); err != nil {
			if errors.Is(err, core.ErrPermissionDenied) && result.Found > 0 {
				if s.logger != nil {
					s.logger.InfoContext(ctx, "search paused by governor",
						"platform", platform, "found", result.Found)
				}
				return result, nil
			}
			return result, fmt.Errorf("acquire search permission: %w", err)
		}

		page, err := pager.Next(ctx)
		if err != nil {
			// Already-yielded postings are kept; the caller may retry the
			// search later and resume from a fresh pager.
			return result, fmt.Errorf("fetch search page: %w", err)
		}
		if page == nil {
			return result, nil
		}

		for _, posting := range page {
			result.Found++
			if err := s.ingest(ctx, resumeID, posting, result); err != nil {
				if s.logger != nil {
					s.logger.WarnContext(ctx, "posting ingest failed",
						"platform", platform, "title", posting.Title, "error", err)
				}
			}
		}
	}
}

func (s *DiscoveryService) ingest(ctx context.Context, resumeID string, posting *model.JobPosting, result *DiscoverResult) error {
	stored, err := s.postings.Upsert(ctx, posting)
	if err != nil {
		return fmt.Errorf("store posting: %w", err)
	}

	rec, err := s.apps.Enqueue(ctx, &model.CreateRecordRequest{
		ResumeID: resumeID,
		JobID:    stored.ID,
		Platform: stored.Platform,
		CausalID: "discover:" + stored.ID,
	})
	if err != nil {
		return err
	}
	if rec.State == model.StateDiscovered && rec.Version == 1 {
		result.Enqueued++
	}
	return nil
}
