package model

import (
	"errors"
	"strings"
	"time"
)

// JobPosting is a normalized posting fetched from a platform.
// Identity is (platform, external reference id); when the portal provides no
// stable reference id, identity falls back to a content hash of
// title+company+description. A posting is never mutated once analysis has
// completed; re-analysis creates a new version and retains the old row.
type JobPosting struct {
	ID           string          `json:"id"                      db:"id"`
	Platform     Platform        `json:"platform"                db:"platform"`
	ExternalID   string          `json:"external_id,omitempty"   db:"external_id"`
	Title        string          `json:"title"                   db:"title"`
	Company      string          `json:"company"                 db:"company"`
	Description  string          `json:"description"             db:"description"`
	URL          string          `json:"url,omitempty"           db:"url"`
	Location     string          `json:"location,omitempty"      db:"location"`
	SalaryRange  string          `json:"salary_range,omitempty"  db:"salary_range"`
	Requirements JobRequirements `json:"requirements"            db:"requirements"`
	Version      int             `json:"version"                 db:"version"`
	AnalyzedAt   *time.Time      `json:"analyzed_at,omitempty"   db:"analyzed_at"`
	CreatedAt    time.Time       `json:"created_at"              db:"created_at"`
}

// JobRequirements is the structured requirement set extracted by analysis.
type JobRequirements struct {
	Skills           []string `json:"skills,omitempty"`
	Seniority        string   `json:"seniority,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Analyzed reports whether analysis has completed for this posting version.
func (p *JobPosting) Analyzed() bool {
	return p.AnalyzedAt != nil
}

// Identity derives the stable posting identity per the dedup contract.
func (p *JobPosting) Identity() string {
	return PostingIdentity(p.Platform, p.ExternalID, p.Title, p.Company, p.Description)
}

// PostingIdentity computes a posting identity from its identifying parts.
// Prefers (platform, external id); falls back to a content hash.
func PostingIdentity(platform Platform, externalID, title, company, description string) string {
	if strings.TrimSpace(externalID) != "" {
		return string(platform) + ":" + strings.TrimSpace(externalID)
	}
	return string(platform) + ":" + contentHash(title+"\x00"+company+"\x00"+description)
}

// Validate checks the minimum fields the engine needs from an adapter.
func (p *JobPosting) Validate() error {
	if !p.Platform.Valid() {
		return errors.New("invalid platform")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// SearchCriteria describes what to look for on a platform.
type SearchCriteria struct {
	Titles          []string `json:"titles"`
	Skills          []string `json:"skills,omitempty"`
	Locations       []string `json:"locations,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	// PageSize bounds how many postings a single search page may return.
	PageSize int `json:"page_size,omitempty"`
}

// Validate validates the SearchCriteria fields.
func (c *SearchCriteria) Validate() error {
	if len(c.Titles) == 0 {
		return errors.New("at least one title is required")
	}
	if c.PageSize < 0 {
		return errors.New("page size must be >= 0")
	}
	return nil
}
