package platform

import (
	"fmt"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// wirePosting is the common posting shape the portal clients decode into.
// Each portal names its fields differently on the wire; the per-portal
// response types convert into this before normalization.
type wirePosting struct {
	ExternalID  string
	Title       string
	Company     string
	Description string
	URL         string
	Location    string
	SalaryRange string
}

// toModel normalizes a wire posting into the engine's canonical form and
// assigns its stable identity.
func (w wirePosting) toModel(platform model.Platform) (*model.JobPosting, error) {
	p := &model.JobPosting{
		Platform:    platform,
		ExternalID:  w.ExternalID,
		Title:       w.Title,
		Company:     w.Company,
		Description: w.Description,
		URL:         w.URL,
		Location:    normalizeLocation(w.Location),
		SalaryRange: w.SalaryRange,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("malformed posting from %s: %w", platform, err)
	}
	p.ID = p.Identity()
	return p, nil
}
