// Package testutil provides testing utilities and helpers for the applyforge engine.
package testutil

import (
	"time"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// RecordRequestBuilder provides a fluent interface for building
// CreateRecordRequest objects for testing.
type RecordRequestBuilder struct {
	req *model.CreateRecordRequest
}

// NewRecordRequest creates a new RecordRequestBuilder with sensible defaults.
func NewRecordRequest() *RecordRequestBuilder {
	return &RecordRequestBuilder{
		req: &model.CreateRecordRequest{
			ResumeID: "resume-1",
			JobID:    "linkedin:job-1",
			Platform: model.PlatformLinkedIn,
			Priority: 50,
			CausalID: "test:enqueue",
		},
	}
}

// WithResumeID sets the resume identity.
func (b *RecordRequestBuilder) WithResumeID(id string) *RecordRequestBuilder {
	b.req.ResumeID = id
	return b
}

// WithJobID sets the job posting identity.
func (b *RecordRequestBuilder) WithJobID(id string) *RecordRequestBuilder {
	b.req.JobID = id
	return b
}

// WithPlatform sets the platform.
func (b *RecordRequestBuilder) WithPlatform(p model.Platform) *RecordRequestBuilder {
	b.req.Platform = p
	return b
}

// WithPriority sets the scheduling priority.
func (b *RecordRequestBuilder) WithPriority(priority int) *RecordRequestBuilder {
	b.req.Priority = priority
	return b
}

// WithCausalID sets the causal id of the enqueue.
func (b *RecordRequestBuilder) WithCausalID(id string) *RecordRequestBuilder {
	b.req.CausalID = id
	return b
}

// Build returns the constructed CreateRecordRequest.
func (b *RecordRequestBuilder) Build() *model.CreateRecordRequest {
	req := *b.req
	return &req
}

// PostingBuilder provides a fluent interface for building JobPosting objects
// for testing. The identity is derived on Build.
type PostingBuilder struct {
	posting *model.JobPosting
}

// NewPosting creates a new PostingBuilder with sensible defaults.
func NewPosting() *PostingBuilder {
	return &PostingBuilder{
		posting: &model.JobPosting{
			Platform:    model.PlatformLinkedIn,
			ExternalID:  "job-1",
			Title:       "Senior Backend Engineer",
			Company:     "Example Corp",
			Description: "Design and build distributed systems in Go.",
			URL:         "https://example.com/jobs/job-1",
			Location:    "Remote",
			Version:     1,
		},
	}
}

// WithPlatform sets the platform.
func (b *PostingBuilder) WithPlatform(p model.Platform) *PostingBuilder {
	b.posting.Platform = p
	return b
}

// WithExternalID sets the portal's posting reference.
func (b *PostingBuilder) WithExternalID(id string) *PostingBuilder {
	b.posting.ExternalID = id
	return b
}

// WithTitle sets the posting title.
func (b *PostingBuilder) WithTitle(title string) *PostingBuilder {
	b.posting.Title = title
	return b
}

// WithCompany sets the company name.
func (b *PostingBuilder) WithCompany(company string) *PostingBuilder {
	b.posting.Company = company
	return b
}

// WithDescription sets the posting description.
func (b *PostingBuilder) WithDescription(description string) *PostingBuilder {
	b.posting.Description = description
	return b
}

// WithRequirements sets the extracted requirements and marks the posting analyzed.
func (b *PostingBuilder) WithRequirements(reqs model.JobRequirements) *PostingBuilder {
	b.posting.Requirements = reqs
	now := time.Now().UTC()
	b.posting.AnalyzedAt = &now
	return b
}

// Build returns the constructed JobPosting with its derived identity.
func (b *PostingBuilder) Build() *model.JobPosting {
	posting := *b.posting
	posting.ID = posting.Identity()
	return &posting
}

// ResumeBuilder provides a fluent interface for building ResumeProfile
// objects for testing.
type ResumeBuilder struct {
	profile *model.ResumeProfile
}

// NewResume creates a new ResumeBuilder with sensible defaults.
func NewResume() *ResumeBuilder {
	return &ResumeBuilder{
		profile: &model.ResumeProfile{
			Name:   "Alex Doe",
			Email:  "alex@example.com",
			Skills: []string{"go", "postgresql", "kubernetes"},
			Experience: []model.ExperienceEntry{
				{Title: "Backend Engineer", Company: "Example Corp"},
			},
			RawText: "Alex Doe. Backend engineer with Go and PostgreSQL experience.",
		},
	}
}

// WithName sets the candidate name.
func (b *ResumeBuilder) WithName(name string) *ResumeBuilder {
	b.profile.Name = name
	return b
}

// WithSkills sets the skill list.
func (b *ResumeBuilder) WithSkills(skills ...string) *ResumeBuilder {
	b.profile.Skills = skills
	return b
}

// WithRawText sets the raw resume text.
func (b *ResumeBuilder) WithRawText(text string) *ResumeBuilder {
	b.profile.RawText = text
	return b
}

// Build returns the constructed ResumeProfile.
func (b *ResumeBuilder) Build() *model.ResumeProfile {
	profile := *b.profile
	return &profile
}
