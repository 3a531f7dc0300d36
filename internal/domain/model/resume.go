package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ResumeProfile is the immutable structured content parsed from a source
// document. The engine only reads it; ownership stays with the caller.
// Identity is a content hash, so two byte-identical resumes share one identity.
type ResumeProfile struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone,omitempty"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	RawText    string            `json:"raw_text"`
}

// ExperienceEntry is a single position in the resume's ordered work history.
type ExperienceEntry struct {
	Title     string     `json:"title"`
	Company   string     `json:"company"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Summary   string     `json:"summary,omitempty"`
}

// EducationEntry is a single entry in the resume's ordered education history.
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// Identity returns the stable content-hash identity for the profile.
// Field order is fixed by the struct, so equal content yields equal identity.
func (r *ResumeProfile) Identity() string {
	b, err := json.Marshal(r)
	if err != nil {
		// Marshal of a plain struct cannot fail; fall back to the raw text.
		return contentHash(r.RawText)
	}
	return contentHash(string(b))
}

// contentHash returns the hex-encoded SHA-256 of the input.
func contentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// OptimizationLevel selects how aggressively the gateway tailors a resume.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type OptimizationLevel string

const (
	// OptimizationConservative keeps wording close to the source resume.
	OptimizationConservative OptimizationLevel = "conservative"
	// OptimizationBalanced is the default tailoring level.
	OptimizationBalanced OptimizationLevel = "balanced"
	// OptimizationAggressive reorders and rewrites sections freely.
	OptimizationAggressive OptimizationLevel = "aggressive"
)

// Valid returns true if the OptimizationLevel is known.
func (l OptimizationLevel) Valid() bool {
	return l == OptimizationConservative || l == OptimizationBalanced || l == OptimizationAggressive
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (l *OptimizationLevel) UnmarshalText(text []byte) error {
	v := OptimizationLevel(strings.ToLower(strings.TrimSpace(string(text))))
	if v.Valid() {
		*l = v
		return nil
	}
	return fmt.Errorf("invalid OptimizationLevel: %q", string(text))
}

// OptimizedResume is the gateway's tailored output for one (resume, posting) pair.
type OptimizedResume struct {
	Content       string   `json:"content"`
	MatchScore    int      `json:"match_score"`
	MissingSkills []string `json:"missing_skills,omitempty"`
}

// Validate checks gateway output before it is persisted on a record.
func (o *OptimizedResume) Validate() error {
	if strings.TrimSpace(o.Content) == "" {
		return fmt.Errorf("optimized resume content is empty")
	}
	if o.MatchScore < 0 || o.MatchScore > 100 {
		return fmt.Errorf("match score %d out of range [0,100]", o.MatchScore)
	}
	return nil
}
