// Package llm adapts a language model behind the engine's optimization and
// analysis ports. The model is an unreliable collaborator: every call is
// bounded by a timeout and malformed output degrades into a typed
// unavailability error, never a crash.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tmc/langchaingo/llms"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// GatewayOptions groups dependencies for Gateway.
type GatewayOptions struct {
	Model       llms.Model    // Required: backing language model
	CallTimeout time.Duration // Optional: per-call deadline, defaults to 60s
	Temperature float64       // Optional: sampling temperature
	Logger      *slog.Logger  // Optional: structured logger
}

// Gateway implements resume optimization and posting analysis on top of a
// langchaingo model.
type Gateway struct {
	model       llms.Model
	callTimeout time.Duration
	temperature float64
	logger      *slog.Logger
}

// NewGateway constructs a new Gateway.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	if opts.Model == nil {
		return nil, errors.New("language model is required")
	}

	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "llm_gateway")
	}

	return &Gateway{
		model:       opts.Model,
		callTimeout: timeout,
		temperature: opts.Temperature,
		logger:      logger,
	}, nil
}

const optimizePromptTemplate = `You tailor resumes to job postings. Respond with a single JSON object:
{"content": "<tailored resume text>", "match_score": <0-100 integer>}

Tailoring level: %s
Never invent experience the candidate does not have.

Job posting:
Title: %s
Company: %s
Description:
%s

Candidate resume:
%s`

type optimizeOutput struct {
	Content    string `json:"content"`
	MatchScore int    `json:"match_score"`
}

// Optimize produces a tailored resume for one (resume, posting) pair.
// Timeouts and unparseable model output both surface as
// core.ErrOptimizationUnavailable so the scheduler retries with backoff.
func (g *Gateway) Optimize(ctx context.Context, req core.OptimizeRequest) (*model.OptimizedResume, error) {
	if req.Resume == nil || req.Posting == nil {
		return nil, errors.New("resume and posting are required")
	}
	level := req.Level
	if !level.Valid() {
		level = model.OptimizationBalanced
	}

	prompt := fmt.Sprintf(optimizePromptTemplate,
		level, req.Posting.Title, req.Posting.Company, req.Posting.Description, req.Resume.RawText)

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	raw, err := llms.GenerateFromSinglePrompt(callCtx, g.model, prompt,
		llms.WithTemperature(g.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		if g.logger != nil {
			g.logger.WarnContext(ctx, "optimization call failed", "error", err)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrOptimizationUnavailable, err)
	}

	var out optimizeOutput
	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		if g.logger != nil {
			g.logger.WarnContext(ctx, "optimization output unparseable", "error", err)
		}
		return nil, fmt.Errorf("%w: decode model output: %w", core.ErrOptimizationUnavailable, err)
	}

	optimized := &model.OptimizedResume{
		Content:       out.Content,
		MatchScore:    out.MatchScore,
		MissingSkills: missingSkills(req.Resume, req.Posting),
	}
	if err := optimized.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrOptimizationUnavailable, err)
	}
	return optimized, nil
}

const analyzePromptTemplate = `Extract structured requirements from this job posting. Respond with a single JSON object:
{"skills": ["..."], "seniority": "<junior|mid|senior|staff|unknown>", "responsibilities": ["..."]}

Job posting:
%s`

// Analyze extracts the structured requirement set from posting text.
// Failures surface as core.ErrAnalysisUnavailable.
func (g *Gateway) Analyze(ctx context.Context, text string) (*model.JobRequirements, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("posting text is required")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	raw, err := llms.GenerateFromSinglePrompt(callCtx, g.model,
		fmt.Sprintf(analyzePromptTemplate, text),
		llms.WithTemperature(g.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		if g.logger != nil {
			g.logger.WarnContext(ctx, "analysis call failed", "error", err)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrAnalysisUnavailable, err)
	}

	var reqs model.JobRequirements
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reqs); err != nil {
		return nil, fmt.Errorf("%w: decode model output: %w", core.ErrAnalysisUnavailable, err)
	}
	return &reqs, nil
}

// missingSkills computes the posting skills absent from the resume,
// case-insensitively.
func missingSkills(resume *model.ResumeProfile, posting *model.JobPosting) []string {
	if len(posting.Requirements.Skills) == 0 {
		return nil
	}

	have := mapset.NewThreadUnsafeSet[string]()
	for _, s := range resume.Skills {
		have.Add(strings.ToLower(strings.TrimSpace(s)))
	}

	missing := make([]string, 0)
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, s := range posting.Requirements.Skills {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || have.Contains(key) || seen.Contains(key) {
			continue
		}
		seen.Add(key)
		missing = append(missing, s)
	}
	if len(missing) == 0 {
		return nil
	}
	return missing
}

// extractJSON trims any prose the model wrapped around the JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
