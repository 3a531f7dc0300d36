package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/applyforge/applyforge/internal/data/pgxutil"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// PostingRepo provides database operations for job postings. Postings are
// versioned: re-analysis writes a new version and keeps the old one for audit.
type PostingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// PostingRepoConfig holds configuration options for the posting repository.
type PostingRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewPostingRepo creates a new PostingRepo instance.
func NewPostingRepo(db *sql.DB, cfg PostingRepoConfig) *PostingRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &PostingRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const postingColumns = `
  id,
  version,
  platform,
  external_id,
  title,
  company,
  description,
  url,
  location,
  salary_range,
  requirements,
  analyzed_at,
  created_at
`

func scanPosting(row interface{ Scan(...any) error }) (*model.JobPosting, error) {
	var (
		p           model.JobPosting
		externalID  sql.NullString
		url         sql.NullString
		location    sql.NullString
		salary      sql.NullString
		reqs        []byte
		analyzedAt  sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Version, &p.Platform, &externalID, &p.Title, &p.Company,
		&p.Description, &url, &location, &salary, &reqs, &analyzedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ExternalID = externalID.String
	p.URL = url.String
	p.Location = location.String
	p.SalaryRange = salary.String
	if len(reqs) > 0 {
		if err := json.Unmarshal(reqs, &p.Requirements); err != nil {
			return nil, fmt.Errorf("decode requirements: %w", err)
		}
	}
	if analyzedAt.Valid {
		p.AnalyzedAt = &analyzedAt.Time
	}
	return &p, nil
}

// Upsert stores a fetched posting keyed by its content identity. When the
// identity already exists the stored latest version is returned unchanged.
func (r *PostingRepo) Upsert(ctx context.Context, posting *model.JobPosting) (*model.JobPosting, error) {
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("validate posting: %w", err)
	}

	id := posting.Identity()
	now := r.timeProvider.Now()

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO job_postings
			(id, version, platform, external_id, title, company, description, url, location, salary_range, created_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id, version) DO NOTHING`,
		id, posting.Platform, emptyToNull(posting.ExternalID), posting.Title,
		posting.Company, posting.Description, emptyToNull(posting.URL),
		emptyToNull(posting.Location), emptyToNull(posting.SalaryRange), now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert posting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 && r.logger != nil {
		r.logger.DebugContext(ctx, "posting already known", "posting_id", id)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns the latest version of the posting.
func (r *PostingRepo) GetByID(ctx context.Context, id string) (*model.JobPosting, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM job_postings
		 WHERE id = $1 ORDER BY version DESC LIMIT 1`, id)
	p, err := scanPosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get posting: %w", err)
	}
	return p, nil
}

// SaveAnalysis attaches extracted requirements to the posting. A first
// analysis updates version 1 in place; re-analysis of an already analyzed
// posting inserts a new version so the prior analysis stays auditable.
func (r *PostingRepo) SaveAnalysis(ctx context.Context, id string, reqs model.JobRequirements) (*model.JobPosting, error) {
	payload, err := json.Marshal(reqs)
	if err != nil {
		return nil, fmt.Errorf("encode requirements: %w", err)
	}
	now := r.timeProvider.Now()

	var saved *model.JobPosting
	err = pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+postingColumns+` FROM job_postings
			 WHERE id = $1 ORDER BY version DESC LIMIT 1
			 FOR UPDATE`, id)
		latest, err := scanPosting(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostingNotFound
		}
		if err != nil {
			return fmt.Errorf("lock latest posting version: %w", err)
		}

		if latest.AnalyzedAt == nil {
			row = tx.QueryRowContext(ctx, `
				UPDATE job_postings SET requirements = $3, analyzed_at = $4
				WHERE id = $1 AND version = $2
				RETURNING `+postingColumns,
				id, latest.Version, payload, now)
		} else {
			row = tx.QueryRowContext(ctx, `
				INSERT INTO job_postings
					(id, version, platform, external_id, title, company, description,
					 url, location, salary_range, requirements, analyzed_at, created_at)
				SELECT id, $2, platform, external_id, title, company, description,
					   url, location, salary_range, $3, $4, created_at
				FROM job_postings WHERE id = $1 AND version = $5
				RETURNING `+postingColumns,
				id, latest.Version+1, payload, now, latest.Version)
		}
		saved, err = scanPosting(row)
		if err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
		return nil
	}})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func emptyToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
