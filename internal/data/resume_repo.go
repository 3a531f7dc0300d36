package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// ErrResumeNotFound is returned when a resume profile is not found.
var ErrResumeNotFound = errors.New("resume profile not found")

// ResumeRepo stores immutable resume profiles keyed by their content identity.
type ResumeRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewResumeRepo creates a new ResumeRepo instance.
func NewResumeRepo(db *sql.DB, tp TimeProvider) *ResumeRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ResumeRepo{DB: db, timeProvider: tp}
}

// Put stores the profile under its content identity. Storing byte-identical
// content twice is a no-op returning the same identity.
func (r *ResumeRepo) Put(ctx context.Context, profile *model.ResumeProfile) (string, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("encode resume profile: %w", err)
	}

	id := profile.Identity()
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO resume_profiles (id, profile, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		id, payload, r.timeProvider.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("store resume profile: %w", err)
	}
	return id, nil
}

// Get returns the stored profile for the given identity.
func (r *ResumeRepo) Get(ctx context.Context, id string) (*model.ResumeProfile, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT profile FROM resume_profiles WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resume profile: %w", err)
	}

	var profile model.ResumeProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, fmt.Errorf("decode resume profile: %w", err)
	}
	return &profile, nil
}
