package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data/pgxutil"
	"github.com/applyforge/applyforge/internal/domain/model"
)

// RecordRepoConfig holds configuration options for the record repository.
type RecordRepoConfig struct {
	// ClaimLease bounds how long a record claimed by ListDue stays invisible
	// to other workers before it becomes claimable again.
	ClaimLease   time.Duration
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// RecordRepo provides database operations for application records. The
// transition history is append-only and authoritative; the record row holds
// derived columns updated in the same transaction as each append.
type RecordRepo struct {
	DB           *sql.DB
	claimLease   time.Duration
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewRecordRepo creates a new RecordRepo instance with the given database
// connection and configuration.
func NewRecordRepo(db *sql.DB, cfg RecordRepoConfig) *RecordRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	lease := cfg.ClaimLease
	if lease <= 0 {
		lease = 5 * time.Minute
	}

	return &RecordRepo{
		DB:           db,
		claimLease:   lease,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const recordColumns = `
  id,
  resume_id,
  job_id,
  platform,
  state,
  version,
  match_score,
  optimized_resume,
  attempt_count,
  platform_ref,
  priority,
  due_at,
  last_reason,
  created_at,
  updated_at
`

func scanRecord(row interface{ Scan(...any) error }) (*model.ApplicationRecord, error) {
	var (
		rec        model.ApplicationRecord
		matchScore sql.NullInt64
		optimized  []byte
		ref        sql.NullString
	)
	err := row.Scan(
		&rec.ID,
		&rec.ResumeID,
		&rec.JobID,
		&rec.Platform,
		&rec.State,
		&rec.Version,
		&matchScore,
		&optimized,
		&rec.AttemptCount,
		&ref,
		&rec.Priority,
		&rec.DueAt,
		&rec.LastReason,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if matchScore.Valid {
		score := int(matchScore.Int64)
		rec.MatchScore = &score
	}
	if len(optimized) > 0 {
		rec.OptimizedResume = optimized
	}
	if ref.Valid {
		rec.PlatformRef = &ref.String
	}
	return &rec, nil
}

// Create inserts the record for a (resume, job) pair together with its initial
// discovered transition. When the pair already exists (either row-level via the
// unique pair index or detected by the deterministic id), the stored record is
// returned unchanged so concurrent enqueues converge on one row.
func (r *RecordRepo) Create(ctx context.Context, req *model.CreateRecordRequest) (*model.ApplicationRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate create request: %w", err)
	}

	id := model.RecordIdentity(req.ResumeID, req.JobID)
	now := r.timeProvider.Now()

	var created *model.ApplicationRecord
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO application_records
				(id, resume_id, job_id, platform, state, version, priority, due_at, last_reason, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $8, $9, $9)
			RETURNING `+recordColumns,
			id, req.ResumeID, req.JobID, req.Platform, model.StateDiscovered,
			req.Priority, now, model.ReasonDiscovered, now,
		)
		rec, err := scanRecord(row)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO application_transitions
				(record_id, seq, from_state, to_state, reason, causal_id, occurred_at)
			VALUES ($1, 1, $2, $2, $3, $4, $5)`,
			id, model.StateDiscovered, model.ReasonDiscovered, req.CausalID, now,
		)
		if err != nil {
			return fmt.Errorf("insert initial transition: %w", err)
		}

		created = rec
		return nil
	}})
	if err == nil {
		return created, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("create application record: %w", err)
	}

	// The pair already exists: return the stored record.
	existing, getErr := r.getByPair(ctx, req.ResumeID, req.JobID)
	if getErr != nil {
		return nil, fmt.Errorf("load existing record for pair: %w", getErr)
	}
	if r.logger != nil {
		r.logger.DebugContext(ctx, "duplicate pair enqueue ignored",
			"record_id", existing.ID, "resume_id", req.ResumeID, "job_id", req.JobID)
	}
	return existing, nil
}

func (r *RecordRepo) getByPair(ctx context.Context, resumeID, jobID string) (*model.ApplicationRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM application_records WHERE resume_id = $1 AND job_id = $2`,
		resumeID, jobID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// GetByID returns the record without its transition history.
func (r *RecordRepo) GetByID(ctx context.Context, id string) (*model.ApplicationRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM application_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application record: %w", err)
	}
	return rec, nil
}

// GetWithHistory returns the record including its full ordered history.
func (r *RecordRepo) GetWithHistory(ctx context.Context, id string) (*model.ApplicationRecord, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT seq, from_state, to_state, reason, causal_id, note, occurred_at
			FROM application_transitions
			WHERE record_id = $1
			ORDER BY seq ASC`, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		rec.History, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Transition])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query transition history: %w", err)
	}
	return rec, nil
}

// AppendTransition appends one history entry and updates the record's derived
// columns in the same transaction. A stored version differing from
// ExpectedVersion fails with core.ErrConflict; a duplicate
// (from, to, causal id) triple is a no-op returning the stored record.
func (r *RecordRepo) AppendTransition(ctx context.Context, params core.AppendTransitionParams) (*model.ApplicationRecord, error) {
	t := params.Transition
	if t.From == "" || t.To == "" || t.Reason == "" || strings.TrimSpace(t.CausalID) == "" {
		return nil, ErrTransitionRequired
	}

	// Idempotent re-delivery check outside the tx: the common duplicate case
	// never contends on the row.
	if dup, err := r.findDuplicate(ctx, params.RecordID, t); err != nil {
		return nil, err
	} else if dup {
		return r.GetByID(ctx, params.RecordID)
	}

	now := r.timeProvider.Now()
	occurredAt := t.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	var updated *model.ApplicationRecord
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE application_records SET
				state            = $3,
				version          = version + 1,
				last_reason      = $4,
				match_score      = COALESCE($5, match_score),
				optimized_resume = COALESCE($6, optimized_resume),
				platform_ref     = COALESCE($7, platform_ref),
				due_at           = COALESCE($8, due_at),
				attempt_count    = attempt_count + $9,
				claimed_until    = NULL,
				updated_at       = $10
			WHERE id = $1 AND version = $2
			RETURNING `+recordColumns,
			params.RecordID, params.ExpectedVersion, t.To, t.Reason,
			nullableInt(params.MatchScore), nullableBytes(params.OptimizedResume),
			nullableString(params.PlatformRef), nullableTime(params.DueAt),
			params.AttemptDelta, now,
		)
		rec, err := scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			return r.classifyMissedUpdate(ctx, tx, params.RecordID)
		}
		if err != nil {
			return fmt.Errorf("update record row: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO application_transitions
				(record_id, seq, from_state, to_state, reason, causal_id, note, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			params.RecordID, rec.Version, t.From, t.To, t.Reason, t.CausalID, t.Note, occurredAt,
		)
		if err != nil {
			return fmt.Errorf("insert transition: %w", err)
		}

		updated = rec
		return nil
	}})
	if err == nil {
		return updated, nil
	}
	if isUniqueViolation(err) {
		// A concurrent writer appended the same triple first. The effect the
		// caller wanted is already durable.
		return r.GetByID(ctx, params.RecordID)
	}
	return nil, err
}

func (r *RecordRepo) findDuplicate(ctx context.Context, recordID string, t model.Transition) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM application_transitions
			WHERE record_id = $1 AND from_state = $2 AND to_state = $3 AND causal_id = $4
		)`, recordID, t.From, t.To, t.CausalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate transition: %w", err)
	}
	return exists, nil
}

// classifyMissedUpdate distinguishes "record gone" from "version raced".
func (r *RecordRepo) classifyMissedUpdate(ctx context.Context, tx *sql.Tx, recordID string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM application_records WHERE id = $1)`, recordID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check record existence: %w", err)
	}
	if !exists {
		return ErrRecordNotFound
	}
	return core.ErrConflict
}

// Reschedule pushes the record's due time (and optionally attempt counter)
// without touching the state machine. Transient in-place retries use this so
// the append-only history records transitions, not waiting.
func (r *RecordRepo) Reschedule(ctx context.Context, params core.RescheduleParams) (*model.ApplicationRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE application_records SET
			due_at        = $3,
			attempt_count = attempt_count + $4,
			claimed_until = NULL,
			updated_at    = $5
		WHERE id = $1 AND version = $2
		RETURNING `+recordColumns,
		params.RecordID, params.ExpectedVersion, params.DueAt,
		params.AttemptDelta, r.timeProvider.Now(),
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing record from a version race.
		if _, getErr := r.GetByID(ctx, params.RecordID); getErr != nil {
			return nil, getErr
		}
		return nil, core.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("reschedule record: %w", err)
	}
	return rec, nil
}

// ListDue claims and returns records whose due time has passed and whose state
// has a pending automated action. FOR UPDATE SKIP LOCKED plus the claim lease
// keep concurrent workers from dispatching the same record twice.
func (r *RecordRepo) ListDue(ctx context.Context, params core.ListDueParams) ([]*model.ApplicationRecord, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	now := r.timeProvider.Now()

	rows, err := r.DB.QueryContext(ctx, `
		UPDATE application_records SET claimed_until = $4
		WHERE id IN (
			SELECT id FROM application_records
			WHERE platform = $1
			  AND due_at <= $2
			  AND (claimed_until IS NULL OR claimed_until < $5)
			  AND (
			        state IN ('discovered', 'analyzed', 'optimized', 'approved')
			     OR (state = 'pending_review' AND last_reason IN ('rate_limited', 'network_timeout'))
			  )
			ORDER BY priority DESC, due_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+recordColumns,
		params.Platform, params.Before, limit, now.Add(r.claimLease), now,
	)
	if err != nil {
		return nil, fmt.Errorf("claim due records: %w", err)
	}
	defer rows.Close()

	var records []*model.ApplicationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due records: %w", err)
	}
	return records, nil
}

// RecoverStaleSubmitting sweeps records stuck in submitting since before the
// cutoff into pending review, appending a submission_outcome_unknown entry to
// each record's history. A submission interrupted by a crash leaves no
// outcome transition, and submitting is not a claimable state; without the
// sweep such records would stay invisible forever.
func (r *RecordRepo) RecoverStaleSubmitting(ctx context.Context, before time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	now := r.timeProvider.Now()

	recovered := 0
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, version FROM application_records
			WHERE state = $1 AND updated_at < $2
			ORDER BY updated_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED`,
			model.StateSubmitting, before, limit,
		)
		if err != nil {
			return fmt.Errorf("select stale submitting records: %w", err)
		}
		type stale struct {
			id      string
			version int
		}
		var stranded []stale
		for rows.Next() {
			var s stale
			if err := rows.Scan(&s.id, &s.version); err != nil {
				rows.Close()
				return fmt.Errorf("scan stale record: %w", err)
			}
			stranded = append(stranded, s)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate stale records: %w", err)
		}

		for _, s := range stranded {
			if _, err := tx.ExecContext(ctx, `
				UPDATE application_records SET
					state         = $2,
					version       = version + 1,
					last_reason   = $3,
					due_at        = $4,
					claimed_until = NULL,
					updated_at    = $4
				WHERE id = $1`,
				s.id, model.StatePendingReview, model.ReasonSubmissionOutcomeUnknown, now,
			); err != nil {
				return fmt.Errorf("park stale record %s: %w", s.id, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO application_transitions
					(record_id, seq, from_state, to_state, reason, causal_id, note, occurred_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				s.id, s.version+1, model.StateSubmitting, model.StatePendingReview,
				model.ReasonSubmissionOutcomeUnknown, fmt.Sprintf("recover:%s:%d", s.id, s.version),
				"submission interrupted before its outcome was recorded", now,
			); err != nil {
				return fmt.Errorf("append recovery transition for %s: %w", s.id, err)
			}
			recovered++
		}
		return nil
	}})
	if err != nil {
		return 0, err
	}

	if recovered > 0 && r.logger != nil {
		r.logger.WarnContext(ctx, "stale submitting records escalated to review", "count", recovered)
	}
	return recovered, nil
}

// ListByState returns records in the given state, oldest first.
func (r *RecordRepo) ListByState(ctx context.Context, state model.State, limit int) ([]*model.ApplicationRecord, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("invalid state %q", state)
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM application_records
		 WHERE state = $1 ORDER BY updated_at ASC LIMIT $2`,
		state, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list records by state: %w", err)
	}
	defer rows.Close()

	var records []*model.ApplicationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Stats returns per-state record counts plus rolling submission counts derived
// from the transition history.
func (r *RecordRepo) Stats(ctx context.Context) (*model.RecordStats, error) {
	stats := &model.RecordStats{}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM application_records GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("query state counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			state model.State
			count int
		)
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		switch state {
		case model.StateDiscovered:
			stats.Discovered = count
		case model.StateAnalyzed:
			stats.Analyzed = count
		case model.StateOptimized:
			stats.Optimized = count
		case model.StatePendingReview:
			stats.PendingReview = count
		case model.StateApproved:
			stats.Approved = count
		case model.StateSubmitting:
			stats.Submitting = count
		case model.StateSubmitted:
			stats.Submitted = count
		case model.StateRejected:
			stats.Rejected = count
		case model.StateDeclined:
			stats.Declined = count
		case model.StateFailed:
			stats.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}

	now := r.timeProvider.Now()
	err = r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE occurred_at >= $1),
			COUNT(*) FILTER (WHERE occurred_at >= $2)
		FROM application_transitions
		WHERE to_state = 'submitted'`,
		now.AddDate(0, 0, -7), now.AddDate(0, 0, -30),
	).Scan(&stats.SubmittedLast7Days, &stats.SubmittedLast30Days)
	if err != nil {
		return nil, fmt.Errorf("query submission counts: %w", err)
	}

	return stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullableTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func nullableBytes(v []byte) any {
	if len(v) == 0 {
		return nil
	}
	return []byte(v)
}
