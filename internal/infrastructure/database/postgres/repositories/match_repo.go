package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openhaven/matchgrid/internal/domain/match"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

const upsertMatchSQL = `
	INSERT INTO matches (
		id, applicant_id, project_id, score, breakdown,
		algorithm_version, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT (applicant_id, project_id) DO UPDATE SET
		score             = EXCLUDED.score,
		breakdown         = EXCLUDED.breakdown,
		algorithm_version = EXCLUDED.algorithm_version,
		created_at        = EXCLUDED.created_at`

// MatchRepository persists match records.  One row exists per
// (applicant, project) pair; re-scoring replaces it.
type MatchRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewMatchRepository builds a MatchRepository over a pgx pool.
func NewMatchRepository(pool *pgxpool.Pool, logger logging.Logger) *MatchRepository {
	return &MatchRepository{pool: pool, logger: logger.Named("match_repo")}
}

// Upsert writes one match record.
func (r *MatchRepository) Upsert(ctx context.Context, m *match.Match) error {
	breakdownJSON, err := json.Marshal(m.Breakdown)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "encoding match breakdown")
	}

	_, err = r.pool.Exec(ctx, upsertMatchSQL,
		m.ID, m.ApplicantID, m.ProjectID, m.Score, breakdownJSON,
		m.AlgorithmVersion, m.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "upserting match")
	}
	return nil
}

// BatchUpsert writes every match record, continuing past individual
// failures so one bad record cannot block or discard its siblings.  It
// returns how many rows landed and the first error encountered.
func (r *MatchRepository) BatchUpsert(ctx context.Context, matches []*match.Match) (int, error) {
	return upsertEach(ctx, matches, r.Upsert)
}

func upsertEach(ctx context.Context, matches []*match.Match, upsert func(context.Context, *match.Match) error) (int, error) {
	written := 0
	var firstErr error
	for _, m := range matches {
		if err := upsert(ctx, m); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written++
	}
	return written, firstErr
}

// ListByApplicant returns an applicant's matches, best first, ties broken
// by project id so pagination is stable.
func (r *MatchRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*match.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, applicant_id, project_id, score, breakdown,
		       algorithm_version, created_at
		FROM matches
		WHERE applicant_id = $1
		ORDER BY score DESC, project_id`, applicantID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "listing matches")
	}
	defer rows.Close()

	var out []*match.Match
	for rows.Next() {
		var (
			m             match.Match
			breakdownJSON []byte
		)
		if err := rows.Scan(&m.ID, &m.ApplicantID, &m.ProjectID, &m.Score,
			&breakdownJSON, &m.AlgorithmVersion, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scanning match row")
		}
		if err := json.Unmarshal(breakdownJSON, &m.Breakdown); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "decoding match breakdown")
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterating matches")
	}
	return out, nil
}

// DeleteByApplicant removes every match for an applicant, returning the
// number deleted.  Used when an applicant withdraws.
func (r *MatchRepository) DeleteByApplicant(ctx context.Context, applicantID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE applicant_id = $1`, applicantID)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDatabaseError, "deleting matches")
	}
	return tag.RowsAffected(), nil
}
