// Package repositories provides the PostgreSQL implementations of the
// domain repository interfaces.
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

const applicantColumns = `
	id, household_size, ami_band, preferences, lat, lon,
	status, created_at, updated_at`

// ApplicantRepository reads applicants for matching and aggregation.  The
// external intake service owns writes to this table.
type ApplicantRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewApplicantRepository builds an ApplicantRepository over a pgx pool.
func NewApplicantRepository(pool *pgxpool.Pool, logger logging.Logger) *ApplicantRepository {
	return &ApplicantRepository{pool: pool, logger: logger.Named("applicant_repo")}
}

// GetByID loads a single applicant.
func (r *ApplicantRepository) GetByID(ctx context.Context, id uuid.UUID) (*applicant.Applicant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id)

	a, err := scanApplicant(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Newf(errors.CodeApplicantNotFound, "applicant %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "loading applicant")
	}
	return a, nil
}

// List returns applicants matching the filter, newest first.
func (r *ApplicantRepository) List(ctx context.Context, filter applicant.Filter) ([]*applicant.Applicant, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`SELECT ` + applicantColumns + ` FROM applicants`)
	if filter.Status != "" {
		args = append(args, filter.Status)
		sb.WriteString(` WHERE status = $1`)
	}
	sb.WriteString(` ORDER BY created_at DESC, id`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(` LIMIT $` + itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(` OFFSET $` + itoa(len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "listing applicants")
	}
	defer rows.Close()

	var out []*applicant.Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scanning applicant row")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterating applicants")
	}
	return out, nil
}

func scanApplicant(row pgx.Row) (*applicant.Applicant, error) {
	var (
		a         applicant.Applicant
		prefsJSON []byte
	)
	err := row.Scan(
		&a.ID, &a.HouseholdSize, &a.AMIBand, &prefsJSON,
		&a.Location.Lat, &a.Location.Lon,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &a.Preferences); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "decoding applicant preferences")
		}
	}
	return &a, nil
}
