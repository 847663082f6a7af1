package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

const projectColumns = `
	id, developer, unit_count, ami_min, ami_max, delivery_estimate,
	metadata, lat, lon, status, created_at, updated_at`

// ProjectRepository reads housing projects for matching and aggregation.
type ProjectRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewProjectRepository builds a ProjectRepository over a pgx pool.
func NewProjectRepository(pool *pgxpool.Pool, logger logging.Logger) *ProjectRepository {
	return &ProjectRepository{pool: pool, logger: logger.Named("project_repo")}
}

// GetByID loads a single project.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)

	p, err := scanProject(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Newf(errors.CodeProjectNotFound, "project %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "loading project")
	}
	return p, nil
}

// List returns projects matching the filter, newest first.
func (r *ProjectRepository) List(ctx context.Context, filter project.Filter) ([]*project.Project, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`SELECT ` + projectColumns + ` FROM projects`)
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
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "listing projects")
	}
	defer rows.Close()

	var out []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scanning project row")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterating projects")
	}
	return out, nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		p        project.Project
		metaJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.Developer, &p.UnitCount, &p.AMIMin, &p.AMIMax, &p.DeliveryEstimate,
		&metaJSON, &p.Location.Lat, &p.Location.Lon,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &p.Metadata); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "decoding project metadata")
		}
	}
	return &p, nil
}
