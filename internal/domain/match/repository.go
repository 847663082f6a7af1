package match

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the write-side persistence contract for match records.
// Upsert semantics on (applicant_id, project_id) are part of the contract:
// re-scoring an existing pair replaces the previous record instead of
// silently duplicating it.
type Repository interface {
	// Upsert writes m, replacing any existing record for the same
	// (applicant, project) pair.
	Upsert(ctx context.Context, m *Match) error

	// BatchUpsert writes every match, continuing past individual failures.
	// It returns the number of records written and the first error
	// encountered, if any.
	BatchUpsert(ctx context.Context, matches []*Match) (int, error)

	// ListByApplicant returns all current matches for an applicant, highest
	// score first.
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*Match, error)

	// DeleteByApplicant removes all matches for an applicant, used when the
	// external layer retires an applicant record.
	DeleteByApplicant(ctx context.Context, applicantID uuid.UUID) (int64, error)
}
