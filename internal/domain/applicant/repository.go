package applicant

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a List call.  Zero values mean "no constraint".
type Filter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository is the read-only persistence contract for applicants.  The
// external CRUD layer owns writes; the engine only reads.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Applicant, error)
	List(ctx context.Context, filter Filter) ([]*Applicant, error)
}
