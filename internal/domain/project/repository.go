package project

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

// Repository is the read-only persistence contract for projects.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, filter Filter) ([]*Project, error)
}
