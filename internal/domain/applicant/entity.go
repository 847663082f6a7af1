// Package applicant defines the applicant household record as consumed by
// the matching and aggregation engines.  Applicants are owned by the
// external CRUD layer; this engine treats them as read-only input.
package applicant

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhaven/matchgrid/internal/domain/geo"
)

// Status is the applicant's review state in the external system.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusWaitlisted Status = "waitlisted"
	StatusRejected   Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusWaitlisted, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the status label.
func (s Status) String() string { return string(s) }

// Applicant is a household seeking affordable housing.
type Applicant struct {
	ID            uuid.UUID         `json:"id"`
	HouseholdSize int               `json:"household_size"`
	AMIBand       string            `json:"ami_band"` // e.g. "80%"
	Preferences   map[string]string `json:"preferences"`
	Location      geo.Point         `json:"location"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
