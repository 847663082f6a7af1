// Package project defines the housing development record as consumed by the
// matching and aggregation engines.  Projects are owned by the external CRUD
// layer; this engine treats them as read-only input.
package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhaven/matchgrid/internal/domain/geo"
)

// Status is the project's development phase in the external system.
type Status string

const (
	StatusPlanning     Status = "planning"
	StatusActive       Status = "active"
	StatusConstruction Status = "construction"
	StatusCompleted    Status = "completed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusConstruction, StatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the status label.
func (s Status) String() string { return string(s) }

// Project is an affordable housing development.  AMIMin and AMIMax bound the
// income bands the project accepts, as percentages of area median income;
// AMIMin <= AMIMax holds for well-formed records.
type Project struct {
	ID               uuid.UUID         `json:"id"`
	Developer        string            `json:"developer"`
	UnitCount        int               `json:"unit_count"`
	AMIMin           float64           `json:"ami_min"`
	AMIMax           float64           `json:"ami_max"`
	DeliveryEstimate string            `json:"delivery_estimate,omitempty"`
	Metadata         map[string]string `json:"metadata"`
	Location         geo.Point         `json:"location"`
	Status           Status            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
