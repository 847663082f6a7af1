// Package match defines the match record, the only entity this engine
// creates, together with its persistence contract.
package match

import (
	"time"

	"github.com/google/uuid"
)

// Breakdown records the component sub-scores behind a combined match score
// so that callers can distinguish a genuinely poor match from one whose
// similarity signal was unavailable.
type Breakdown struct {
	Compatibility       float64 `json:"compatibility"`
	Similarity          float64 `json:"similarity"`
	CompatibilityWeight float64 `json:"compatibility_weight"`
	SimilarityWeight    float64 `json:"similarity_weight"`

	// AMIParsed is false when the applicant's AMI band could not be parsed
	// and the neutral 0.5 compatibility fallback was applied.
	AMIParsed bool `json:"ami_parsed"`

	// SimilarityDegraded is true when the embedding provider failed and
	// similarity silently degraded to 0.
	SimilarityDegraded bool `json:"similarity_degraded"`
}

// Match links one applicant to one project with a combined score in [0, 1].
// Records are immutable once written; re-scoring a pair upserts on
// (applicant_id, project_id) rather than accumulating duplicates.
type Match struct {
	ID               uuid.UUID `json:"id"`
	ApplicantID      uuid.UUID `json:"applicant_id"`
	ProjectID        uuid.UUID `json:"project_id"`
	Score            float64   `json:"score"`
	Breakdown        Breakdown `json:"breakdown"`
	AlgorithmVersion string    `json:"algorithm_version"`
	CreatedAt        time.Time `json:"created_at"`
}
