// Package kafka publishes engine lifecycle events for the surrounding
// platform (notifications, dashboards).  Publishing is best-effort: an
// unavailable broker never fails a match run.
package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Topic names, namespaced by the configured prefix at send time.
const (
	TopicMatchRunCompleted = "match.run.completed"
	TopicMatchCreated      = "match.created"
)

// MatchRunCompletedEvent is emitted once per batch run.
type MatchRunCompletedEvent struct {
	RunID               uuid.UUID `json:"run_id"`
	ApplicantsProcessed int       `json:"applicants_processed"`
	ApplicantsFailed    int       `json:"applicants_failed"`
	MatchesCreated      int       `json:"matches_created"`
	AlgorithmVersion    string    `json:"algorithm_version"`
	StartedAt           time.Time `json:"started_at"`
	CompletedAt         time.Time `json:"completed_at"`
}

// MatchCreatedEvent is emitted for each persisted match in a single-applicant
// run, keyed by applicant so consumers see one applicant's matches in order.
type MatchCreatedEvent struct {
	MatchID     uuid.UUID `json:"match_id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullTopic prepends the configured prefix to a topic name.
func FullTopic(prefix, topic string) string {
	if prefix == "" {
		return topic
	}
	return prefix + "." + topic
}
