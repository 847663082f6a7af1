package matching

import (
	"github.com/openhaven/matchgrid/internal/domain/match"
	"github.com/openhaven/matchgrid/internal/infrastructure/messaging/kafka"
)

const (
	topicMatchCreated      = kafka.TopicMatchCreated
	topicMatchRunCompleted = kafka.TopicMatchRunCompleted
)

func kafkaMatchCreated(m *match.Match) kafka.MatchCreatedEvent {
	return kafka.MatchCreatedEvent{
		MatchID:     m.ID,
		ApplicantID: m.ApplicantID,
		ProjectID:   m.ProjectID,
		Score:       m.Score,
		CreatedAt:   m.CreatedAt,
	}
}
