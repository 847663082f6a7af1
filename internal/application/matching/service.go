// Package matching orchestrates the compatibility and similarity scorers
// into ranked match lists and persisted match records.
package matching

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/match"
	scoring "github.com/openhaven/matchgrid/internal/domain/matching"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/prometheus"
	"github.com/openhaven/matchgrid/internal/intelligence/embedding"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// EventPublisher is the slice of the Kafka producer the service needs.
// A nil publisher disables event emission.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
}

// RankedMatch is one scored applicant-project pairing in a ranked list.
type RankedMatch struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Score     float64         `json:"score"`
	Breakdown match.Breakdown `json:"breakdown"`
}

// Service is the matching engine.  Candidate lists passed in are treated as
// immutable snapshots; the service never mutates caller-owned records.
type Service struct {
	matches   match.Repository
	provider  embedding.Provider
	publisher EventPublisher
	cfg       config.MatchingConfig
	workers   int
	logger    logging.Logger
	metrics   *prometheus.Metrics
}

// NewService wires the matching engine.  publisher and metrics may be nil.
func NewService(
	matches match.Repository,
	provider embedding.Provider,
	publisher EventPublisher,
	cfg config.MatchingConfig,
	workers int,
	logger logging.Logger,
	metrics *prometheus.Metrics,
) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		matches:   matches,
		provider:  provider,
		publisher: publisher,
		cfg:       cfg,
		workers:   workers,
		logger:    logger.Named("matching"),
		metrics:   metrics,
	}
}

// scoreCandidates runs the scoring pipeline for one applicant against every
// candidate project and returns the survivors ranked.  The applicant's
// profile is embedded at most once, and only when at least one candidate
// survives the compatibility hard filter.
func (s *Service) scoreCandidates(ctx context.Context, a *applicant.Applicant, candidates []*project.Project) ([]RankedMatch, error) {
	if a == nil {
		return nil, errors.New(errors.CodeInvalidParam, "applicant must not be nil")
	}

	type survivor struct {
		p         *project.Project
		compat    float64
		amiParsed bool
	}
	survivors := make([]survivor, 0, len(candidates))
	for _, p := range candidates {
		if p == nil {
			continue
		}
		compat, parsed := scoring.ScoreAMI(a.AMIBand, p.AMIMin, p.AMIMax)
		if compat < s.cfg.HardFilterThreshold {
			continue
		}
		survivors = append(survivors, survivor{p: p, compat: compat, amiParsed: parsed})
	}
	if len(survivors) == 0 {
		return []RankedMatch{}, nil
	}

	applicantVec, applicantDegraded := embedding.SafeEmbed(ctx, s.provider, embedding.ApplicantProfile(a), s.logger)
	if applicantDegraded && s.metrics != nil {
		s.metrics.EmbeddingDegraded.Inc()
	}

	ranked := make([]RankedMatch, 0, len(survivors))
	for _, sv := range survivors {
		projectVec, projectDegraded := embedding.SafeEmbed(ctx, s.provider, embedding.ProjectProfile(sv.p), s.logger)
		if projectDegraded && s.metrics != nil {
			s.metrics.EmbeddingDegraded.Inc()
		}

		sim := scoring.ClampSimilarity(scoring.CosineSimilarity(applicantVec, projectVec))
		degraded := applicantDegraded || projectDegraded

		breakdown := match.Breakdown{
			Compatibility:       sv.compat,
			Similarity:          sim,
			CompatibilityWeight: s.cfg.CompatibilityWeight,
			SimilarityWeight:    s.cfg.SimilarityWeight,
			AMIParsed:           sv.amiParsed,
			SimilarityDegraded:  degraded,
		}
		ranked = append(ranked, RankedMatch{
			ProjectID: sv.p.ID,
			Score:     scoring.CombineScores(sim, sv.compat, s.cfg.SimilarityWeight, s.cfg.CompatibilityWeight),
			Breakdown: breakdown,
		})
	}

	// Descending by score, ties broken by project id ascending so identical
	// inputs always rank identically.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return bytes.Compare(ranked[i].ProjectID[:], ranked[j].ProjectID[:]) < 0
	})
	return ranked, nil
}

// MatchApplicantToProjects ranks the candidate projects for one applicant
// and returns the first topN.  A non-positive topN returns the full ranked
// list.  An empty candidate list yields an empty (non-nil) result.
func (s *Service) MatchApplicantToProjects(ctx context.Context, a *applicant.Applicant, candidates []*project.Project, topN int) ([]RankedMatch, error) {
	start := time.Now()
	ranked, err := s.scoreCandidates(ctx, a, candidates)
	if err != nil {
		if s.metrics != nil {
			s.metrics.MatchRunsTotal.WithLabelValues("single", "error").Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MatchRunsTotal.WithLabelValues("single", "ok").Inc()
		s.metrics.MatchRunDuration.Observe(time.Since(start).Seconds())
	}

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// CreateMatchesForApplicant scores the applicant against every candidate
// and persists one match record per survivor — ranking is a presentation
// concern, so persistence is never truncated.  The repository's upsert
// contract replaces any stale records from a previous run.  A persistence
// failure is surfaced but does not roll back sibling writes.
func (s *Service) CreateMatchesForApplicant(ctx context.Context, a *applicant.Applicant, candidates []*project.Project) ([]*match.Match, error) {
	ranked, err := s.scoreCandidates(ctx, a, candidates)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := make([]*match.Match, 0, len(ranked))
	for _, r := range ranked {
		records = append(records, &match.Match{
			ID:               uuid.New(),
			ApplicantID:      a.ID,
			ProjectID:        r.ProjectID,
			Score:            r.Score,
			Breakdown:        r.Breakdown,
			AlgorithmVersion: s.cfg.AlgorithmVersion,
			CreatedAt:        now,
		})
	}
	if len(records) == 0 {
		return []*match.Match{}, nil
	}

	written, err := s.matches.BatchUpsert(ctx, records)
	if s.metrics != nil {
		s.metrics.MatchesCreated.Add(float64(written))
	}
	if err != nil {
		s.logger.Warn("partial match persistence",
			logging.String("applicant_id", a.ID.String()),
			logging.Int("written", written),
			logging.Int("attempted", len(records)),
		)
		return nil, errors.Wrap(err, errors.CodeMatchPersistFailed, "failed to persist matches")
	}

	s.publishMatchEvents(ctx, records)

	s.logger.Info("matches created",
		logging.String("applicant_id", a.ID.String()),
		logging.Int("count", written),
	)
	return records, nil
}

// publishMatchEvents emits one MatchCreated event per record, best-effort.
func (s *Service) publishMatchEvents(ctx context.Context, records []*match.Match) {
	if s.publisher == nil {
		return
	}
	for _, m := range records {
		event := kafkaMatchCreated(m)
		if err := s.publisher.Publish(ctx, topicMatchCreated, m.ApplicantID.String(), event); err != nil {
			s.logger.Warn("match event publish failed", logging.Err(err))
			return
		}
	}
}
