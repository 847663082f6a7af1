package matching

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/messaging/kafka"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
)

// BatchSummary reports the outcome of one bulk matching run.  Counts cover
// only work that actually ran: a cancelled run reports the partial results
// of the applicants that completed before cancellation.
type BatchSummary struct {
	RunID               uuid.UUID `json:"run_id"`
	ApplicantsProcessed int       `json:"applicants_processed"`
	ApplicantsFailed    int       `json:"applicants_failed"`
	TotalMatchesCreated int       `json:"total_matches_created"`
	Cancelled           bool      `json:"cancelled,omitempty"`
}

// BatchMatch scores every applicant against the full project set and
// persists the resulting matches.  Applicant runs are independent and
// execute concurrently on a pool bounded by the configured worker count;
// the shared project slice is read-only, so the scoring phase needs no
// locking.
//
// One applicant's failure never aborts the batch: it is logged, counted in
// ApplicantsFailed, and skipped.  Cancelling ctx stops scheduling new
// applicants but lets in-flight ones finish, and the partial summary is
// still returned.
func (s *Service) BatchMatch(ctx context.Context, applicants []*applicant.Applicant, projects []*project.Project) (*BatchSummary, error) {
	runID := uuid.New()
	startedAt := time.Now().UTC()
	logger := s.logger.With(logging.String("run_id", runID.String()))

	var (
		processed atomic.Int64
		failed    atomic.Int64
		created   atomic.Int64
		cancelled bool
	)

	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	// In-flight applicants run to completion even after cancellation, so
	// work already scheduled is persisted and reported, not discarded.
	workCtx := context.WithoutCancel(ctx)

	for _, a := range applicants {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled while waiting for a worker slot: stop
			// scheduling, let in-flight tasks drain.
			cancelled = true
			break
		}

		wg.Add(1)
		go func(a *applicant.Applicant) {
			defer wg.Done()
			defer sem.Release(1)

			if a == nil {
				failed.Add(1)
				logger.Warn("skipping nil applicant record")
				return
			}

			records, err := s.CreateMatchesForApplicant(workCtx, a, projects)
			if err != nil {
				failed.Add(1)
				logger.Error("applicant scoring failed",
					logging.String("applicant_id", a.ID.String()),
					logging.Err(err),
				)
				return
			}
			processed.Add(1)
			created.Add(int64(len(records)))
		}(a)
	}

	wg.Wait()

	summary := &BatchSummary{
		RunID:               runID,
		ApplicantsProcessed: int(processed.Load()),
		ApplicantsFailed:    int(failed.Load()),
		TotalMatchesCreated: int(created.Load()),
		Cancelled:           cancelled,
	}

	if s.metrics != nil {
		outcome := "ok"
		if cancelled {
			outcome = "cancelled"
		}
		s.metrics.MatchRunsTotal.WithLabelValues("batch", outcome).Inc()
		s.metrics.BatchApplicants.WithLabelValues("ok").Add(float64(summary.ApplicantsProcessed))
		s.metrics.BatchApplicants.WithLabelValues("failed").Add(float64(summary.ApplicantsFailed))
	}

	if s.publisher != nil {
		event := kafka.MatchRunCompletedEvent{
			RunID:               runID,
			ApplicantsProcessed: summary.ApplicantsProcessed,
			ApplicantsFailed:    summary.ApplicantsFailed,
			MatchesCreated:      summary.TotalMatchesCreated,
			AlgorithmVersion:    s.cfg.AlgorithmVersion,
			StartedAt:           startedAt,
			CompletedAt:         time.Now().UTC(),
		}
		// Publish with a fresh context so a cancelled batch still reports.
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, topicMatchRunCompleted, runID.String(), event); err != nil {
			logger.Warn("batch event publish failed", logging.Err(err))
		}
	}

	logger.Info("batch match complete",
		logging.Int("processed", summary.ApplicantsProcessed),
		logging.Int("failed", summary.ApplicantsFailed),
		logging.Int("matches_created", summary.TotalMatchesCreated),
		logging.Bool("cancelled", cancelled),
	)
	return summary, nil
}
