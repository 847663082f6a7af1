package matching

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/messaging/kafka"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/intelligence/embedding"
)

type capturedEvent struct {
	topic string
	key   string
	event interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{topic: topic, key: key, event: event})
	return nil
}

func (f *fakePublisher) byTopic(topic string) []capturedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []capturedEvent
	for _, e := range f.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// blockingProvider parks the first Embed call until released, letting tests
// cancel a batch while one applicant is mid-flight.
type blockingProvider struct {
	inner   embedding.Provider
	started chan struct{}
	release chan struct{}
	calls   atomic.Int64
}

func (b *blockingProvider) Dimensions() int { return b.inner.Dimensions() }

func (b *blockingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-b.release
	}
	return b.inner.Embed(ctx, text)
}

func TestBatchMatch_AllApplicantsProcessed(t *testing.T) {
	repo := newFakeMatchRepo()
	pub := &fakePublisher{}
	svc := NewService(repo, embedding.NewStubProvider(8), pub, testMatchingConfig(), 4, logging.NewNopLogger(), nil)

	applicants := []*applicant.Applicant{
		testApplicant("60%"),
		testApplicant("80%"),
		testApplicant("100%"),
	}
	projects := []*project.Project{testProject(60, 100), testProject(70, 110)}

	summary, err := svc.BatchMatch(context.Background(), applicants, projects)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ApplicantsProcessed)
	assert.Equal(t, 0, summary.ApplicantsFailed)
	assert.Equal(t, 6, summary.TotalMatchesCreated)
	assert.False(t, summary.Cancelled)
	assert.Equal(t, 6, repo.count())
}

func TestBatchMatch_OneFailureDoesNotAbort(t *testing.T) {
	repo := newFakeMatchRepo()
	applicants := []*applicant.Applicant{
		testApplicant("60%"),
		testApplicant("80%"),
		testApplicant("100%"),
	}
	repo.failOn = applicants[1].ID

	svc := newTestService(repo, embedding.NewStubProvider(8))
	summary, err := svc.BatchMatch(context.Background(), applicants, []*project.Project{testProject(60, 100)})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ApplicantsProcessed)
	assert.Equal(t, 1, summary.ApplicantsFailed)
	assert.Equal(t, 2, summary.TotalMatchesCreated)
}

func TestBatchMatch_NilApplicantCountedFailed(t *testing.T) {
	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))

	applicants := []*applicant.Applicant{testApplicant("80%"), nil}
	summary, err := svc.BatchMatch(context.Background(), applicants, []*project.Project{testProject(60, 100)})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ApplicantsProcessed)
	assert.Equal(t, 1, summary.ApplicantsFailed)
}

func TestBatchMatch_EmptyInputs(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewService(newFakeMatchRepo(), embedding.NewStubProvider(8), pub, testMatchingConfig(), 4, logging.NewNopLogger(), nil)

	summary, err := svc.BatchMatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.ApplicantsProcessed)
	assert.Zero(t, summary.TotalMatchesCreated)

	// the run still reports completion
	assert.Len(t, pub.byTopic(topicMatchRunCompleted), 1)
}

func TestBatchMatch_CancellationKeepsPartialResults(t *testing.T) {
	repo := newFakeMatchRepo()
	bp := &blockingProvider{
		inner:   embedding.NewStubProvider(8),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	pub := &fakePublisher{}
	svc := NewService(repo, bp, pub, testMatchingConfig(), 1, logging.NewNopLogger(), nil)

	applicants := []*applicant.Applicant{
		testApplicant("60%"),
		testApplicant("80%"),
		testApplicant("100%"),
	}
	projects := []*project.Project{testProject(60, 100)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan *BatchSummary, 1)
	go func() {
		summary, err := svc.BatchMatch(ctx, applicants, projects)
		require.NoError(t, err)
		done <- summary
	}()

	// Wait for the first applicant to be mid-flight, cancel the run, then
	// let it finish.
	select {
	case <-bp.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first applicant never started")
	}
	cancel()
	close(bp.release)

	var summary *BatchSummary
	select {
	case summary = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not drain after cancellation")
	}

	assert.True(t, summary.Cancelled)
	assert.Equal(t, 1, summary.ApplicantsProcessed, "in-flight applicant completes")
	assert.Less(t, summary.ApplicantsProcessed+summary.ApplicantsFailed, len(applicants))
	assert.Equal(t, summary.TotalMatchesCreated, repo.count(), "partial results are persisted")

	// cancelled runs still publish their completion event
	events := pub.byTopic(topicMatchRunCompleted)
	require.Len(t, events, 1)
	evt, ok := events[0].event.(kafka.MatchRunCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, summary.RunID, evt.RunID)
	assert.Equal(t, summary.ApplicantsProcessed, evt.ApplicantsProcessed)
}

func TestBatchMatch_PublishesPerMatchEvents(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewService(newFakeMatchRepo(), embedding.NewStubProvider(8), pub, testMatchingConfig(), 2, logging.NewNopLogger(), nil)

	applicants := []*applicant.Applicant{testApplicant("80%")}
	projects := []*project.Project{testProject(60, 100), testProject(70, 110)}

	summary, err := svc.BatchMatch(context.Background(), applicants, projects)
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalMatchesCreated)

	assert.Len(t, pub.byTopic(topicMatchCreated), 2)
	assert.Len(t, pub.byTopic(topicMatchRunCompleted), 1)
}
