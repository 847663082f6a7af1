package matching

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/match"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/intelligence/embedding"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// fakeMatchRepo records upserts in memory, keyed by (applicant, project).
type fakeMatchRepo struct {
	mu            sync.Mutex
	records       map[string]*match.Match
	failOn        uuid.UUID // applicant whose writes fail
	failOnProject uuid.UUID // single project pairing whose write fails
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{records: make(map[string]*match.Match)}
}

func (f *fakeMatchRepo) key(m *match.Match) string {
	return m.ApplicantID.String() + "/" + m.ProjectID.String()
}

func (f *fakeMatchRepo) Upsert(_ context.Context, m *match.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ApplicantID == f.failOn || m.ProjectID == f.failOnProject {
		return errors.New(errors.CodeDatabaseError, "write refused")
	}
	f.records[f.key(m)] = m
	return nil
}

func (f *fakeMatchRepo) BatchUpsert(ctx context.Context, matches []*match.Match) (int, error) {
	written := 0
	var firstErr error
	for _, m := range matches {
		if err := f.Upsert(ctx, m); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written++
	}
	return written, firstErr
}

func (f *fakeMatchRepo) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]*match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*match.Match
	for _, m := range f.records {
		if m.ApplicantID == applicantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) DeleteByApplicant(_ context.Context, applicantID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, m := range f.records {
		if m.ApplicantID == applicantID {
			delete(f.records, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeMatchRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		HardFilterThreshold: 0.3,
		SimilarityWeight:    0.7,
		CompatibilityWeight: 0.3,
		AlgorithmVersion:    "v1-test",
	}
}

func newTestService(repo match.Repository, provider embedding.Provider) *Service {
	return NewService(repo, provider, nil, testMatchingConfig(), 4, logging.NewNopLogger(), nil)
}

func testApplicant(band string) *applicant.Applicant {
	return &applicant.Applicant{
		ID:            uuid.New(),
		HouseholdSize: 3,
		AMIBand:       band,
		Status:        applicant.StatusApproved,
	}
}

func testProject(aMin, aMax float64) *project.Project {
	return &project.Project{
		ID:        uuid.New(),
		Developer: "Dev Co",
		UnitCount: 50,
		AMIMin:    aMin,
		AMIMax:    aMax,
		Status:    project.StatusActive,
	}
}

func TestMatchApplicantToProjects_EmptyCandidates(t *testing.T) {
	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))

	ranked, err := svc.MatchApplicantToProjects(context.Background(), testApplicant("80%"), nil, 10)
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestMatchApplicantToProjects_NilApplicant(t *testing.T) {
	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))
	_, err := svc.MatchApplicantToProjects(context.Background(), nil, nil, 10)
	assert.Error(t, err)
}

func TestMatchApplicantToProjects_HardFilter(t *testing.T) {
	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))

	// 50 points away: compatibility exactly 0, excluded however similar.
	farProject := testProject(80, 120)
	// inside range: compatibility 1.0
	fitProject := testProject(60, 100)

	ranked, err := svc.MatchApplicantToProjects(
		context.Background(),
		testApplicant("30%"),
		[]*project.Project{farProject, fitProject},
		10,
	)
	require.NoError(t, err)
	for _, r := range ranked {
		assert.NotEqual(t, farProject.ID, r.ProjectID)
		assert.GreaterOrEqual(t, r.Breakdown.Compatibility, 0.3)
	}
}

func TestMatchApplicantToProjects_CombinedScoreScenario(t *testing.T) {
	a := testApplicant("80%")
	p := testProject(60, 100)

	// Pin both profiles to identical vectors → similarity 1, then check the
	// blend; a stubbed similarity of 0.5 is exercised via orthogonal pins.
	stub := embedding.NewStubProvider(2)
	stub.Fixed = map[string][]float32{
		embedding.ApplicantProfile(a): {1, 1},
		embedding.ProjectProfile(p):   {1, 0}, // cos = 1/√2 ≈ 0.7071
	}

	svc := newTestService(newFakeMatchRepo(), stub)
	ranked, err := svc.MatchApplicantToProjects(context.Background(), a, []*project.Project{p}, 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	r := ranked[0]
	assert.Equal(t, 1.0, r.Breakdown.Compatibility)
	assert.InDelta(t, 0.7071, r.Breakdown.Similarity, 1e-3)
	// 0.7*sim + 0.3*1.0
	assert.InDelta(t, 0.7*0.7071+0.3, r.Score, 1e-3)
	assert.True(t, r.Breakdown.AMIParsed)
	assert.False(t, r.Breakdown.SimilarityDegraded)
}

func TestMatchApplicantToProjects_DeterministicOrdering(t *testing.T) {
	a := testApplicant("80%")
	projects := make([]*project.Project, 6)
	for i := range projects {
		projects[i] = testProject(60, 100)
	}

	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(16))

	first, err := svc.MatchApplicantToProjects(context.Background(), a, projects, 0)
	require.NoError(t, err)
	require.Len(t, first, 6)

	for run := 0; run < 5; run++ {
		again, err := svc.MatchApplicantToProjects(context.Background(), a, projects, 0)
		require.NoError(t, err)
		assert.Equal(t, first, again, "identical inputs must rank identically")
	}

	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

func TestMatchApplicantToProjects_TieBreakByProjectID(t *testing.T) {
	a := testApplicant("80%")
	// Same profile text for every project (same developer, units, range) so
	// all similarities — and therefore scores — are equal.
	p1 := testProject(60, 100)
	p2 := testProject(60, 100)
	p3 := testProject(60, 100)

	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))
	ranked, err := svc.MatchApplicantToProjects(context.Background(), a, []*project.Project{p3, p1, p2}, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	for i := 1; i < len(ranked); i++ {
		require.Equal(t, ranked[i-1].Score, ranked[i].Score)
		assert.Less(t, ranked[i-1].ProjectID.String(), ranked[i].ProjectID.String())
	}
}

func TestMatchApplicantToProjects_TopNTruncates(t *testing.T) {
	a := testApplicant("80%")
	projects := []*project.Project{testProject(60, 100), testProject(60, 100), testProject(60, 100)}

	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))
	ranked, err := svc.MatchApplicantToProjects(context.Background(), a, projects, 2)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestMatchApplicantToProjects_UnparseableBandStillParticipates(t *testing.T) {
	a := testApplicant("unknown")
	p := testProject(60, 100)

	svc := newTestService(newFakeMatchRepo(), embedding.NewStubProvider(8))
	ranked, err := svc.MatchApplicantToProjects(context.Background(), a, []*project.Project{p}, 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	// neutral 0.5 clears the 0.3 hard filter and is flagged
	assert.Equal(t, 0.5, ranked[0].Breakdown.Compatibility)
	assert.False(t, ranked[0].Breakdown.AMIParsed)
}

func TestMatchApplicantToProjects_DegradedProviderScoresOnCompatibility(t *testing.T) {
	a := testApplicant("80%")
	p := testProject(60, 100)

	stub := embedding.NewStubProvider(8)
	stub.Err = errors.New(errors.CodeEmbeddingUnavailable, "provider down")

	svc := newTestService(newFakeMatchRepo(), stub)
	ranked, err := svc.MatchApplicantToProjects(context.Background(), a, []*project.Project{p}, 1)
	require.NoError(t, err, "provider failure must not abort the run")
	require.Len(t, ranked, 1)

	assert.True(t, ranked[0].Breakdown.SimilarityDegraded)
	assert.Equal(t, 0.0, ranked[0].Breakdown.Similarity)
	// only the compatibility term remains: 0.3 * 1.0
	assert.InDelta(t, 0.3, ranked[0].Score, 1e-9)
}

func TestCreateMatchesForApplicant_PersistsAllSurvivors(t *testing.T) {
	repo := newFakeMatchRepo()
	svc := newTestService(repo, embedding.NewStubProvider(8))

	a := testApplicant("80%")
	projects := []*project.Project{
		testProject(60, 100),
		testProject(70, 110),
		testProject(130, 180), // distance exactly 50 → filtered out
	}

	records, err := svc.CreateMatchesForApplicant(context.Background(), a, projects)
	require.NoError(t, err)
	assert.Len(t, records, 2, "no topN truncation on persistence")
	assert.Equal(t, 2, repo.count())

	for _, m := range records {
		assert.Equal(t, a.ID, m.ApplicantID)
		assert.Equal(t, "v1-test", m.AlgorithmVersion)
		assert.False(t, m.CreatedAt.IsZero())
		assert.GreaterOrEqual(t, m.Score, 0.0)
		assert.LessOrEqual(t, m.Score, 1.0)
	}
}

func TestCreateMatchesForApplicant_RescoreUpserts(t *testing.T) {
	repo := newFakeMatchRepo()
	svc := newTestService(repo, embedding.NewStubProvider(8))

	a := testApplicant("80%")
	projects := []*project.Project{testProject(60, 100)}

	_, err := svc.CreateMatchesForApplicant(context.Background(), a, projects)
	require.NoError(t, err)
	_, err = svc.CreateMatchesForApplicant(context.Background(), a, projects)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.count(), "re-scoring a pair must not duplicate")
}

func TestCreateMatchesForApplicant_PersistFailureSurfaced(t *testing.T) {
	repo := newFakeMatchRepo()
	a := testApplicant("80%")
	repo.failOn = a.ID

	svc := newTestService(repo, embedding.NewStubProvider(8))
	_, err := svc.CreateMatchesForApplicant(context.Background(), a, []*project.Project{testProject(60, 100)})
	assert.True(t, errors.IsCode(err, errors.CodeMatchPersistFailed))
}

func TestCreateMatchesForApplicant_OneRefusedWriteKeepsSiblings(t *testing.T) {
	repo := newFakeMatchRepo()
	a := testApplicant("80%")
	projects := []*project.Project{
		testProject(60, 100),
		testProject(70, 110),
		testProject(80, 120),
	}
	repo.failOnProject = projects[1].ID

	svc := newTestService(repo, embedding.NewStubProvider(8))
	_, err := svc.CreateMatchesForApplicant(context.Background(), a, projects)

	assert.True(t, errors.IsCode(err, errors.CodeMatchPersistFailed))
	assert.Equal(t, 2, repo.count(), "writes after the refused record must still land")
}
