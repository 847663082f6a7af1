package heatmap

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/geo"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

type fakeApplicantRepo struct {
	applicants []*applicant.Applicant
	err        error
}

func (f *fakeApplicantRepo) GetByID(_ context.Context, id uuid.UUID) (*applicant.Applicant, error) {
	for _, a := range f.applicants {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.NotFound("applicant " + id.String())
}

func (f *fakeApplicantRepo) List(_ context.Context, _ applicant.Filter) ([]*applicant.Applicant, error) {
	return f.applicants, f.err
}

type fakeProjectRepo struct {
	projects []*project.Project
	err      error
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.NotFound("project " + id.String())
}

func (f *fakeProjectRepo) List(_ context.Context, _ project.Filter) ([]*project.Project, error) {
	return f.projects, f.err
}

func heatmapConfig() config.HeatmapConfig {
	return config.HeatmapConfig{MinCellSizeMeters: 100, MaxCellSizeMeters: 10_000}
}

func newTestHeatmapService(applicants *fakeApplicantRepo, projects *fakeProjectRepo) *Service {
	return NewService(applicants, projects, heatmapConfig(), logging.NewNopLogger(), nil)
}

func sfApplicant(band string, lat, lon float64) *applicant.Applicant {
	return &applicant.Applicant{
		ID:       uuid.New(),
		AMIBand:  band,
		Location: geo.Point{Lat: lat, Lon: lon},
		Status:   applicant.StatusApproved,
	}
}

func TestGenerate_DemandMode(t *testing.T) {
	applicants := &fakeApplicantRepo{applicants: []*applicant.Applicant{
		sfApplicant("60%", 37.7749, -122.4194),
		sfApplicant("80%", 37.7749, -122.4194),
		sfApplicant("100%", 37.8044, -121.8500),
	}}
	svc := newTestHeatmapService(applicants, &fakeProjectRepo{})

	fc, err := svc.Generate(context.Background(), bayArea(t), ModeDemand, 1000)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)
}

func TestGenerate_GapMode(t *testing.T) {
	applicants := &fakeApplicantRepo{applicants: []*applicant.Applicant{
		sfApplicant("60%", 37.7749, -122.4194),
		sfApplicant("80%", 37.7749, -122.4194),
	}}
	projects := &fakeProjectRepo{projects: []*project.Project{{
		ID:        uuid.New(),
		UnitCount: 50,
		AMIMin:    60,
		AMIMax:    100,
		Location:  geo.Point{Lat: 37.7749, Lon: -122.4194},
	}}}
	svc := newTestHeatmapService(applicants, projects)

	fc, err := svc.Generate(context.Background(), bayArea(t), ModeGap, 1000)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	props := fc.Features[0].Properties
	assert.Equal(t, 2, props["demand_count"])
	assert.InDelta(t, 50.0, props["supply_magnitude"].(float64), 1e-9)
	assert.InDelta(t, -48.0, props["gap"].(float64), 1e-9)
}

func TestGenerate_InvalidMode(t *testing.T) {
	svc := newTestHeatmapService(&fakeApplicantRepo{}, &fakeProjectRepo{})
	_, err := svc.Generate(context.Background(), bayArea(t), Mode("thermal"), 0)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidMode))
}

func TestGenerate_NegativeCellSize(t *testing.T) {
	svc := newTestHeatmapService(&fakeApplicantRepo{}, &fakeProjectRepo{})
	_, err := svc.Generate(context.Background(), bayArea(t), ModeDemand, -100)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidCellSize))
}

func TestGenerate_RepositoryFailure(t *testing.T) {
	applicants := &fakeApplicantRepo{err: errors.New(errors.CodeDatabaseError, "connection refused")}
	svc := newTestHeatmapService(applicants, &fakeProjectRepo{})

	_, err := svc.Generate(context.Background(), bayArea(t), ModeDemand, 0)
	assert.True(t, errors.IsCode(err, errors.CodeDatabaseError))
}

func TestGenerate_EmptyDataset(t *testing.T) {
	svc := newTestHeatmapService(&fakeApplicantRepo{}, &fakeProjectRepo{})

	fc, err := svc.Generate(context.Background(), bayArea(t), ModeSupply, 0)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)

	meta := fc.ExtraMembers["metadata"].(map[string]interface{})
	assert.Equal(t, 0, meta["total_features"])
}
