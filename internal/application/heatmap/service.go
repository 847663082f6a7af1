package heatmap

import (
	"context"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/geo"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/prometheus"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// Service generates heatmaps from the live applicant and project sets.
type Service struct {
	applicants applicant.Repository
	projects   project.Repository
	cfg        config.HeatmapConfig
	logger     logging.Logger
	metrics    *prometheus.Metrics
}

// NewService wires the heatmap generator.  metrics may be nil.
func NewService(
	applicants applicant.Repository,
	projects project.Repository,
	cfg config.HeatmapConfig,
	logger logging.Logger,
	metrics *prometheus.Metrics,
) *Service {
	return &Service{
		applicants: applicants,
		projects:   projects,
		cfg:        cfg,
		logger:     logger.Named("heatmap"),
		metrics:    metrics,
	}
}

// Generate produces the GeoJSON heatmap for one viewport.  cellSizeHint of
// zero lets the resolution ladder pick a cell size from the viewport
// diagonal.  Gap mode aggregates both sides at the same resolution and
// joins them cell by cell.
func (s *Service) Generate(ctx context.Context, bounds geo.Bounds, mode Mode, cellSizeHint float64) (*geojson.FeatureCollection, error) {
	start := time.Now()

	cellSize, err := ResolveCellSize(bounds, cellSizeHint, s.cfg)
	if err != nil {
		s.observe(mode, "invalid", 0)
		return nil, err
	}

	var fc *geojson.FeatureCollection
	switch mode {
	case ModeDemand:
		agg, aggErr := s.aggregateDemand(ctx, bounds, cellSize)
		if aggErr != nil {
			s.observe(mode, "error", 0)
			return nil, aggErr
		}
		fc, err = Render(agg, ModeDemand)
	case ModeSupply:
		agg, aggErr := s.aggregateSupply(ctx, bounds, cellSize)
		if aggErr != nil {
			s.observe(mode, "error", 0)
			return nil, aggErr
		}
		fc, err = Render(agg, ModeSupply)
	case ModeGap:
		demand, aggErr := s.aggregateDemand(ctx, bounds, cellSize)
		if aggErr != nil {
			s.observe(mode, "error", 0)
			return nil, aggErr
		}
		supply, aggErr := s.aggregateSupply(ctx, bounds, cellSize)
		if aggErr != nil {
			s.observe(mode, "error", 0)
			return nil, aggErr
		}
		fc, err = RenderGap(demand, supply)
	default:
		err = errors.Newf(errors.CodeInvalidMode, "unknown heatmap mode %q", mode)
	}
	if err != nil {
		s.observe(mode, "error", 0)
		return nil, err
	}

	s.observe(mode, "ok", len(fc.Features))
	s.logger.Debug("heatmap generated",
		logging.String("mode", string(mode)),
		logging.Float64("cell_size_meters", cellSize),
		logging.Int("features", len(fc.Features)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return fc, nil
}

func (s *Service) aggregateDemand(ctx context.Context, bounds geo.Bounds, cellSize float64) (*Aggregation, error) {
	applicants, err := s.applicants.List(ctx, applicant.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "listing applicants for heatmap")
	}
	return Aggregate(ApplicantRecords(applicants), bounds, cellSize)
}

func (s *Service) aggregateSupply(ctx context.Context, bounds geo.Bounds, cellSize float64) (*Aggregation, error) {
	projects, err := s.projects.List(ctx, project.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "listing projects for heatmap")
	}
	return Aggregate(ProjectRecords(projects), bounds, cellSize)
}

func (s *Service) observe(mode Mode, outcome string, features int) {
	if s.metrics == nil {
		return
	}
	s.metrics.HeatmapRequestsTotal.WithLabelValues(string(mode), outcome).Inc()
	if outcome == "ok" {
		s.metrics.HeatmapCellCount.Observe(float64(features))
	}
}
