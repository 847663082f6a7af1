package heatmap

import (
	"sort"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/geo"
	scoring "github.com/openhaven/matchgrid/internal/domain/matching"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// Record is one geolocated input to spatial aggregation.  Applicants and
// projects are both reduced to this shape so the aggregator does not care
// which side of the market it is binning.
type Record struct {
	Location geo.Point
	// Magnitude is the record's weight in a cell: 1 per applicant, unit
	// count per project.
	Magnitude float64
	// AMIValue participates in the per-cell mean only when AMIKnown.
	AMIValue float64
	AMIKnown bool
	// Size is household size for applicants, unit count for projects.
	Size float64
}

// Cell is one populated hex cell.  Cells with no records are never emitted.
type Cell struct {
	ID        geo.CellID
	Center    geo.Point
	Count     int
	Magnitude float64
	// MeanAMI averages only the records whose AMI was parseable;
	// AMISamples says how many that was.  Zero samples leaves MeanAMI 0.
	MeanAMI    float64
	AMISamples int
	// MeanSize is the mean household size (demand) or unit count (supply)
	// over all records in the cell.
	MeanSize float64
}

// Aggregation is the result of binning one record set over one viewport.
type Aggregation struct {
	Bounds   geo.Bounds
	CellSize float64
	Cells    []Cell
}

// CellIndex returns the aggregation's cells keyed by ID.
func (a *Aggregation) CellIndex() map[geo.CellID]Cell {
	idx := make(map[geo.CellID]Cell, len(a.Cells))
	for _, c := range a.Cells {
		idx[c.ID] = c
	}
	return idx
}

// ApplicantRecords converts applicants to aggregation records.  Each
// applicant weighs 1; an unparseable AMI band is carried but excluded from
// cell AMI means.
func ApplicantRecords(applicants []*applicant.Applicant) []Record {
	records := make([]Record, 0, len(applicants))
	for _, a := range applicants {
		if a == nil {
			continue
		}
		ami, ok := scoring.ParseAMIBand(a.AMIBand)
		records = append(records, Record{
			Location:  a.Location,
			Magnitude: 1,
			AMIValue:  ami,
			AMIKnown:  ok,
			Size:      float64(a.HouseholdSize),
		})
	}
	return records
}

// ProjectRecords converts projects to aggregation records.  A project's
// magnitude is its unit count and its AMI value is the midpoint of its
// accepted range.
func ProjectRecords(projects []*project.Project) []Record {
	records := make([]Record, 0, len(projects))
	for _, p := range projects {
		if p == nil {
			continue
		}
		records = append(records, Record{
			Location:  p.Location,
			Magnitude: float64(p.UnitCount),
			AMIValue:  (p.AMIMin + p.AMIMax) / 2,
			AMIKnown:  p.AMIMax > 0,
			Size:      float64(p.UnitCount),
		})
	}
	return records
}

// ResolveCellSize picks the cell size for a viewport: an explicit positive
// hint wins, zero defers to the resolution ladder, and either way the
// result is clamped to the configured range.  Negative hints are rejected.
func ResolveCellSize(bounds geo.Bounds, hint float64, cfg config.HeatmapConfig) (float64, error) {
	if hint < 0 {
		return 0, errors.New(errors.CodeInvalidCellSize, "cell size must be positive")
	}
	size := hint
	if size == 0 {
		size = geo.ResolutionForBounds(bounds)
	}
	return geo.ClampCellSize(size, cfg.MinCellSizeMeters, cfg.MaxCellSizeMeters), nil
}

// Aggregate bins records into hex cells at the given resolution.  Records
// outside the bounds' strict interior are dropped; cells nobody landed in
// are omitted.  Output order is deterministic (ascending cell ID).
func Aggregate(records []Record, bounds geo.Bounds, cellSize float64) (*Aggregation, error) {
	if cellSize <= 0 {
		return nil, errors.New(errors.CodeInvalidCellSize, "cell size must be positive")
	}

	type bucket struct {
		count      int
		magnitude  float64
		amiSum     float64
		amiSamples int
		sizeSum    float64
	}
	buckets := make(map[geo.CellID]*bucket)

	for _, r := range records {
		if !bounds.Contains(r.Location) {
			continue
		}
		id := geo.CellIDForPoint(r.Location, cellSize)
		b := buckets[id]
		if b == nil {
			b = &bucket{}
			buckets[id] = b
		}
		b.count++
		b.magnitude += r.Magnitude
		b.sizeSum += r.Size
		if r.AMIKnown {
			b.amiSum += r.AMIValue
			b.amiSamples++
		}
	}

	cells := make([]Cell, 0, len(buckets))
	for id, b := range buckets {
		center, err := geo.CellCenter(id)
		if err != nil {
			return nil, err
		}
		c := Cell{
			ID:         id,
			Center:     center,
			Count:      b.count,
			Magnitude:  b.magnitude,
			AMISamples: b.amiSamples,
			MeanSize:   b.sizeSum / float64(b.count),
		}
		if b.amiSamples > 0 {
			c.MeanAMI = b.amiSum / float64(b.amiSamples)
		}
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })

	return &Aggregation{Bounds: bounds, CellSize: cellSize, Cells: cells}, nil
}
