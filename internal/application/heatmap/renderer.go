package heatmap

import (
	"github.com/paulmach/orb/geojson"

	"github.com/openhaven/matchgrid/internal/domain/geo"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// Mode selects which side of the market a heatmap shows.
type Mode string

const (
	ModeDemand Mode = "demand"
	ModeSupply Mode = "supply"
	ModeGap    Mode = "gap"
)

// ParseMode validates a heatmap mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDemand, ModeSupply, ModeGap:
		return Mode(s), nil
	default:
		return "", errors.Newf(errors.CodeInvalidMode, "unknown heatmap mode %q", s)
	}
}

// Render builds the GeoJSON heatmap for a single-sided aggregation.  Cell
// intensity is normalized against the viewport's maximum magnitude, so the
// extreme bucket is always relative to what is on screen.
func Render(agg *Aggregation, mode Mode) (*geojson.FeatureCollection, error) {
	if mode != ModeDemand && mode != ModeSupply {
		return nil, errors.Newf(errors.CodeInvalidMode, "mode %q is not renderable single-sided", mode)
	}

	maxMagnitude := 0.0
	for _, c := range agg.Cells {
		if c.Magnitude > maxMagnitude {
			maxMagnitude = c.Magnitude
		}
	}

	fc := geojson.NewFeatureCollection()
	for _, c := range agg.Cells {
		polygon, err := geo.CellPolygon(c.ID)
		if err != nil {
			return nil, err
		}

		intensity := 0.0
		if maxMagnitude > 0 {
			intensity = c.Magnitude / maxMagnitude
		}
		bucket, color := classifyIntensity(intensity)

		f := geojson.NewFeature(polygon)
		f.ID = string(c.ID)
		f.Properties = geojson.Properties{
			"cell_id":   string(c.ID),
			"count":     c.Count,
			"magnitude": c.Magnitude,
			"intensity": intensity,
			"bucket":    bucket,
			"color":     color,
			"mean_size": c.MeanSize,
		}
		if c.AMISamples > 0 {
			f.Properties["mean_ami"] = c.MeanAMI
		}
		fc.Append(f)
	}

	attachMetadata(fc, agg, mode, false)
	return fc, nil
}

// RenderGap builds the demand-minus-supply heatmap.  Cells are joined by
// ID; a demand cell with no supply counterpart is a full shortage, and a
// supply-only cell is pure surplus.  Both aggregations must share a
// resolution or the join is meaningless.
func RenderGap(demand, supply *Aggregation) (*geojson.FeatureCollection, error) {
	if demand.CellSize != supply.CellSize {
		return nil, errors.Newf(errors.CodeInvalidCellSize,
			"gap join requires one resolution, got %.0fm and %.0fm", demand.CellSize, supply.CellSize)
	}

	supplyIdx := supply.CellIndex()
	seen := make(map[geo.CellID]bool, len(demand.Cells))

	fc := geojson.NewFeatureCollection()

	appendGapFeature := func(id geo.CellID, demandCount int, supplyMagnitude float64) error {
		polygon, err := geo.CellPolygon(id)
		if err != nil {
			return err
		}
		gap := float64(demandCount) - supplyMagnitude
		denom := float64(demandCount)
		if denom < 1 {
			denom = 1
		}
		ratio := gap / denom
		bucket, color := classifyGap(ratio)

		f := geojson.NewFeature(polygon)
		f.ID = string(id)
		f.Properties = geojson.Properties{
			"cell_id":          string(id),
			"demand_count":     demandCount,
			"supply_magnitude": supplyMagnitude,
			"gap":              gap,
			"gap_ratio":        ratio,
			"bucket":           bucket,
			"color":            color,
		}
		fc.Append(f)
		return nil
	}

	for _, d := range demand.Cells {
		seen[d.ID] = true
		supplyMagnitude := 0.0
		if s, ok := supplyIdx[d.ID]; ok {
			supplyMagnitude = s.Magnitude
		}
		if err := appendGapFeature(d.ID, d.Count, supplyMagnitude); err != nil {
			return nil, err
		}
	}
	for _, s := range supply.Cells {
		if seen[s.ID] {
			continue
		}
		if err := appendGapFeature(s.ID, 0, s.Magnitude); err != nil {
			return nil, err
		}
	}

	attachMetadata(fc, demand, ModeGap, true)
	return fc, nil
}

func attachMetadata(fc *geojson.FeatureCollection, agg *Aggregation, mode Mode, diverging bool) {
	fc.ExtraMembers = geojson.Properties{
		"metadata": map[string]interface{}{
			"mode":      string(mode),
			"cell_size": agg.CellSize,
			"bounds": map[string]float64{
				"min_lat": agg.Bounds.MinLat,
				"min_lon": agg.Bounds.MinLon,
				"max_lat": agg.Bounds.MaxLat,
				"max_lon": agg.Bounds.MaxLon,
			},
			"color_scale":    scaleLegend(diverging),
			"total_features": len(fc.Features),
		},
	}
}
