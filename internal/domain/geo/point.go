// Package geo provides the distance and spatial-cell computations shared by
// the matching engine and the heatmap aggregator.
package geo

import (
	"math"

	"github.com/openhaven/matchgrid/pkg/errors"
)

// EarthRadiusMeters is the mean earth radius used by all distance and
// projection math in this package.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point lies within valid WGS84 ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return errors.Newf(errors.CodeInvalidPoint, "latitude %.6f is out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return errors.Newf(errors.CodeInvalidPoint, "longitude %.6f is out of range [-180, 180]", p.Lon)
	}
	return nil
}

// IsZero reports whether the point is the zero value.  Records with no
// geocoded location carry a zero point and are excluded from aggregation.
func (p Point) IsZero() bool { return p.Lat == 0 && p.Lon == 0 }

// HaversineMeters returns the great-circle distance between a and b.
func HaversineMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Bounds is a geographic rectangle.  MinLat <= MaxLat and MinLon <= MaxLon
// always hold for a Bounds produced by NewBounds.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// NewBounds builds a normalized Bounds from any two opposite corners,
// rejecting out-of-range coordinates and degenerate (zero-area) rectangles.
func NewBounds(lat1, lon1, lat2, lon2 float64) (Bounds, error) {
	c1 := Point{Lat: lat1, Lon: lon1}
	c2 := Point{Lat: lat2, Lon: lon2}
	if err := c1.Validate(); err != nil {
		return Bounds{}, errors.Wrap(err, errors.CodeInvalidBounds, "invalid bounds corner")
	}
	if err := c2.Validate(); err != nil {
		return Bounds{}, errors.Wrap(err, errors.CodeInvalidBounds, "invalid bounds corner")
	}

	b := Bounds{
		MinLat: math.Min(lat1, lat2),
		MinLon: math.Min(lon1, lon2),
		MaxLat: math.Max(lat1, lat2),
		MaxLon: math.Max(lon1, lon2),
	}
	if b.MinLat == b.MaxLat || b.MinLon == b.MaxLon {
		return Bounds{}, errors.New(errors.CodeInvalidBounds, "bounds must describe a non-degenerate rectangle")
	}
	return b, nil
}

// Contains reports whether p falls strictly inside the rectangle.  Points on
// the boundary are excluded so that adjacent viewports never double-count a
// record.
func (b Bounds) Contains(p Point) bool {
	return p.Lat > b.MinLat && p.Lat < b.MaxLat &&
		p.Lon > b.MinLon && p.Lon < b.MaxLon
}

// DiagonalMeters returns the great-circle length of the rectangle's
// south-west to north-east diagonal, used for resolution selection.
func (b Bounds) DiagonalMeters() float64 {
	return HaversineMeters(
		Point{Lat: b.MinLat, Lon: b.MinLon},
		Point{Lat: b.MaxLat, Lon: b.MaxLon},
	)
}
