package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/openhaven/matchgrid/pkg/errors"
)

// The grid is a hierarchy of pointy-top hexagonal lattices, one per cell
// size, laid out in a projected plane where
//
//	y = R_earth * lat_rad
//	x = R_earth * lon_rad * cos(lat_rad)
//
// The projection is evaluated per point for binning and inverted from the
// cell center for geometry, so a cell's polygon is a pure function of its
// CellID and never depends on the records that landed in it.

// Resolution ladder used when no explicit cell size is requested, coarse to
// fine, in meters.
const (
	CellSize2km  = 2000.0
	CellSize1km  = 1000.0
	CellSize500m = 500.0
	CellSize250m = 250.0
)

// Diagonal thresholds for resolution selection, in meters.
const (
	diagFine   = 5_000.0
	diagMedium = 20_000.0
	diagCoarse = 100_000.0
)

// CellID identifies one hexagonal cell at one resolution.  The encoding is
// "<size_m>:<q>:<r>" with axial coordinates q and r; it is opaque to callers
// but stable across processes, which makes it usable as a join key for gap
// analysis.
type CellID string

// ResolutionForBounds derives a cell size from the bounding-box diagonal:
// under 5 km the finest 250 m cells, under 20 km 500 m, under 100 km 1 km,
// and 2 km beyond that.
func ResolutionForBounds(b Bounds) float64 {
	d := b.DiagonalMeters()
	switch {
	case d < diagFine:
		return CellSize250m
	case d < diagMedium:
		return CellSize500m
	case d < diagCoarse:
		return CellSize1km
	default:
		return CellSize2km
	}
}

// ClampCellSize restricts an explicitly requested cell size to [min, max].
func ClampCellSize(size, min, max float64) float64 {
	if size < min {
		return min
	}
	if size > max {
		return max
	}
	return size
}

// hexRadius converts a cell size (width across flats of a pointy-top hex)
// to the circumradius used by the lattice math.
func hexRadius(cellSize float64) float64 {
	return cellSize / math.Sqrt(3)
}

// project maps a geographic point into the lattice plane.
func project(p Point) (x, y float64) {
	latRad := p.Lat * math.Pi / 180
	lonRad := p.Lon * math.Pi / 180
	return EarthRadiusMeters * lonRad * math.Cos(latRad), EarthRadiusMeters * latRad
}

// unproject maps a lattice-plane coordinate back to a geographic point.
// Latitude is recovered first so the longitude scaling factor is exact.
func unproject(x, y float64) Point {
	latRad := y / EarthRadiusMeters
	cos := math.Cos(latRad)
	if cos == 0 {
		cos = 1e-12 // poles; keeps lon finite
	}
	lonRad := x / (EarthRadiusMeters * cos)
	return Point{Lat: latRad * 180 / math.Pi, Lon: lonRad * 180 / math.Pi}
}

// CellIDForPoint assigns p to exactly one hex cell of the given size.
// cellSize must be positive; it is rounded to whole meters in the ID so
// that identical requests always produce identical keys.
func CellIDForPoint(p Point, cellSize float64) CellID {
	r := hexRadius(cellSize)
	x, y := project(p)

	// Fractional axial coordinates for a pointy-top lattice.
	qf := (math.Sqrt(3)/3*x - y/3) / r
	rf := (2.0 / 3.0 * y) / r
	q, rr := roundAxial(qf, rf)

	return CellID(fmt.Sprintf("%d:%d:%d", int(math.Round(cellSize)), q, rr))
}

// roundAxial rounds fractional axial coordinates to the nearest hex using
// cube-coordinate rounding.
func roundAxial(qf, rf float64) (int, int) {
	sf := -qf - rf

	q := math.Round(qf)
	r := math.Round(rf)
	s := math.Round(sf)

	dq := math.Abs(q - qf)
	dr := math.Abs(r - rf)
	ds := math.Abs(s - sf)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return int(q), int(r)
}

// ParseCellID splits a CellID into its cell size and axial coordinates.
func ParseCellID(id CellID) (cellSize float64, q, r int, err error) {
	parts := strings.Split(string(id), ":")
	if len(parts) != 3 {
		return 0, 0, 0, errors.Newf(errors.CodeInvalidParam, "malformed cell id %q", id)
	}
	size, err := strconv.Atoi(parts[0])
	if err != nil || size <= 0 {
		return 0, 0, 0, errors.Newf(errors.CodeInvalidParam, "malformed cell size in id %q", id)
	}
	if q, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, errors.Newf(errors.CodeInvalidParam, "malformed q coordinate in id %q", id)
	}
	if r, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, errors.Newf(errors.CodeInvalidParam, "malformed r coordinate in id %q", id)
	}
	return float64(size), q, r, nil
}

// cellCenterPlane returns the lattice-plane center of the cell.
func cellCenterPlane(cellSize float64, q, r int) (x, y float64) {
	rad := hexRadius(cellSize)
	x = rad * math.Sqrt(3) * (float64(q) + float64(r)/2)
	y = rad * 1.5 * float64(r)
	return x, y
}

// CellCenter returns the geographic center of the cell.
func CellCenter(id CellID) (Point, error) {
	size, q, r, err := ParseCellID(id)
	if err != nil {
		return Point{}, err
	}
	x, y := cellCenterPlane(size, q, r)
	return unproject(x, y), nil
}

// CellPolygon returns the closed hexagonal ring of the cell as an
// orb.Polygon in (lon, lat) order, ready for GeoJSON serialization.  The
// first and last vertices coincide.
func CellPolygon(id CellID) (orb.Polygon, error) {
	size, q, r, err := ParseCellID(id)
	if err != nil {
		return nil, err
	}

	rad := hexRadius(size)
	cx, cy := cellCenterPlane(size, q, r)

	ring := make(orb.Ring, 0, 7)
	for k := 0; k < 6; k++ {
		// Pointy-top vertices sit at 30° + 60°k.
		angle := math.Pi / 180 * (60*float64(k) - 30)
		p := unproject(cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	ring = append(ring, ring[0])

	return orb.Polygon{ring}, nil
}
