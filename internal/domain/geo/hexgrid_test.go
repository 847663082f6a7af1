package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionForBounds(t *testing.T) {
	tests := []struct {
		name string
		b    Bounds
		want float64
	}{
		// ~1.5 km diagonal
		{"small viewport", mustBounds(t, 37.0, -122.0, 37.01, -121.99), CellSize250m},
		// ~15 km diagonal
		{"city viewport", mustBounds(t, 37.0, -122.0, 37.1, -121.9), CellSize500m},
		// ~75 km diagonal
		{"metro viewport", mustBounds(t, 37.0, -122.0, 37.5, -121.5), CellSize1km},
		// ~300 km diagonal
		{"regional viewport", mustBounds(t, 36.0, -123.0, 38.0, -121.0), CellSize2km},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolutionForBounds(tt.b))
		})
	}
}

func TestClampCellSize(t *testing.T) {
	assert.Equal(t, 100.0, ClampCellSize(50, 100, 10000))
	assert.Equal(t, 10000.0, ClampCellSize(50000, 100, 10000))
	assert.Equal(t, 750.0, ClampCellSize(750, 100, 10000))
}

func TestCellIDForPoint_Deterministic(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	id1 := CellIDForPoint(p, 1000)
	id2 := CellIDForPoint(p, 1000)
	assert.Equal(t, id1, id2)
}

func TestCellIDForPoint_NearbyPointsShareCell(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	// ~10 m away, far below the 1 km cell size
	near := Point{Lat: 37.77499, Lon: -122.4194}
	assert.Equal(t, CellIDForPoint(p, 1000), CellIDForPoint(near, 1000))
}

func TestCellIDForPoint_DistantPointsDiffer(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	// ~50 km north
	far := Point{Lat: 38.2249, Lon: -122.4194}
	assert.NotEqual(t, CellIDForPoint(p, 1000), CellIDForPoint(far, 1000))
}

func TestCellIDForPoint_ResolutionChangesID(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	assert.NotEqual(t, CellIDForPoint(p, 250), CellIDForPoint(p, 2000))
}

func TestParseCellID(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	id := CellIDForPoint(p, 500)

	size, _, _, err := ParseCellID(id)
	require.NoError(t, err)
	assert.Equal(t, 500.0, size)

	_, _, _, err = ParseCellID("garbage")
	assert.Error(t, err)
	_, _, _, err = ParseCellID("0:1:2")
	assert.Error(t, err)
	_, _, _, err = ParseCellID("500:x:2")
	assert.Error(t, err)
}

func TestCellCenter_NearOriginalPoint(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	id := CellIDForPoint(p, 500)

	center, err := CellCenter(id)
	require.NoError(t, err)

	// The assigned cell's center is within one cell size of the point.
	assert.Less(t, HaversineMeters(p, center), 500.0)
}

func TestCellPolygon(t *testing.T) {
	p := Point{Lat: 37.7749, Lon: -122.4194}
	id := CellIDForPoint(p, 1000)

	poly, err := CellPolygon(id)
	require.NoError(t, err)
	require.Len(t, poly, 1)

	ring := poly[0]
	require.Len(t, ring, 7)
	assert.Equal(t, ring[0], ring[6], "ring must be closed")

	// Every vertex stays within ~one cell size of the cell center.
	center, err := CellCenter(id)
	require.NoError(t, err)
	for _, v := range ring {
		d := HaversineMeters(center, Point{Lat: v[1], Lon: v[0]})
		assert.Less(t, d, 1000.0)
	}
}

func TestCellPolygon_PureFunctionOfID(t *testing.T) {
	id := CellID("1000:12:-7")
	a, err := CellPolygon(id)
	require.NoError(t, err)
	b, err := CellPolygon(id)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCellPolygon_MalformedID(t *testing.T) {
	_, err := CellPolygon("not-a-cell")
	assert.Error(t, err)
}

func mustBounds(t *testing.T, lat1, lon1, lat2, lon2 float64) Bounds {
	t.Helper()
	b, err := NewBounds(lat1, lon1, lat2, lon2)
	require.NoError(t, err)
	return b
}
