package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint_Validate(t *testing.T) {
	assert.NoError(t, Point{Lat: 37.77, Lon: -122.42}.Validate())
	assert.Error(t, Point{Lat: 91, Lon: 0}.Validate())
	assert.Error(t, Point{Lat: -91, Lon: 0}.Validate())
	assert.Error(t, Point{Lat: 0, Lon: 181}.Validate())
	assert.Error(t, Point{Lat: 0, Lon: -181}.Validate())
}

func TestHaversineMeters(t *testing.T) {
	// San Francisco to Oakland is roughly 13.4 km.
	sf := Point{Lat: 37.7749, Lon: -122.4194}
	oak := Point{Lat: 37.8044, Lon: -122.2712}
	d := HaversineMeters(sf, oak)
	assert.InDelta(t, 13400, d, 500)

	assert.Zero(t, HaversineMeters(sf, sf))

	// One degree of latitude is about 111.2 km.
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 1, Lon: 0}
	assert.InDelta(t, 111195, HaversineMeters(a, b), 100)
}

func TestNewBounds_NormalizesCorners(t *testing.T) {
	b, err := NewBounds(38.0, -122.0, 37.0, -123.0)
	require.NoError(t, err)
	assert.Equal(t, 37.0, b.MinLat)
	assert.Equal(t, -123.0, b.MinLon)
	assert.Equal(t, 38.0, b.MaxLat)
	assert.Equal(t, -122.0, b.MaxLon)
}

func TestNewBounds_Rejects(t *testing.T) {
	_, err := NewBounds(95, 0, 37, 1)
	assert.Error(t, err)

	// degenerate: zero height
	_, err = NewBounds(37, -122, 37, -121)
	assert.Error(t, err)

	// degenerate: zero width
	_, err = NewBounds(37, -122, 38, -122)
	assert.Error(t, err)
}

func TestBounds_ContainsIsStrict(t *testing.T) {
	b, err := NewBounds(37, -123, 38, -122)
	require.NoError(t, err)

	assert.True(t, b.Contains(Point{Lat: 37.5, Lon: -122.5}))
	assert.False(t, b.Contains(Point{Lat: 37, Lon: -122.5}))   // on south edge
	assert.False(t, b.Contains(Point{Lat: 37.5, Lon: -122}))   // on east edge
	assert.False(t, b.Contains(Point{Lat: 36.9, Lon: -122.5})) // outside
}

func TestBounds_DiagonalMeters(t *testing.T) {
	b, err := NewBounds(37.0, -122.0, 37.01, -121.99)
	require.NoError(t, err)
	// ~1.1 km lat by ~0.9 km lon
	assert.InDelta(t, 1430, b.DiagonalMeters(), 100)
}
