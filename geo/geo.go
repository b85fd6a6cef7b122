// Package geo converts between WGS84 coordinates and Web Mercator tiles.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/eak1mov/go-tilecover/tile"
)

const (
	MaxLatitude  = 85.0511
	MinLatitude  = -85.0511
	MaxLongitude = 180.0
	MinLongitude = -180.0
)

var ErrOutOfRange = errors.New("tilecover: location out of range")

// Point is a WGS84 location in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// TryAtLocation returns the tile containing the given location,
// or false if the location is outside the Web Mercator range.
func TryAtLocation(lon, lat float64, zoom uint32) (tile.ID, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return tile.Empty, false
	}
	if lat > MaxLatitude || lat < MinLatitude || lon > MaxLongitude || lon < MinLongitude {
		return tile.Empty, false
	}
	if lon == MaxLongitude {
		lon -= 0.000001
	}

	n := float64(uint64(1) << zoom)
	latRad := lat * math.Pi / 180.0
	x := (lon + 180.0) / 360.0 * n
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return tile.ID{X: uint32(x), Y: uint32(y), Z: zoom}, true
}

// AtLocation returns the tile containing the given location.
func AtLocation(lon, lat float64, zoom uint32) (tile.ID, error) {
	t, ok := TryAtLocation(lon, lat, zoom)
	if !ok {
		return tile.Empty, fmt.Errorf("%w: lon=%v lat=%v", ErrOutOfRange, lon, lat)
	}
	return t, nil
}

// Bounds is a tile boundary in degrees.
type Bounds struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (b Bounds) CenterLatitude() float64 {
	return (b.Top + b.Bottom) / 2.0
}

func (b Bounds) CenterLongitude() float64 {
	return (b.Left + b.Right) / 2.0
}

// tileLatitude returns the latitude of the northern edge of row y, in degrees.
func tileLatitude(zoom uint32, y float64) float64 {
	yf := 1.0 - 2.0*y/float64(uint64(1)<<zoom)
	return math.Atan(math.Sinh(math.Pi*yf)) * 180.0 / math.Pi
}

func tileLongitude(zoom uint32, x float64) float64 {
	return x/float64(uint64(1)<<zoom)*360.0 - 180.0
}

func BoundsOf(t tile.ID) Bounds {
	x, y := float64(t.X), float64(t.Y)
	return Bounds{
		Left:   tileLongitude(t.Z, x),
		Top:    tileLatitude(t.Z, y),
		Right:  tileLongitude(t.Z, x+1),
		Bottom: tileLatitude(t.Z, y+1),
	}
}
