package geo

import (
	"iter"

	"github.com/eak1mov/go-tilecover/tile"
)

// Direction names one of the 8 neighbours of a tile.
type Direction int

const (
	Left Direction = iota
	TopLeft
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
)

var offsets = [...]struct{ dx, dy int64 }{
	Left:        {-1, 0},
	TopLeft:     {-1, -1},
	Top:         {0, -1},
	TopRight:    {1, -1},
	Right:       {1, 0},
	BottomRight: {1, 1},
	Bottom:      {0, 1},
	BottomLeft:  {-1, 1},
}

// Neighbour returns the adjacent tile in the given direction. Columns wrap
// around the antimeridian, rows stop at the poles: there is no neighbour
// above the first row or below the last one.
func Neighbour(t tile.ID, dir Direction) (tile.ID, bool) {
	n := int64(1) << t.Z
	offset := offsets[dir]

	y := int64(t.Y) + offset.dy
	if y < 0 || y >= n {
		return tile.Empty, false
	}
	x := (int64(t.X) + offset.dx + n) % n
	return tile.ID{X: uint32(x), Y: uint32(y), Z: t.Z}, true
}

// Neighbours returns an iterator over the existing neighbours of t,
// clockwise starting from the left one.
func Neighbours(t tile.ID) iter.Seq[tile.ID] {
	return func(yield func(tile.ID) bool) {
		for dir := range Direction(len(offsets)) {
			n, ok := Neighbour(t, dir)
			if ok && !yield(n) {
				return
			}
		}
	}
}
