// Package tile provides tile coordinates in the XYZ scheme (Tiled web map)
// and the arithmetic of the implicit quadtree they live in.
package tile

import (
	"errors"
	"fmt"
	"math"
)

// MaxZoom is the deepest zoom level whose ids fit into 64 bits.
const MaxZoom = 31

var (
	ErrInvalidZoom   = errors.New("tilecover: invalid zoom")
	ErrZoomMismatch  = errors.New("tilecover: tiles at different zoom levels")
	ErrInvertedRange = errors.New("tilecover: inverted tile range")
)

// ID represents tile coordinates in the XYZ scheme (Tiled web map).
type ID struct {
	X uint32
	Y uint32
	Z uint32
}

// Empty represents "no tile".
var Empty = ID{X: math.MaxUint32, Y: math.MaxUint32, Z: 0}

func (t ID) IsEmpty() bool {
	return t.X == math.MaxUint32 || t.Y == math.MaxUint32
}

func (t ID) Valid() bool {
	return t.Z <= MaxZoom && t.X < (1<<t.Z) && t.Y < (1<<t.Z)
}

func (t ID) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Parent returns the tile one zoom level up covering t.
// It returns false for the root tile.
func (t ID) Parent() (ID, bool) {
	if t.Z == 0 {
		return ID{}, false
	}
	return ID{X: t.X >> 1, Y: t.Y >> 1, Z: t.Z - 1}, true
}

// ParentAt returns the ancestor of t at the given zoom, or t itself if zoom equals t.Z.
func (t ID) ParentAt(zoom uint32) (ID, error) {
	if zoom > t.Z {
		return ID{}, fmt.Errorf("%w: parent zoom %d is deeper than %v", ErrInvalidZoom, zoom, t)
	}
	shift := t.Z - zoom
	return ID{X: t.X >> shift, Y: t.Y >> shift, Z: zoom}, nil
}

// Children returns the four quadrants of t one zoom level deeper,
// ordered top-left, top-right, bottom-right, bottom-left.
func (t ID) Children() [4]ID {
	x, y, z := t.X<<1, t.Y<<1, t.Z+1
	return [4]ID{
		{X: x, Y: y, Z: z},
		{X: x + 1, Y: y, Z: z},
		{X: x + 1, Y: y + 1, Z: z},
		{X: x, Y: y + 1, Z: z},
	}
}

// IsAncestorOf reports whether t is a strict ancestor of other.
func (t ID) IsAncestorOf(other ID) bool {
	if t.Z >= other.Z {
		return false
	}
	shift := other.Z - t.Z
	return other.X>>shift == t.X && other.Y>>shift == t.Y
}
