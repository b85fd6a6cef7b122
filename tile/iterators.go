package tile

import (
	"errors"
	"fmt"
	"iter"
)

// Visitor is implemented by tileset sources that can enumerate the tiles they hold.
type Visitor interface {
	// VisitTileIDs calls the visitor for every tile in the tileset.
	// Order of tiles is implementation-defined.
	VisitTileIDs(visitor func(ID) error) error
}

var errVisitCancelled = errors.New("visit cancelled")

// IterIDs returns an iterator over all tiles of the tileset.
// Iteration panics on unrecoverable visit errors.
func IterIDs(v Visitor) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		err := v.VisitTileIDs(func(tileID ID) error {
			if !yield(tileID) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

// ChildrenAtZoom returns an iterator over all descendants of t at the given zoom.
// For zoom equal to t.Z the iterator yields t itself.
//
// If exclude is not nil it is applied to every visited tile, t included;
// an excluded tile is dropped together with its whole subtree.
func (t ID) ChildrenAtZoom(zoom uint32, exclude func(ID) bool) (iter.Seq[ID], error) {
	if zoom < t.Z || zoom > MaxZoom {
		return nil, fmt.Errorf("%w: cannot enumerate children of %v at zoom %d", ErrInvalidZoom, t, zoom)
	}

	var walk func(ID, func(ID) bool) bool
	walk = func(node ID, yield func(ID) bool) bool {
		if exclude != nil && exclude(node) {
			return true
		}
		if node.Z == zoom {
			return yield(node)
		}
		for _, child := range node.Children() {
			if !walk(child, yield) {
				return false
			}
		}
		return true
	}

	return func(yield func(ID) bool) {
		walk(t, yield)
	}, nil
}

// ChildrenAtZoomCount returns the number of descendants of t at the given zoom.
func (t ID) ChildrenAtZoomCount(zoom uint32) (uint64, error) {
	if zoom < t.Z || zoom > MaxZoom {
		return 0, fmt.Errorf("%w: cannot count children of %v at zoom %d", ErrInvalidZoom, t, zoom)
	}
	return 1 << ((zoom - t.Z) * 2), nil
}

// Between returns an iterator over the rectangle spanned by topLeft and bottomRight,
// both included, column by column. If topLeft.X is greater than bottomRight.X
// the columns wrap around the antimeridian.
func Between(topLeft, bottomRight ID) (iter.Seq[ID], error) {
	if topLeft.Z != bottomRight.Z {
		return nil, fmt.Errorf("%w: %v and %v", ErrZoomMismatch, topLeft, bottomRight)
	}
	if topLeft.Y > bottomRight.Y {
		return nil, fmt.Errorf("%w: top row %d is below bottom row %d", ErrInvertedRange, topLeft.Y, bottomRight.Y)
	}

	z := topLeft.Z
	columns := func(yield func(uint32) bool) {
		if topLeft.X > bottomRight.X {
			for x := uint64(topLeft.X); x < 1<<z; x++ {
				if !yield(uint32(x)) {
					return
				}
			}
			for x := uint32(0); x <= bottomRight.X; x++ {
				if !yield(x) {
					return
				}
			}
			return
		}
		for x := uint64(topLeft.X); x <= uint64(bottomRight.X); x++ {
			if !yield(uint32(x)) {
				return
			}
		}
	}

	return func(yield func(ID) bool) {
		for x := range columns {
			for y := uint64(topLeft.Y); y <= uint64(bottomRight.Y); y++ {
				if !yield(ID{X: x, Y: uint32(y), Z: z}) {
					return
				}
			}
		}
	}, nil
}
