package tileset

import (
	"errors"
	"fmt"
	"iter"

	"github.com/eak1mov/go-tilecover/tile"
)

var ErrZoomTooShallow = errors.New("tilecover: zoom too shallow for tileset")

func (s *Set) checkZoom(zoom uint32) error {
	if zoom > tile.MaxZoom {
		return fmt.Errorf("%w: zoom %d", tile.ErrInvalidZoom, zoom)
	}
	for t := range s.leaves {
		if t.Z > zoom {
			return fmt.Errorf("%w: found tile %v deeper than zoom %d", ErrZoomTooShallow, t, zoom)
		}
	}
	return nil
}

// AtZoom returns an iterator over all tiles covered by the set at the given zoom.
// It fails if the set stores a tile deeper than zoom. Iteration panics if
// such a tile is added after AtZoom returns.
func (s *Set) AtZoom(zoom uint32) (iter.Seq[tile.ID], error) {
	if err := s.checkZoom(zoom); err != nil {
		return nil, err
	}
	return func(yield func(tile.ID) bool) {
		for leaf := range s.leaves {
			children, err := leaf.ChildrenAtZoom(zoom, nil)
			if err != nil {
				panic(err)
			}
			for t := range children {
				if !yield(t) {
					return
				}
			}
		}
	}, nil
}

// CountAtZoom returns the number of tiles covered by the set at the given zoom.
// It fails if the set stores a tile deeper than zoom.
func (s *Set) CountAtZoom(zoom uint32) (uint64, error) {
	if err := s.checkZoom(zoom); err != nil {
		return 0, err
	}
	var count uint64
	for leaf := range s.leaves {
		n, _ := leaf.ChildrenAtZoomCount(zoom)
		count += n
	}
	return count, nil
}
