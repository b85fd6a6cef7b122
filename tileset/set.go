// Package tileset provides a compact set of tiles covering an arbitrary area
// of the tile pyramid.
//
// A Set stores only leaf tiles: no stored tile is an ancestor of another,
// and four sibling tiles are always merged into their parent. Removing a tile
// covered by a stored ancestor splits that ancestor into the leaves covering
// the remaining area. The stored leaves are therefore a canonical
// representation of the covered area.
//
// A Set is not safe for concurrent use.
package tileset

import (
	"context"
	"iter"
	"maps"

	"github.com/eak1mov/go-tilecover/tile"
)

// Set is a coverage set of tiles. The zero value is an empty set.
type Set struct {
	leaves map[tile.ID]struct{}

	// number of stored leaves below each tile that has any
	descendants map[tile.ID]int
}

// New returns a set covering the given tiles.
func New(tiles ...tile.ID) *Set {
	s := &Set{}
	for _, t := range tiles {
		s.Add(t)
	}
	return s
}

// FromSeq returns a set covering all tiles of the sequence.
func FromSeq(tiles iter.Seq[tile.ID]) *Set {
	s := &Set{}
	for t := range tiles {
		s.Add(t)
	}
	return s
}

// Collect returns the coverage of all tiles visited by v.
func Collect(ctx context.Context, v tile.Visitor) (*Set, error) {
	s := &Set{}
	err := v.VisitTileIDs(func(t tile.ID) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Add(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) insert(t tile.ID) {
	if s.leaves == nil {
		s.leaves = make(map[tile.ID]struct{})
		s.descendants = make(map[tile.ID]int)
	}
	s.leaves[t] = struct{}{}
	for p, ok := t.Parent(); ok; p, ok = p.Parent() {
		s.descendants[p]++
	}
}

func (s *Set) erase(t tile.ID) {
	delete(s.leaves, t)
	for p, ok := t.Parent(); ok; p, ok = p.Parent() {
		if s.descendants[p]--; s.descendants[p] == 0 {
			delete(s.descendants, p)
		}
	}
}

// eraseBelow removes all stored leaves that are descendants of t.
func (s *Set) eraseBelow(t tile.ID) {
	for _, child := range t.Children() {
		if _, ok := s.leaves[child]; ok {
			s.erase(child)
		} else if s.descendants[child] > 0 {
			s.eraseBelow(child)
		}
	}
}

// Add adds the area of t to the set.
// It returns false if t was already covered.
func (s *Set) Add(t tile.ID) bool {
	if s.Contains(t) {
		return false
	}
	if s.descendants[t] > 0 {
		s.eraseBelow(t)
	}
	for {
		s.insert(t)

		parent, ok := t.Parent()
		if !ok {
			return true
		}
		siblings := parent.Children()
		for _, sibling := range siblings {
			if _, ok := s.leaves[sibling]; !ok {
				return true
			}
		}
		for _, sibling := range siblings {
			s.erase(sibling)
		}
		t = parent
	}
}

// AddSet adds the area covered by other to the set.
func (s *Set) AddSet(other *Set) {
	for t := range other.leaves {
		s.Add(t)
	}
}

// Contains reports whether t is covered by the set, either as a leaf
// or by one of its ancestors.
func (s *Set) Contains(t tile.ID) bool {
	_, ok := s.cover(t)
	return ok
}

// cover returns the stored leaf covering t.
func (s *Set) cover(t tile.ID) (tile.ID, bool) {
	for {
		if _, ok := s.leaves[t]; ok {
			return t, true
		}
		parent, ok := t.Parent()
		if !ok {
			return tile.ID{}, false
		}
		t = parent
	}
}

// Remove removes the area of t from the set.
// It returns false if no part of t was covered.
func (s *Set) Remove(t tile.ID) bool {
	if _, ok := s.leaves[t]; ok {
		s.erase(t)
		return true
	}

	covering, ok := s.cover(t)
	if !ok {
		if s.descendants[t] == 0 {
			return false
		}
		s.eraseBelow(t)
		return true
	}
	s.erase(covering)

	// Replace the covering leaf by its subtree minus the branch leading to t.
	var split func(tile.ID)
	split = func(node tile.ID) {
		for _, child := range node.Children() {
			switch {
			case child == t:
			case child.IsAncestorOf(t):
				split(child)
			default:
				s.insert(child)
			}
		}
	}
	split(covering)
	return true
}

// IsEmpty reports whether the set covers nothing.
func (s *Set) IsEmpty() bool {
	return len(s.leaves) == 0
}

// Len returns the number of stored leaves.
func (s *Set) Len() int {
	return len(s.leaves)
}

// All returns an iterator over the stored leaves in unspecified order.
func (s *Set) All() iter.Seq[tile.ID] {
	return maps.Keys(s.leaves)
}

// Clone returns a copy of the set.
func (s *Set) Clone() *Set {
	return &Set{
		leaves:      maps.Clone(s.leaves),
		descendants: maps.Clone(s.descendants),
	}
}

// Inverted returns the complement of the set within the root tile.
func (s *Set) Inverted() *Set {
	inverted := New(tile.ID{X: 0, Y: 0, Z: 0})
	for t := range s.leaves {
		inverted.Remove(t)
	}
	return inverted
}
