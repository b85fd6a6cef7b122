package tile

import "math/bits"

// ZoomOffset returns the first global id of the given zoom level,
// which is the number of tiles at all shallower levels: (4^zoom - 1) / 3.
func ZoomOffset(zoom uint32) uint64 {
	return (1<<(zoom*2) - 1) / 3
}

// MaxLocalID returns the number of tiles at the given zoom level (4^zoom).
func MaxLocalID(zoom uint32) uint64 {
	return 1 << (zoom * 2)
}

// LocalID returns the row-major index of t within its zoom level.
func (t ID) LocalID() uint64 {
	return uint64(t.Y)<<t.Z | uint64(t.X)
}

func FromLocalID(localID uint64, zoom uint32) ID {
	mask := uint64(1)<<zoom - 1
	return ID{X: uint32(localID & mask), Y: uint32(localID >> zoom), Z: zoom}
}

// GlobalID returns an id unique across all zoom levels. Level z occupies
// the contiguous range [ZoomOffset(z), ZoomOffset(z+1)), row-major within the level.
func (t ID) GlobalID() uint64 {
	return ZoomOffset(t.Z) + t.LocalID()
}

// FromGlobalID is the inverse of GlobalID. Ids beyond the deepest zoom level,
// at or above ZoomOffset(MaxZoom+1), return Empty.
func FromGlobalID(globalID uint64) ID {
	if globalID >= ZoomOffset(MaxZoom+1) {
		return Empty
	}
	z := uint32(bits.Len64(3*globalID+1)-1) / 2
	return FromLocalID(globalID-ZoomOffset(z), z)
}
