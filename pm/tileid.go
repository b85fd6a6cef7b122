package pm

import (
	"math/bits"

	"github.com/eak1mov/go-tilecover/tile"
	"github.com/google/hilbert"
)

// TileCode returns the PMTiles tile id of t: tiles are numbered level by level
// like tile.ID.GlobalID, but along a Hilbert curve within a level.
func TileCode(t tile.ID) uint64 {
	h, _ := hilbert.NewHilbert(1 << t.Z)
	code, _ := h.MapInverse(int(t.X), int(t.Y))
	return tile.ZoomOffset(t.Z) + uint64(code)
}

// TileFromCode is the inverse of TileCode. Codes beyond the deepest zoom level
// return tile.Empty.
func TileFromCode(tileCode uint64) tile.ID {
	if tileCode >= tile.ZoomOffset(tile.MaxZoom+1) {
		return tile.Empty
	}
	z := uint32(bits.Len64(3*tileCode+1)-1) / 2

	h, _ := hilbert.NewHilbert(1 << z)
	x, y, _ := h.Map(int(tileCode - tile.ZoomOffset(z)))
	return tile.ID{X: uint32(x), Y: uint32(y), Z: z}
}
