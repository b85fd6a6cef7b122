package pm

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/eak1mov/go-tilecover/tile"
	"github.com/eak1mov/go-tilecover/tileset"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func encodeDirectory(entries []entry) []byte {
	buffer := binary.AppendUvarint(nil, uint64(len(entries)))

	lastCode := uint64(0)
	for _, e := range entries {
		buffer = binary.AppendUvarint(buffer, e.TileCode-lastCode)
		lastCode = e.TileCode
	}
	for _, e := range entries {
		buffer = binary.AppendUvarint(buffer, uint64(e.RunLength))
	}
	for _, e := range entries {
		buffer = binary.AppendUvarint(buffer, uint64(e.Length))
	}
	nextOffset := uint64(0)
	for i, e := range entries {
		if i > 0 && e.Offset == nextOffset {
			buffer = binary.AppendUvarint(buffer, 0)
		} else {
			buffer = binary.AppendUvarint(buffer, e.Offset+1)
		}
		nextOffset = e.Offset + uint64(e.Length)
	}
	return buffer
}

func compress(t *testing.T, data []byte, compression Compression) []byte {
	t.Helper()
	var buffer bytes.Buffer
	switch compression {
	case CompressionNone:
		return data
	case CompressionGzip:
		w := gzip.NewWriter(&buffer)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionBrotli:
		w := brotli.NewWriterLevel(&buffer, 1)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionZstd:
		w, err := zstd.NewWriter(&buffer, zstd.WithEncoderLevel(zstd.SpeedFastest))
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		t.Fatalf("unexpected compression %v", compression)
	}
	return buffer.Bytes()
}

// tileEntries returns clustered run-length entries for the given tiles.
func tileEntries(tiles ...tile.ID) []entry {
	codes := make([]uint64, 0, len(tiles))
	for _, t := range tiles {
		codes = append(codes, TileCode(t))
	}
	slices.Sort(codes)

	var entries []entry
	for _, code := range codes {
		if n := len(entries); n > 0 && entries[n-1].TileCode+uint64(entries[n-1].RunLength) == code {
			entries[n-1].RunLength++
			continue
		}
		entries = append(entries, entry{TileCode: code, Offset: uint64(len(entries)) * 10, Length: 10, RunLength: 1})
	}
	return entries
}

// buildArchive returns an archive with the tiles split into a root directory
// and a single leaf directory.
func buildArchive(t *testing.T, compression Compression, rootTiles, leafTiles []tile.ID) []byte {
	t.Helper()

	leafData := compress(t, encodeDirectory(tileEntries(leafTiles...)), compression)
	rootEntries := tileEntries(rootTiles...)
	if len(leafTiles) > 0 {
		rootEntries = append(rootEntries, entry{
			TileCode: TileCode(leafTiles[0]) - 1,
			Offset:   0,
			Length:   uint32(len(leafData)),
		})
		slices.SortFunc(rootEntries, func(a, b entry) int { return int(a.TileCode) - int(b.TileCode) })
	}
	rootData := compress(t, encodeDirectory(rootEntries), compression)

	h := header{
		HeaderMagic:         headerMagicV3,
		RootOffset:          headerLength,
		RootLength:          uint64(len(rootData)),
		LeafDirectoryOffset: headerLength + uint64(len(rootData)),
		LeafDirectoryLength: uint64(len(leafData)),
		AddressedTilesCount: uint64(len(rootTiles) + len(leafTiles)),
		Clustered:           true,
		InternalCompression: compression,
		TileCompression:     CompressionNone,
		MinZoom:             0,
		MaxZoom:             14,
	}
	var buffer bytes.Buffer
	require.NoError(t, binary.Write(&buffer, binary.LittleEndian, &h))
	require.Equal(t, headerLength, buffer.Len())
	buffer.Write(rootData)
	buffer.Write(leafData)
	return buffer.Bytes()
}

func TestTileCode(t *testing.T) {
	for z := range 8 {
		seen := make(map[uint64]bool)
		for x := range 1 << z {
			for y := range 1 << z {
				tileID := tile.ID{X: uint32(x), Y: uint32(y), Z: uint32(z)}
				code := TileCode(tileID)
				if code < tile.ZoomOffset(uint32(z)) || code >= tile.ZoomOffset(uint32(z+1)) {
					t.Errorf("TileCode(%v) = %d, outside of zoom level range", tileID, code)
				}
				if seen[code] {
					t.Errorf("TileCode(%v) = %d is not unique", tileID, code)
				}
				seen[code] = true
				if diff := cmp.Diff(tileID, TileFromCode(code)); diff != "" {
					t.Errorf("TileFromCode(TileCode(%v)) mismatch (-want+got):\n%v", tileID, diff)
				}
			}
		}
	}
	for z := range 31 {
		tileID := tile.ID{X: uint32(1<<z) - 1, Y: uint32(1<<z) - 1, Z: uint32(z)}
		if diff := cmp.Diff(tileID, TileFromCode(TileCode(tileID))); diff != "" {
			t.Errorf("TileFromCode(TileCode(%v)) mismatch (-want+got):\n%v", tileID, diff)
		}
	}
}

func TestDirectoryRoundTrip(t *testing.T) {
	entries := []entry{
		{TileCode: 0, Offset: 0, Length: 100, RunLength: 1},
		{TileCode: 1, Offset: 100, Length: 20, RunLength: 3},
		{TileCode: 5, Offset: 0, Length: 100, RunLength: 1},
		{TileCode: 100, Offset: 35, Length: 7, RunLength: 0},
	}
	got, err := decodeDirectory(encodeDirectory(entries))
	require.NoError(t, err)
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("decodeDirectory mismatch (-want+got):\n%v", diff)
	}

	if _, err := decodeDirectory([]byte{0x05, 0x01}); !errors.Is(err, ErrInvalidDirectory) {
		t.Errorf("decodeDirectory(truncated) error = %v, want %v", err, ErrInvalidDirectory)
	}
}

func TestVisitTileIDs(t *testing.T) {
	rootTiles := []tile.ID{
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
		{X: 3, Y: 2, Z: 3},
	}
	leafTiles := []tile.ID{
		{X: 8410, Y: 5466, Z: 14}, {X: 8411, Y: 5466, Z: 14}, {X: 8410, Y: 5465, Z: 14},
	}
	want := make(map[tile.ID]bool)
	for _, tileID := range append(slices.Clone(rootTiles), leafTiles...) {
		want[tileID] = true
	}

	for _, compression := range []Compression{CompressionNone, CompressionGzip, CompressionBrotli, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			archive := buildArchive(t, compression, rootTiles, leafTiles)
			r, err := NewReader(bytes.NewReader(archive))
			require.NoError(t, err)

			got := make(map[tile.ID]bool)
			for tileID := range tile.IterIDs(r) {
				got[tileID] = true
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("VisitTileIDs mismatch (-want+got):\n%v", diff)
			}

			if minZoom, maxZoom := r.ZoomRange(); minZoom != 0 || maxZoom != 14 {
				t.Errorf("ZoomRange() = %d, %d, want 0, 14", minZoom, maxZoom)
			}
			if n := r.AddressedTiles(); n != uint64(len(want)) {
				t.Errorf("AddressedTiles() = %d, want %d", n, len(want))
			}
		})
	}
}

func TestCollectCoverage(t *testing.T) {
	rootTiles := []tile.ID{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}}
	leafTiles := []tile.ID{{X: 2, Y: 2, Z: 2}, {X: 3, Y: 2, Z: 2}, {X: 2, Y: 3, Z: 2}, {X: 3, Y: 3, Z: 2}}

	filePath := filepath.Join(t.TempDir(), "test.pmtiles")
	require.NoError(t, os.WriteFile(filePath, buildArchive(t, CompressionGzip, rootTiles, leafTiles), 0644))

	r, err := Open(filePath)
	require.NoError(t, err)
	defer r.Close()

	s, err := tileset.Collect(context.Background(), r)
	require.NoError(t, err)
	if diff := cmp.Diff([]tile.ID{{X: 0, Y: 0, Z: 0}}, slices.Collect(s.All())); diff != "" {
		t.Errorf("coverage mismatch (-want+got):\n%v", diff)
	}
}

func TestVisitStops(t *testing.T) {
	archive := buildArchive(t, CompressionNone, []tile.ID{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}}, nil)
	r, err := NewReader(bytes.NewReader(archive))
	require.NoError(t, err)

	errStop := errors.New("stop")
	visited := 0
	err = r.VisitTileIDs(func(tile.ID) error {
		visited++
		return errStop
	})
	if !errors.Is(err, errStop) || visited != 1 {
		t.Errorf("VisitTileIDs = %v after %d tiles, want %v after 1", err, visited, errStop)
	}
}

func TestInvalidArchive(t *testing.T) {
	archive := buildArchive(t, CompressionNone, []tile.ID{{X: 0, Y: 0, Z: 0}}, nil)

	badMagic := slices.Clone(archive)
	badMagic[0] = 'X'
	if _, err := NewReader(bytes.NewReader(badMagic)); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("NewReader(bad magic) error = %v, want %v", err, ErrInvalidHeader)
	}

	badVersion := slices.Clone(archive)
	badVersion[7] = 2
	if _, err := NewReader(bytes.NewReader(badVersion)); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("NewReader(bad version) error = %v, want %v", err, ErrInvalidVersion)
	}

	if _, err := NewReader(bytes.NewReader(archive[:50])); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("NewReader(truncated) error = %v, want %v", err, ErrInvalidHeader)
	}

	// internal compression byte follows twelve uint64 fields and the clustered flag
	badCompression := slices.Clone(archive)
	badCompression[12*8+1] = 9
	r, err := NewReader(bytes.NewReader(badCompression))
	require.NoError(t, err)
	if err := r.VisitTileIDs(func(tile.ID) error { return nil }); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("VisitTileIDs error = %v, want %v", err, ErrUnsupportedCompression)
	}
}

func TestCorruptDirectories(t *testing.T) {
	visit := func(archive []byte) error {
		r, err := NewReader(bytes.NewReader(archive))
		if err != nil {
			return err
		}
		return r.VisitTileIDs(func(tile.ID) error { return nil })
	}

	archive := buildArchive(t, CompressionNone, []tile.ID{{X: 0, Y: 0, Z: 1}}, []tile.ID{{X: 3, Y: 3, Z: 2}})
	require.NoError(t, visit(archive))

	// root length is the third uint64 of the header
	hugeRoot := slices.Clone(archive)
	binary.LittleEndian.PutUint64(hugeRoot[16:], 1<<62)
	if err := visit(hugeRoot); !errors.Is(err, ErrInvalidDirectory) {
		t.Errorf("visit(huge root length) error = %v, want %v", err, ErrInvalidDirectory)
	}

	// leaf directory length is the seventh uint64 of the header
	shortLeaves := slices.Clone(archive)
	binary.LittleEndian.PutUint64(shortLeaves[48:], 1)
	if err := visit(shortLeaves); !errors.Is(err, ErrInvalidDirectory) {
		t.Errorf("visit(leaf outside of leaf directories) error = %v, want %v", err, ErrInvalidDirectory)
	}

	if err := visit(archive[:len(archive)-1]); !errors.Is(err, ErrInvalidDirectory) {
		t.Errorf("visit(truncated) error = %v, want %v", err, ErrInvalidDirectory)
	}

	badCode := encodeDirectory([]entry{{TileCode: tile.ZoomOffset(tile.MaxZoom + 1), Offset: 0, Length: 1, RunLength: 1}})
	badCodeArchive := slices.Clone(archive[:headerLength])
	binary.LittleEndian.PutUint64(badCodeArchive[16:], uint64(len(badCode)))
	binary.LittleEndian.PutUint64(badCodeArchive[48:], 0)
	badCodeArchive = append(badCodeArchive, badCode...)
	if err := visit(badCodeArchive); !errors.Is(err, ErrInvalidDirectory) {
		t.Errorf("visit(invalid tile code) error = %v, want %v", err, ErrInvalidDirectory)
	}
}

func TestTileFromCodeOutOfRange(t *testing.T) {
	if got := TileFromCode(tile.ZoomOffset(tile.MaxZoom + 1)); !got.IsEmpty() {
		t.Errorf("TileFromCode(beyond deepest zoom) = %v, want empty tile", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.pmtiles")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}
