package pm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

type Compression uint8

const (
	CompressionUnknown Compression = iota
	CompressionNone
	CompressionGzip
	CompressionBrotli
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionBrotli:
		return "brotli"
	case CompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// header is the fixed-size v3 file header; field order and sizes follow the file layout.
type header struct {
	HeaderMagic         uint64
	RootOffset          uint64
	RootLength          uint64
	MetadataOffset      uint64
	MetadataLength      uint64
	LeafDirectoryOffset uint64
	LeafDirectoryLength uint64
	TileDataOffset      uint64
	TileDataLength      uint64
	AddressedTilesCount uint64
	TileEntriesCount    uint64
	TileContentsCount   uint64
	Clustered           bool
	InternalCompression Compression
	TileCompression     Compression
	TileType            uint8
	MinZoom             uint8
	MaxZoom             uint8
	MinLonE7            int32
	MinLatE7            int32
	MaxLonE7            int32
	MaxLatE7            int32
	CenterZoom          uint8
	CenterLonE7         int32
	CenterLatE7         int32
}

const (
	headerMagic     uint64 = 0x73656C69544D50 // "PMTiles"
	headerMagicMask uint64 = 1<<56 - 1
	headerMagicV3   uint64 = headerMagic | (0x03 << 56)

	headerLength = 127

	// root directory must fit into the first 16 KiB of the archive together with the header
	rootDirectoryMaxLength = 16<<10 - headerLength
)

var (
	ErrInvalidHeader  = errors.New("tilecover: invalid pmtiles header")
	ErrInvalidVersion = errors.New("tilecover: unsupported pmtiles version")
)

func decodeHeader(data []byte) (header, error) {
	var h header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if h.HeaderMagic&headerMagicMask != headerMagic {
		return header{}, ErrInvalidHeader
	}
	if h.HeaderMagic != headerMagicV3 {
		return header{}, fmt.Errorf("%w: %d", ErrInvalidVersion, h.HeaderMagic>>56)
	}
	return h, nil
}
