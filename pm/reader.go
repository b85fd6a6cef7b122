// Package pm provides API for reading tile coverage of PMTiles v3 archives.
//
// Only the header and directories are read: tile contents are never fetched.
package pm

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eak1mov/go-tilecover/tile"
)

const maxDirectoryDepth = 8

// Reader implements tile.Visitor for PMTiles archives.
type Reader struct {
	file   io.ReaderAt
	closer io.Closer
	header header
	logger *slog.Logger
}

type readerConfig struct {
	Logger *slog.Logger
}

type ReaderOption func(*readerConfig)

func WithLogger(logger *slog.Logger) ReaderOption {
	return func(c *readerConfig) { c.Logger = logger }
}

// Open opens the PMTiles archive at filePath.
//
// The returned Reader must be closed after use.
func Open(filePath string, opts ...ReaderOption) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

// NewReader reads the archive header from file.
func NewReader(file io.ReaderAt, opts ...ReaderOption) (*Reader, error) {
	config := readerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	r := &Reader{file: file, logger: config.Logger}
	headerData, err := r.read(0, headerLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	r.header, err = decodeHeader(headerData)
	if err != nil {
		return nil, err
	}
	if r.header.RootLength > rootDirectoryMaxLength {
		return nil, fmt.Errorf("%w: root directory length %d exceeds %d",
			ErrInvalidDirectory, r.header.RootLength, rootDirectoryMaxLength)
	}

	r.logger.Debug("tilecover: opened pmtiles archive",
		"minZoom", r.header.MinZoom,
		"maxZoom", r.header.MaxZoom,
		"addressedTiles", r.header.AddressedTilesCount,
		"internalCompression", r.header.InternalCompression)
	return r, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ZoomRange returns the zoom levels declared in the header.
func (r *Reader) ZoomRange() (minZoom, maxZoom uint32) {
	return uint32(r.header.MinZoom), uint32(r.header.MaxZoom)
}

// AddressedTiles returns the number of tiles declared in the header, zero if unknown.
func (r *Reader) AddressedTiles() uint64 {
	return r.header.AddressedTilesCount
}

func (r *Reader) read(offset, length uint64) ([]byte, error) {
	buffer := make([]byte, length)
	if n, err := r.file.ReadAt(buffer, int64(offset)); n < len(buffer) {
		return nil, err
	}
	return buffer, nil
}

func (r *Reader) readDirectory(offset, length uint64) ([]entry, error) {
	compressed, err := r.read(offset, length)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDirectory, err)
	}
	data, err := decompress(compressed, r.header.InternalCompression)
	if err != nil {
		return nil, err
	}
	return decodeDirectory(data)
}

// VisitTileIDs visits every addressed tile of the archive, in tile code order
// for clustered archives.
func (r *Reader) VisitTileIDs(visitor func(tile.ID) error) error {
	var traverse func(offset, length uint64, depth int) error
	traverse = func(offset, length uint64, depth int) error {
		if depth > maxDirectoryDepth {
			return fmt.Errorf("%w: directories nested deeper than %d", ErrInvalidDirectory, maxDirectoryDepth)
		}
		entries, err := r.readDirectory(offset, length)
		if err != nil {
			return err
		}
		r.logger.Debug("tilecover: read directory", "offset", offset, "entries", len(entries))

		for _, e := range entries {
			if e.RunLength == 0 {
				leafLength := r.header.LeafDirectoryLength
				if e.Offset > leafLength || uint64(e.Length) > leafLength-e.Offset {
					return fmt.Errorf("%w: leaf directory at %d+%d outside of %d bytes",
						ErrInvalidDirectory, e.Offset, e.Length, leafLength)
				}
				if err := traverse(r.header.LeafDirectoryOffset+e.Offset, uint64(e.Length), depth+1); err != nil {
					return err
				}
				continue
			}
			for i := range uint64(e.RunLength) {
				tileID := TileFromCode(e.TileCode + i)
				if !tileID.Valid() {
					return fmt.Errorf("%w: invalid tile code %d", ErrInvalidDirectory, e.TileCode+i)
				}
				if err := visitor(tileID); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return traverse(r.header.RootOffset, r.header.RootLength, 0)
}
