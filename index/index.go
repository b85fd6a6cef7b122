// Package index reads and writes tile index files: flat sequences of
// fixed-size little-endian records mapping tiles to their location in a
// separate tile storage file.
package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/eak1mov/go-tilecover/tile"
)

var ErrInvalidIndex = errors.New("tilecover: invalid tile index")

// Item is a single record of the index. Coverage files written by WriteTiles
// leave Offset and Length zero.
type Item struct {
	X      uint32
	Y      uint32
	Z      uint32
	Length uint32
	Offset uint64
}

var itemSize = binary.Size(Item{})

func (i Item) TileID() tile.ID {
	return tile.ID{X: i.X, Y: i.Y, Z: i.Z}
}

// WriteTiles writes one record per tile.
func WriteTiles(w io.Writer, tiles iter.Seq[tile.ID]) error {
	bw := bufio.NewWriter(w)
	for t := range tiles {
		if err := binary.Write(bw, binary.LittleEndian, Item{X: t.X, Y: t.Y, Z: t.Z}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Reader implements tile.Visitor for index files.
type Reader struct {
	filePath string
	logger   *slog.Logger
}

type readerConfig struct {
	Logger *slog.Logger
}

type ReaderOption func(*readerConfig)

func WithLogger(logger *slog.Logger) ReaderOption {
	return func(c *readerConfig) { c.Logger = logger }
}

// NewReader checks that filePath holds a whole number of records.
// The file is read on every VisitTileIDs call.
func NewReader(filePath string, opts ...ReaderOption) (*Reader, error) {
	config := readerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size()%int64(itemSize) != 0 {
		return nil, fmt.Errorf("%w: size %d is not a multiple of %d", ErrInvalidIndex, info.Size(), itemSize)
	}

	config.Logger.Debug("tilecover: opened tile index", "path", filePath, "items", info.Size()/int64(itemSize))
	return &Reader{filePath: filePath, logger: config.Logger}, nil
}

func (r *Reader) VisitTileIDs(visitor func(tile.ID) error) error {
	file, err := os.Open(r.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return visitItems(bufio.NewReader(file), func(item Item) error {
		tileID := item.TileID()
		if !tileID.Valid() {
			return fmt.Errorf("%w: tile %v", ErrInvalidIndex, tileID)
		}
		return visitor(tileID)
	})
}

func visitItems(r io.Reader, visitor func(Item) error) error {
	for {
		var item Item
		err := binary.Read(r, binary.LittleEndian, &item)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIndex, err)
		}
		if err := visitor(item); err != nil {
			return err
		}
	}
}
