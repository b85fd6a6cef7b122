// Package mb provides API for reading tile coverage of MBTiles databases.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package mb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-tilecover/tile"
)

var ErrInvalidTile = errors.New("tilecover: invalid mbtiles tile")

// Reader implements tile.Visitor for MBTiles databases.
type Reader struct {
	db     *sql.DB
	logger *slog.Logger
}

type readerConfig struct {
	Logger *slog.Logger
}

type ReaderOption func(*readerConfig)

func WithLogger(logger *slog.Logger) ReaderOption {
	return func(c *readerConfig) { c.Logger = logger }
}

// NewReader opens the MBTiles database at filePath in read-only mode.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string, opts ...ReaderOption) (*Reader, error) {
	config := readerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	config.Logger.Debug("tilecover: opened mbtiles database", "path", filePath)
	return &Reader{db: db, logger: config.Logger}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// ZoomRange returns the lowest and highest zoom levels present in the tiles table.
// Both are zero for an empty table.
func (r *Reader) ZoomRange() (minZoom, maxZoom uint32, err error) {
	var lo, hi sql.NullInt64
	if err := r.db.QueryRow("SELECT MIN(zoom_level), MAX(zoom_level) FROM tiles").Scan(&lo, &hi); err != nil {
		return 0, 0, err
	}
	return uint32(lo.Int64), uint32(hi.Int64), nil
}

// VisitTileIDs visits every tile of the tiles table. Rows are converted from
// TMS to XYZ addressing; rows outside their zoom level grid are reported as errors.
func (r *Reader) VisitTileIDs(visitor func(tile.ID) error) error {
	rows, err := r.db.Query("SELECT zoom_level, tile_column, tile_row FROM tiles")
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var z, x, y int64
		if err := rows.Scan(&z, &x, &y); err != nil {
			return err
		}
		if z < 0 || z > tile.MaxZoom || x < 0 || y < 0 || x >= 1<<z || y >= 1<<z {
			return fmt.Errorf("%w: zoom_level=%d tile_column=%d tile_row=%d", ErrInvalidTile, z, x, y)
		}

		y = (1 << z) - 1 - y // TMS -> XYZ

		if err := visitor(tile.ID{X: uint32(x), Y: uint32(y), Z: uint32(z)}); err != nil {
			return err
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return err
	}

	r.logger.Debug("tilecover: visited mbtiles tiles", "count", count)
	return nil
}
