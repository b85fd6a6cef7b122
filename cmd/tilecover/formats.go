package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/eak1mov/go-tilecover/index"
	"github.com/eak1mov/go-tilecover/mb"
	"github.com/eak1mov/go-tilecover/pm"
	"github.com/eak1mov/go-tilecover/tile"
	"github.com/eak1mov/go-tilecover/xyz"
)

func deduceFormat(format, filePath string) string {
	if format == "" && strings.HasSuffix(filePath, ".mbtiles") {
		return "mbtiles"
	}
	if format == "" && strings.HasSuffix(filePath, ".pmtiles") {
		return "pmtiles"
	}
	if format == "" && strings.HasSuffix(filePath, ".index") {
		return "index"
	}
	if format == "" {
		return "xyz"
	}
	return format
}

// openReader returns a tileset source for inputPath. The caller closes it
// if it implements io.Closer.
func openReader(format, inputPath string, logger *slog.Logger) (tile.Visitor, error) {
	switch deduceFormat(format, inputPath) {
	case "mbtiles":
		return mb.NewReader(inputPath, mb.WithLogger(logger))
	case "pmtiles":
		return pm.Open(inputPath, pm.WithLogger(logger))
	case "index":
		return index.NewReader(inputPath, index.WithLogger(logger))
	case "xyz":
		return xyz.NewReader(inputPath, xyz.WithLogger(logger))
	}
	return nil, fmt.Errorf("invalid input format: %q", format)
}

func parseZoom(zoom int) (uint32, error) {
	if zoom < 0 || zoom > tile.MaxZoom {
		return 0, fmt.Errorf("%w: %d", tile.ErrInvalidZoom, zoom)
	}
	return uint32(zoom), nil
}
