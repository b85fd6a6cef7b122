package xyz

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/eak1mov/go-tilecover/tile"
)

// Reader implements tile.Visitor for tiles in XYZ format.
type Reader struct {
	rootDir    string
	pathRegexp *regexp.Regexp
	logger     *slog.Logger
}

type readerConfig struct {
	Logger *slog.Logger
}

type ReaderOption func(*readerConfig)

func WithLogger(logger *slog.Logger) ReaderOption {
	return func(c *readerConfig) { c.Logger = logger }
}

// NewReader creates a new Reader for the given file pattern (e.g. "/home/user/tiles/{z}/{x}/{y}.png").
func NewReader(filePattern string, opts ...ReaderOption) (*Reader, error) {
	config := readerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	filePattern = filepath.Clean(filePattern)
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	pathRegexp, err := compilePattern(filePattern)
	if err != nil {
		return nil, err
	}

	// walk starts at the deepest directory shared by all formatted paths
	path0 := formatPattern(filePattern, tile.ID{X: 0, Y: 0, Z: 0})
	path1 := formatPattern(filePattern, tile.ID{X: 1, Y: 1, Z: 1})
	for path0 != path1 {
		path0 = filepath.Dir(path0)
		path1 = filepath.Dir(path1)
	}

	return &Reader{rootDir: path0, pathRegexp: pathRegexp, logger: config.Logger}, nil
}

// VisitTileIDs visits every file matching the pattern. Files that do not match,
// or whose coordinates are outside their zoom level grid, are skipped.
func (r *Reader) VisitTileIDs(visitor func(tile.ID) error) error {
	skipped := 0
	err := filepath.WalkDir(r.rootDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		tileID, ok := r.parsePath(filePath)
		if !ok {
			skipped++
			return nil
		}
		return visitor(tileID)
	})
	if err != nil {
		return err
	}
	if skipped > 0 {
		r.logger.Debug("tilecover: skipped files", "rootDir", r.rootDir, "count", skipped)
	}
	return nil
}

func (r *Reader) parsePath(filePath string) (tile.ID, bool) {
	matches := r.pathRegexp.FindStringSubmatch(filePath)
	if matches == nil {
		return tile.Empty, false
	}

	var coords [3]uint32
	for i, name := range []string{"x", "y", "z"} {
		value, err := strconv.ParseUint(matches[r.pathRegexp.SubexpIndex(name)], 10, 32)
		if err != nil {
			return tile.Empty, false
		}
		coords[i] = uint32(value)
	}

	tileID := tile.ID{X: coords[0], Y: coords[1], Z: coords[2]}
	return tileID, tileID.Valid()
}
