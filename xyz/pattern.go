// Package xyz provides API for reading tile coverage of XYZ directory tilesets,
// where tiles are stored as individual files with paths like "/z/x/y.ext".
package xyz

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tilecover/tile"
)

var ErrInvalidPattern = errors.New("tilecover: invalid file pattern")

var placeholders = []string{"{x}", "{y}", "{z}"}

func validatePattern(pattern string) error {
	for _, p := range placeholders {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, tileID tile.ID) string {
	return strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(tileID.X), 10),
		"{y}", strconv.FormatUint(uint64(tileID.Y), 10),
		"{z}", strconv.FormatUint(uint64(tileID.Z), 10),
	).Replace(pattern)
}

// compilePattern returns a regexp matching the paths produced by formatPattern.
// Everything except the placeholders is matched literally.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	for _, p := range placeholders {
		name := p[1 : len(p)-1]
		quoted = strings.Replace(quoted, regexp.QuoteMeta(p), `(?P<`+name+`>\d+)`, 1)
		if strings.Contains(quoted, regexp.QuoteMeta(p)) {
			return nil, fmt.Errorf("%w: placeholder %v repeated", ErrInvalidPattern, p)
		}
	}
	return regexp.Compile("^" + quoted + "$")
}
