package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tilecover/geo"
	"github.com/google/subcommands"
)

type lineCmd struct {
	zoom int
}

func (c *lineCmd) Name() string     { return "line" }
func (c *lineCmd) Synopsis() string { return "print tiles below a polyline read from stdin" }
func (c *lineCmd) Usage() string {
	return "tilecover line -z <zoom> < points.csv\n\nEach input line holds one \"lon,lat\" point.\n"
}
func (c *lineCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.zoom, "z", 14, "Zoom level of the output tiles")
}

func parsePoint(line string) (geo.Point, error) {
	lonValue, latValue, found := strings.Cut(line, ",")
	if !found {
		return geo.Point{}, fmt.Errorf("invalid point %q: want lon,lat", line)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonValue), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude in %q: %w", line, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latValue), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude in %q: %w", line, err)
	}
	return geo.Point{Lon: lon, Lat: lat}, nil
}

// readPoints reads one point per line, skipping blank lines and '#' comments.
func readPoints(r io.Reader) ([]geo.Point, error) {
	var points []geo.Point
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		point, err := parsePoint(line)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *lineCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	zoom, err := parseZoom(c.zoom)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	points, err := readPoints(os.Stdin)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	w := bufio.NewWriter(os.Stdout)
	for tileID := range geo.BelowLine(slices.Values(points), zoom) {
		fmt.Fprintln(w, tileID)
	}
	if err := w.Flush(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
