package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/eak1mov/go-tilecover/geo"
	"github.com/eak1mov/go-tilecover/pm"
	"github.com/eak1mov/go-tilecover/tile"
	"github.com/google/subcommands"
)

type tileCmd struct {
	tileID string
}

func (c *tileCmd) Name() string     { return "tile" }
func (c *tileCmd) Synopsis() string { return "print ids, relatives and bounds of a tile" }
func (c *tileCmd) Usage() string {
	return "tilecover tile -t <z/x/y>\n"
}
func (c *tileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tileID, "t", "", "Tile in z/x/y form")
}

func parseTile(value string) (tile.ID, error) {
	var tileID tile.ID
	if _, err := fmt.Sscanf(value, "%d/%d/%d", &tileID.Z, &tileID.X, &tileID.Y); err != nil {
		return tile.Empty, fmt.Errorf("invalid tile %q: %w", value, err)
	}
	if tileID.String() != value || !tileID.Valid() {
		return tile.Empty, fmt.Errorf("invalid tile %q", value)
	}
	return tileID, nil
}

func joinTiles(tiles []tile.ID) string {
	values := make([]string, 0, len(tiles))
	for _, t := range tiles {
		values = append(values, t.String())
	}
	return strings.Join(values, " ")
}

func describeTile(w io.Writer, tileID tile.ID) {
	fmt.Fprintf(w, "tile:       %v\n", tileID)
	fmt.Fprintf(w, "global id:  %d\n", tileID.GlobalID())
	fmt.Fprintf(w, "local id:   %d\n", tileID.LocalID())
	fmt.Fprintf(w, "pmtiles id: %d\n", pm.TileCode(tileID))
	if parent, ok := tileID.Parent(); ok {
		fmt.Fprintf(w, "parent:     %v\n", parent)
	}
	if tileID.Z < tile.MaxZoom {
		children := tileID.Children()
		fmt.Fprintf(w, "children:   %s\n", joinTiles(children[:]))
	}

	fmt.Fprintf(w, "neighbours: %s\n", joinTiles(slices.Collect(geo.Neighbours(tileID))))

	b := geo.BoundsOf(tileID)
	fmt.Fprintf(w, "bounds:     %.6f,%.6f,%.6f,%.6f\n", b.Left, b.Bottom, b.Right, b.Top)
	fmt.Fprintf(w, "center:     %.6f,%.6f\n", b.CenterLongitude(), b.CenterLatitude())
}

func (c *tileCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	tileID, err := parseTile(c.tileID)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}
	describeTile(os.Stdout, tileID)
	return subcommands.ExitSuccess
}
