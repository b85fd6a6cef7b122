package main

import (
	"bufio"
	"cmp"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/eak1mov/go-tilecover/index"
	"github.com/eak1mov/go-tilecover/tile"
	"github.com/eak1mov/go-tilecover/tileset"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

type coverCmd struct {
	inputFormat string
	inputPaths  pathList
	outputPath  string
	zoom        int
	invert      bool
	parallelism int
}

func (c *coverCmd) Name() string     { return "cover" }
func (c *coverCmd) Synopsis() string { return "print tile coverage of tilesets" }
func (c *coverCmd) Usage() string {
	return "tilecover cover -i <path> [-i <path> ...] [-if <format> -o <path> -z <zoom> -invert]\n"
}
func (c *coverCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.inputPaths, "i", "Input path, may be repeated")
	f.StringVar(&c.inputFormat, "if", "", "Input format (mbtiles, pmtiles, index, xyz)")
	f.StringVar(&c.outputPath, "o", "", "Write the coverage as a tile index file")
	f.IntVar(&c.zoom, "z", -1, "Print the number of covered tiles at zoom instead of the coverage")
	f.BoolVar(&c.invert, "invert", false, "Print the uncovered area")
	f.IntVar(&c.parallelism, "p", 4, "Number of inputs read concurrently")
}

// countingVisitor reports every visited tile to the progress bar.
type countingVisitor struct {
	tile.Visitor
	bar *progressbar.ProgressBar
}

func (v countingVisitor) VisitTileIDs(visitor func(tile.ID) error) error {
	return v.Visitor.VisitTileIDs(func(tileID tile.ID) error {
		v.bar.Add(1)
		return visitor(tileID)
	})
}

func collect(ctx context.Context, format, inputPath string, bar *progressbar.ProgressBar) (*tileset.Set, error) {
	reader, err := openReader(format, inputPath, slog.Default())
	if err != nil {
		return nil, err
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	s, err := tileset.Collect(ctx, countingVisitor{reader, bar})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}
	return s, nil
}

// coverage reads all inputs concurrently and merges their coverage.
func (c *coverCmd) coverage(ctx context.Context) (*tileset.Set, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount())
	defer func() {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}()

	sets := make([]*tileset.Set, len(c.inputPaths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.parallelism, 1))
	for i, inputPath := range c.inputPaths {
		g.Go(func() error {
			s, err := collect(ctx, c.inputFormat, inputPath, bar)
			sets[i] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := tileset.New()
	for _, s := range sets {
		result.AddSet(s)
	}
	return result, nil
}

func sortedTiles(s *tileset.Set) []tile.ID {
	return slices.SortedFunc(s.All(), func(a, b tile.ID) int {
		return cmp.Compare(a.GlobalID(), b.GlobalID())
	})
}

func writeCoverage(w io.Writer, s *tileset.Set) error {
	bw := bufio.NewWriter(w)
	for _, tileID := range sortedTiles(s) {
		if _, err := fmt.Fprintln(bw, tileID); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeIndex(filePath string, s *tileset.Set) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if err := index.WriteTiles(file, slices.Values(sortedTiles(s))); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (c *coverCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if len(c.inputPaths) == 0 {
		log.Println("no input paths")
		return subcommands.ExitUsageError
	}

	s, err := c.coverage(ctx)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	log.Printf("collected %d coverage tiles from %d inputs", s.Len(), len(c.inputPaths))

	if c.invert {
		s = s.Inverted()
	}

	if c.zoom >= 0 {
		zoom, err := parseZoom(c.zoom)
		if err != nil {
			log.Println(err)
			return subcommands.ExitUsageError
		}
		count, err := s.CountAtZoom(zoom)
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		fmt.Println(count)
		return subcommands.ExitSuccess
	}

	if c.outputPath != "" {
		if err := writeIndex(c.outputPath, s); err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if err := writeCoverage(os.Stdout, s); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
