package geo

import (
	"iter"

	"github.com/eak1mov/go-tilecover/tile"
)

// BelowLine returns an iterator over the tiles crossed by the polyline, in walking order.
// A tile is never yielded twice in a row. Segments with an endpoint outside
// the Web Mercator range are skipped.
func BelowLine(line iter.Seq[Point], zoom uint32) iter.Seq[tile.ID] {
	return func(yield func(tile.ID) bool) {
		previous := tile.Empty
		first := true
		var from Point
		for to := range line {
			if first {
				from, first = to, false
				continue
			}
			for t := range belowSegment(from, to, zoom) {
				if t == previous {
					continue
				}
				previous = t
				if !yield(t) {
					return
				}
			}
			from = to
		}
	}
}

// belowSegment walks from the tile of p1 to the tile of p2, stepping one
// column or one row at a time along the line: y = a*x + b, with x and y
// swapped for lines steeper than 1/2.
func belowSegment(p1, p2 Point, zoom uint32) iter.Seq[tile.ID] {
	return func(yield func(tile.ID) bool) {
		start, ok := TryAtLocation(p1.Lon, p1.Lat, zoom)
		if !ok {
			return
		}
		end, ok := TryAtLocation(p2.Lon, p2.Lat, zoom)
		if !ok {
			return
		}

		a := (p2.Lat - p1.Lat) / (p2.Lon - p1.Lon)
		vertical := a > 0.5 || a < -0.5
		var b float64
		if vertical {
			a = (p2.Lon - p1.Lon) / (p2.Lat - p1.Lat)
			b = p1.Lon - a*p1.Lat
		} else {
			b = p1.Lat - a*p1.Lon
		}
		lonAt := func(lat float64) float64 {
			if vertical {
				return a*lat + b
			}
			return (lat - b) / a
		}
		latAt := func(lon float64) float64 {
			if vertical {
				return (lon - b) / a
			}
			return a*lon + b
		}

		cur := start
		for cur.X != end.X || cur.Y != end.Y {
			if !yield(cur) {
				return
			}
			cur = nextTile(cur, end, BoundsOf(cur), lonAt, latAt)
		}
		yield(end)
	}
}

func nextTile(cur, end tile.ID, bounds Bounds, lonAt, latAt func(float64) float64) tile.ID {
	insideRows := func(lat float64) bool {
		return lat <= bounds.Top && lat >= bounds.Bottom
	}
	insideColumns := func(lon float64) bool {
		return lon >= bounds.Left && lon <= bounds.Right
	}

	switch {
	case end.X > cur.X && insideRows(latAt(bounds.Right)):
		cur.X++
	case end.X < cur.X && insideRows(latAt(bounds.Left)):
		cur.X--
	case end.Y > cur.Y && insideColumns(lonAt(bounds.Bottom)):
		cur.Y++
	case end.Y < cur.Y && insideColumns(lonAt(bounds.Top)):
		cur.Y--

	// The line leaves the tile through a corner: no edge test passed.
	case end.X > cur.X:
		cur.X++
	case end.X < cur.X:
		cur.X--
	case end.Y > cur.Y:
		cur.Y++
	default:
		cur.Y--
	}
	return cur
}
