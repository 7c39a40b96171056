// Package world provides tile coordinates and the distance metrics used to
// compare them.
package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// regionShift is the log2 of a region's edge length in tiles (64).
const regionShift = 6

// Point is a single game tile, keyed by x, y and plane.
// Two points are only spatially comparable when their planes are equal.
type Point struct {
	X     int `json:"x" yaml:"x"`
	Y     int `json:"y" yaml:"y"`
	Plane int `json:"plane" yaml:"plane"`
}

// NewPoint returns the tile at (x, y) on plane.
func NewPoint(x, y, plane int) Point {
	return Point{X: x, Y: y, Plane: plane}
}

// RegionID returns the coarse 64x64 region bucket containing p.
//
// Postcondition: the result depends only on X and Y.
func (p Point) RegionID() int {
	return ((p.X >> regionShift) << 8) | (p.Y >> regionShift)
}

// SamePlane reports whether p and q are on the same plane.
func (p Point) SamePlane(q Point) bool {
	return p.Plane == q.Plane
}

// String renders p as "(x, y, plane)".
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Plane)
}

// ParsePoint parses "x,y" or "x,y,plane". Plane defaults to 0.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return Point{}, fmt.Errorf("point %q: want x,y or x,y,plane", s)
	}
	var vals [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Point{}, fmt.Errorf("point %q: %w", s, err)
		}
		vals[i] = n
	}
	return NewPoint(vals[0], vals[1], vals[2]), nil
}

// Metric measures the distance between two tiles on the same plane.
type Metric func(a, b Point) int

// Chebyshev returns the king-move distance between a and b: the larger of the
// absolute x and y deltas. Plane is ignored; callers filter by plane first.
func Chebyshev(a, b Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// Euclidean returns the straight-line distance between a and b in tiles,
// ignoring plane.
func Euclidean(a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Bearing returns the compass bearing from a to b in degrees, where 0 is
// north (+y) and angles increase clockwise. The result is in [0, 360).
func Bearing(a, b Point) float64 {
	deg := math.Atan2(float64(b.X-a.X), float64(b.Y-a.Y)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// compassPoints lists the 16 compass points clockwise from north.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// Compass maps a bearing in degrees to one of the 16 compass points. Each
// point covers 22.5 degrees centred on its heading.
func Compass(degrees float64) string {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	idx := int(math.Floor((d+11.25)/22.5)) % len(compassPoints)
	return compassPoints[idx]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
