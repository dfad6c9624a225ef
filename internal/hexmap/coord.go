// Package hexmap provides the hex battlefield: cube-coordinate math, the
// tile grid, pathfinding, and line of sight.
// Uses axial coordinates (q, r); the third cube coordinate s is derived.
package hexmap

import "math"

// HexCoord represents a position on the hex grid using axial coordinates.
// The cube constraint q + r + s = 0 always holds, with s derived.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Directions defines the six neighbor offsets in axial coordinates,
// counterclockwise starting east. Opposite directions differ by 3.
var Directions = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Add returns the componentwise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Sub returns the componentwise difference of two coordinates.
func (h HexCoord) Sub(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q - o.Q, R: h.R - o.R}
}

// Scale multiplies both components by k.
func (h HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k}
}

// Neighbor returns the adjacent coordinate in the given direction (0-5).
func (h HexCoord) Neighbor(dir int) HexCoord {
	return h.Add(Directions[((dir%6)+6)%6])
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range Directions {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates: half the
// cube-coordinate Manhattan distance, exact in integers.
func Distance(a, b HexCoord) int {
	return (abs(a.Q-b.Q) + abs(a.R-b.R) + abs(a.S()-b.S())) / 2
}

// HexesInRange returns every coordinate within distance n of h, including
// h itself. The result always contains 3n²+3n+1 coordinates.
func (h HexCoord) HexesInRange(n int) []HexCoord {
	if n < 0 {
		return nil
	}
	result := make([]HexCoord, 0, 3*n*n+3*n+1)
	for dq := -n; dq <= n; dq++ {
		lo := max(-n, -dq-n)
		hi := min(n, -dq+n)
		for dr := lo; dr <= hi; dr++ {
			result = append(result, HexCoord{Q: h.Q + dq, R: h.R + dr})
		}
	}
	return result
}

// HexesInRing returns the coordinates at exactly the given distance from h,
// ordered by walking the ring. Radius 0 yields h alone.
func (h HexCoord) HexesInRing(radius int) []HexCoord {
	if radius < 0 {
		return nil
	}
	if radius == 0 {
		return []HexCoord{h}
	}
	result := make([]HexCoord, 0, 6*radius)
	// Start at the hex radius steps in direction 4, then walk each of the
	// six sides.
	cur := h.Add(Directions[4].Scale(radius))
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			result = append(result, cur)
			cur = cur.Neighbor(side)
		}
	}
	return result
}

// LineTo returns the sequence of hexes from h to target inclusive, produced
// by linear interpolation in cube space rounded to the nearest hex. The
// result has Distance(h, target)+1 entries and consecutive entries are
// adjacent.
func (h HexCoord) LineTo(target HexCoord) []HexCoord {
	n := Distance(h, target)
	if n == 0 {
		return []HexCoord{h}
	}
	// Nudge the endpoints off exact cube-space midpoints so rounding never
	// flips between two equally-near hexes along the line.
	const eps = 1e-6
	aq, ar, as := float64(h.Q)+eps, float64(h.R)+eps, float64(h.S())-2*eps
	bq, br, bs := float64(target.Q)+eps, float64(target.R)+eps, float64(target.S())-2*eps

	result := make([]HexCoord, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		result = append(result, cubeRound(
			aq+(bq-aq)*t,
			ar+(br-ar)*t,
			as+(bs-as)*t,
		))
	}
	return result
}

// cubeRound rounds fractional cube coordinates to the nearest hex while
// preserving q + r + s = 0.
func cubeRound(fq, fr, fs float64) HexCoord {
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}

// OffsetCoord is the column/row representation used for grid bounds,
// storage, and rendering. Odd-r layout: odd rows shift right.
type OffsetCoord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ToOffset converts axial coordinates to odd-r offset coordinates.
// FromOffset(h.ToOffset()) == h for every coordinate.
func (h HexCoord) ToOffset() OffsetCoord {
	return OffsetCoord{Col: h.Q + (h.R-(h.R&1))/2, Row: h.R}
}

// FromOffset converts odd-r offset coordinates back to axial coordinates.
func FromOffset(o OffsetCoord) HexCoord {
	return HexCoord{Q: o.Col - (o.Row-(o.Row&1))/2, R: o.Row}
}

// Orientation selects the pixel-space layout of the grid.
type Orientation uint8

const (
	OrientationPointy Orientation = iota // Pointy-top hexes, rows run horizontal
	OrientationFlat                      // Flat-top hexes, columns run vertical
)

const sqrt3 = 1.7320508075688772

// ToPixel returns the center of the hex in pixel space for the given
// orientation and hex size (center-to-corner radius).
func (h HexCoord) ToPixel(o Orientation, size float64) (x, y float64) {
	q, r := float64(h.Q), float64(h.R)
	if o == OrientationFlat {
		return size * 1.5 * q, size * (sqrt3/2*q + sqrt3*r)
	}
	return size * (sqrt3*q + sqrt3/2*r), size * 1.5 * r
}

// FromPixel returns the hex whose center is nearest the given pixel
// position. Round-trips exactly with ToPixel for any hex.
func FromPixel(o Orientation, x, y, size float64) HexCoord {
	var fq, fr float64
	if o == OrientationFlat {
		fq = (2.0 / 3.0) * x / size
		fr = (-1.0/3.0*x + sqrt3/3*y) / size
	} else {
		fq = (sqrt3/3*x - 1.0/3.0*y) / size
		fr = (2.0 / 3.0) * y / size
	}
	return cubeRound(fq, fr, -fq-fr)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
