package circular

import "math"

// FullTurn is one revolution, in radians.
const FullTurn = 2 * math.Pi

// CoverageAngle returns the angle of 1-based position pos on a genome of
// length n.
func CoverageAngle(pos, n int) float64 {
	return FullTurn * float64(pos-1) / float64(n)
}

// FeatureAngle returns the angle of 0-based offset off on a genome of length
// n.  off == n maps to FullTurn, not 0, so that an arc ending at the last
// base closes the circle.
func FeatureAngle(off, n int) float64 {
	return FullTurn * float64(off) / float64(n)
}

// Normalize returns a in [0, FullTurn).
func Normalize(a float64) float64 {
	a = math.Mod(a, FullTurn)
	if a < 0 {
		a += FullTurn
	}
	return a
}

// AngularDistance returns the shortest separation between a and b around
// the circle.  Both must already be in [0, FullTurn).
func AngularDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, FullTurn-d)
}

// Arc is a clockwise angular range [Start, End].
type Arc struct {
	Start, End float64
}

// Sweep returns the angular extent of the arc.
func (a Arc) Sweep() float64 {
	return a.End - a.Start
}

// Wraps reports whether the 0-based half-open interval [start, end) crosses
// the origin, i.e. end is numerically before start.
func Wraps(start, end int) bool {
	return end < start
}

// Span returns the number of bases covered by [start, end) on a genome of
// length n, accounting for origin-wrapping intervals.
func Span(start, end, n int) int {
	if Wraps(start, end) {
		return n - start + end
	}
	return end - start
}

// SpanArcs returns the arcs covering [start, end).  A wrapping interval is
// split in two: start -> FullTurn and 0 -> end.
func SpanArcs(start, end, n int) []Arc {
	if Wraps(start, end) {
		return []Arc{
			{Start: FeatureAngle(start, n), End: FullTurn},
			{Start: 0, End: FeatureAngle(end, n)},
		}
	}
	return []Arc{{Start: FeatureAngle(start, n), End: FeatureAngle(end, n)}}
}

// MidAngle returns the angle of the midpoint of [start, end).  For a
// wrapping interval the midpoint is taken across the origin.
func MidAngle(start, end, n int) float64 {
	var mid float64
	if end > start {
		mid = float64(start+end) / 2
	} else {
		mid = math.Mod(float64(start+end+n)/2, float64(n))
	}
	return FullTurn * mid / float64(n)
}

// Linspace returns num evenly spaced angles from a.Start to a.End inclusive.
// num < 2 yields the two endpoints.
func (a Arc) Linspace(num int) []float64 {
	if num < 2 {
		return []float64{a.Start, a.End}
	}
	out := make([]float64, num)
	step := (a.End - a.Start) / float64(num-1)
	for i := range out {
		out[i] = a.Start + step*float64(i)
	}
	out[num-1] = a.End
	return out
}
