package plasmidmap

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/grailbio/plasmidqc/circular"
	"github.com/grailbio/plasmidqc/encoding/genbank"
)

const (
	// MinLabelSpan is the smallest feature span, in bases, that is labelled.
	MinLabelSpan = 50
	// MinMatchLength is the /match_length value below which a feature is not
	// labelled.
	MinMatchLength = 20.0
	// SmallFeatureFrac is the fraction of the genome at or below which a
	// feature gets a compact label with no leader line.
	SmallFeatureFrac = 0.02

	maxLabelLen     = 30
	truncatedLen    = 27
	largeCharWidth  = 0.015
	smallCharWidth  = 0.012
	labelBuffer     = 0.05
	offsetStep      = math.Pi / 36 // 5 degrees
	maxOffsetSteps  = 24
	tierMinPlaced   = 8
	innerTierFactor = 0.9
	outerTierFactor = 1.1
)

// labelKeys are the qualifiers searched, in order, for a feature's label.
var labelKeys = []string{"label", "gene", "product", "note"}

// LabelCandidate is a feature that qualifies for a label.
type LabelCandidate struct {
	Text string
	Type string
	// Start and End are the 0-based location bounds.
	Start, End int
	// Span is the number of bases covered, counting across the origin.
	Span int
	// MidAngle is the preferred label angle.
	MidAngle float64
	// Small is set for features no larger than SmallFeatureFrac of the
	// genome.
	Small bool
}

// CleanLabel prepares label text for display: underscores become spaces, and
// text longer than 30 characters is cut to 27 followed by "...".
func CleanLabel(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if utf8.RuneCountInString(s) > maxLabelLen {
		s = string([]rune(s)[:truncatedLen]) + "..."
	}
	return s
}

// LabelWidth estimates the angular width, in radians, of a cleaned label.
func LabelWidth(clean string, small bool) float64 {
	charWidth := largeCharWidth
	if small {
		charWidth = smallCharWidth
	}
	return float64(utf8.RuneCountInString(clean)) * charWidth
}

func labelText(f genbank.Feature, start int) string {
	for _, key := range labelKeys {
		if v, ok := f.Qualifiers.Get(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return fmt.Sprintf("%s_%d", f.Type, start)
}

// lowMatch reports whether f carries a parseable /match_length below
// MinMatchLength.
func lowMatch(f genbank.Feature) bool {
	v, ok := f.Qualifiers.Get("match_length")
	if !ok {
		return false
	}
	m, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && m < MinMatchLength
}

// LabelCandidates returns the palette-typed features of a genome of length n
// that qualify for a label, largest span first.  Ties keep feature order.
func LabelCandidates(features []genbank.Feature, n int) []LabelCandidate {
	var cands []LabelCandidate
	for _, f := range features {
		if _, ok := StyleOf(f.Type); !ok {
			continue
		}
		start, end := f.Location.Start(), f.Location.End()
		// A zero-length location (a^b) has span 0 and is never labelled.
		span := circular.Span(start, end, n)
		if span < MinLabelSpan || lowMatch(f) {
			continue
		}
		cands = append(cands, LabelCandidate{
			Text:     CleanLabel(labelText(f, start)),
			Type:     f.Type,
			Start:    start,
			End:      end,
			Span:     span,
			MidAngle: circular.MidAngle(start, end, n),
			Small:    float64(span) <= float64(n)*SmallFeatureFrac,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Span > cands[j].Span })
	return cands
}

// Placement is where a label ended up.
type Placement struct {
	LabelCandidate
	// Angle is the chosen label angle, in [0, 2π).
	Angle float64
	// Width is the estimated angular width of the label.
	Width float64
	// Overlap is the summed shortfall against already placed labels at
	// Angle; it is zero when a conflict-free slot was found.
	Overlap float64
	// RadiusFactor scales the label radius; it alternates between two tiers
	// once the map is crowded.
	RadiusFactor float64
}

// searchOffsets returns the angular offsets tried for each label: the
// preferred angle, then alternately clockwise and counter-clockwise in 5
// degree steps out to 120 degrees.
func searchOffsets() []float64 {
	offsets := make([]float64, 0, 2*maxOffsetSteps+1)
	offsets = append(offsets, 0)
	for i := 1; i <= maxOffsetSteps; i++ {
		off := float64(i) * offsetStep
		offsets = append(offsets, off, -off)
	}
	return offsets
}

// overlap returns the total separation shortfall of a label of width w at
// angle a against placed.
func overlap(a, w float64, placed []Placement) float64 {
	var total float64
	for _, p := range placed {
		required := (w+p.Width)/2 + labelBuffer
		if d := circular.AngularDistance(a, p.Angle); d < required {
			total += required - d
		}
	}
	return total
}

// PlaceLabels assigns each candidate an angle, in order, greedily.  The first
// offset at which the label clears every placed label by half their combined
// widths plus a buffer wins; if none does, the offset with the least total
// overlap is used (earliest on ties).  The result is locally good, not
// globally optimal.
func PlaceLabels(cands []LabelCandidate) []Placement {
	offsets := searchOffsets()
	placed := make([]Placement, 0, len(cands))
	for _, c := range cands {
		w := LabelWidth(c.Text, c.Small)
		best, bestOverlap := c.MidAngle, math.Inf(1)
		for _, off := range offsets {
			a := circular.Normalize(c.MidAngle + off)
			o := overlap(a, w, placed)
			if o == 0 {
				best, bestOverlap = a, 0
				break
			}
			if o < bestOverlap {
				best, bestOverlap = a, o
			}
		}
		p := Placement{LabelCandidate: c, Angle: best, Width: w, Overlap: bestOverlap, RadiusFactor: 1}
		placed = append(placed, p)
		if n := len(placed); n > tierMinPlaced {
			if n%2 == 0 {
				placed[n-1].RadiusFactor = innerTierFactor
			} else {
				placed[n-1].RadiusFactor = outerTierFactor
			}
		}
	}
	return placed
}
