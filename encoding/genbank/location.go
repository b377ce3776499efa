package genbank

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Strand is the strand a feature lies on.
type Strand int8

const (
	// StrandFwd is the forward (+) strand; it is the default.
	StrandFwd Strand = 1
	// StrandRev marks a complement(...) location.
	StrandRev Strand = -1
)

// Span is a 0-based half-open interval [Start, End).  On circular records a
// location written as "5300..120" crosses the origin and yields End < Start.
type Span struct {
	Start, End int
}

// Location is the parsed location of a feature.  Parts holds one Span for a
// simple location, and one per element of a join(...) or order(...).
type Location struct {
	Parts  []Span
	Strand Strand
	// Op is "join" or "order" for compound locations, and "" otherwise.
	Op string
}

// Compound reports whether the location has more than one part.
func (l Location) Compound() bool {
	return len(l.Parts) > 1
}

// Start returns the smallest part start.  For a simple location this is just
// the start of its only part, even when that part crosses the origin.
func (l Location) Start() int {
	if len(l.Parts) == 0 {
		return 0
	}
	s := l.Parts[0].Start
	for _, p := range l.Parts[1:] {
		if p.Start < s {
			s = p.Start
		}
	}
	return s
}

// End returns the largest part end.
func (l Location) End() int {
	if len(l.Parts) == 0 {
		return 0
	}
	e := l.Parts[0].End
	for _, p := range l.Parts[1:] {
		if p.End > e {
			e = p.End
		}
	}
	return e
}

// ParseLocation parses a GenBank feature location such as "1..100",
// "complement(<5..>200)", or "join(5300..5386,1..120)".  Remote references
// ("J00194.1:100..202") are accepted with the accession dropped.
func ParseLocation(s string) (Location, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return Location{}, errors.Errorf("empty location")
	}
	loc, err := parseLocation(s)
	if err != nil {
		return Location{}, errors.Wrapf(err, "location %q", s)
	}
	return loc, nil
}

func parseLocation(s string) (Location, error) {
	if inner, ok := unwrap(s, "complement"); ok {
		loc, err := parseLocation(inner)
		if err != nil {
			return loc, err
		}
		// Parts of a complemented compound location are listed 3' to 5'.
		for i, j := 0, len(loc.Parts)-1; i < j; i, j = i+1, j-1 {
			loc.Parts[i], loc.Parts[j] = loc.Parts[j], loc.Parts[i]
		}
		loc.Strand = -loc.Strand
		return loc, nil
	}
	for _, op := range []string{"join", "order"} {
		inner, ok := unwrap(s, op)
		if !ok {
			continue
		}
		loc := Location{Strand: StrandFwd, Op: op}
		for _, elem := range splitTopLevel(inner) {
			sub, err := parseLocation(elem)
			if err != nil {
				return Location{}, err
			}
			loc.Parts = append(loc.Parts, sub.Parts...)
			// A join of complemented parts is on the reverse strand.
			if sub.Strand == StrandRev {
				loc.Strand = StrandRev
			}
		}
		if len(loc.Parts) == 0 {
			return Location{}, errors.Errorf("empty %s()", op)
		}
		return loc, nil
	}
	span, err := parseSpan(s)
	if err != nil {
		return Location{}, err
	}
	return Location{Parts: []Span{span}, Strand: StrandFwd}, nil
}

// unwrap returns X for s == name+"("+X+")".
func unwrap(s, name string) (string, bool) {
	if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(name)+1 : len(s)-1], true
}

// splitTopLevel splits s on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func parseSpan(s string) (Span, error) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ".."); i >= 0 {
		start, err := parseBound(s[:i])
		if err != nil {
			return Span{}, err
		}
		end, err := parseBound(s[i+2:])
		if err != nil {
			return Span{}, err
		}
		return Span{Start: start - 1, End: end}, nil
	}
	if i := strings.IndexByte(s, '^'); i >= 0 {
		// Site between two bases: zero-length, placed after the first.
		pos, err := parseBound(s[:i])
		if err != nil {
			return Span{}, err
		}
		if _, err := parseBound(s[i+1:]); err != nil {
			return Span{}, err
		}
		return Span{Start: pos, End: pos}, nil
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		// Single base somewhere within a range; take the whole range.
		start, err := parseBound(s[:i])
		if err != nil {
			return Span{}, err
		}
		end, err := parseBound(s[i+1:])
		if err != nil {
			return Span{}, err
		}
		return Span{Start: start - 1, End: end}, nil
	}
	pos, err := parseBound(s)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: pos - 1, End: pos}, nil
}

// parseBound parses a 1-based coordinate, ignoring partial-end markers.
func parseBound(s string) (int, error) {
	s = strings.Trim(s, "<>()")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("bad coordinate %q", s)
	}
	if v < 0 {
		return 0, errors.Errorf("negative coordinate %q", s)
	}
	return v, nil
}
