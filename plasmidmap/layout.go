package plasmidmap

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/grailbio/plasmidqc/circular"
	"github.com/grailbio/plasmidqc/encoding/genbank"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Radii holds the radial layout of a map, in read-depth units.  Everything is
// derived from the maximum depth so that the coverage trace always sits
// inside the feature ring.
type Radii struct {
	MaxCov  float64
	Feature float64
	Label   float64
	Scale   float64
	// Outer is the thin black ring just inside the kilobase labels.
	Outer float64
	// Limit is the radius mapped to the edge of the plot area.
	Limit float64
}

// NewRadii returns the layout for a coverage track whose deepest position is
// maxCov.  A track with no reads at all is laid out as if maxCov were 1.
func NewRadii(maxCov float64) Radii {
	base := maxCov
	if !(base > 0) {
		base = 1
	}
	fr := base * 1.05
	sr := fr * 1.4
	return Radii{
		MaxCov:  maxCov,
		Feature: fr,
		Label:   fr * 1.25,
		Scale:   sr,
		Outer:   sr * 0.85,
		Limit:   sr * 1.1,
	}
}

// GridLevels are the depths at which grey reference rings are drawn, when
// they do not exceed the maximum depth.
var GridLevels = []int{25, 50, 75, 100}

// NumSpokes is the number of radial grid lines.
const NumSpokes = 12

// FeatureArc is one drawn arc of a feature.  A feature contributes several
// arcs when its location is compound or wraps the origin.
type FeatureArc struct {
	Type string
	circular.Arc
	// Samples is the number of points the arc is drawn with.
	Samples int
}

func arcSamples(bases int) int {
	if n := bases / 10; n > 10 {
		return n
	}
	return 10
}

// FeatureArcs returns the arcs of every palette-typed feature on a genome of
// length n, in feature order.  Compound locations give one arc per part; a
// simple location whose end precedes its start is split at the origin.
func FeatureArcs(features []genbank.Feature, n int) []FeatureArc {
	var arcs []FeatureArc
	add := func(typ string, start, end int) {
		for _, a := range circular.SpanArcs(start, end, n) {
			var bases int
			switch {
			case !circular.Wraps(start, end):
				bases = end - start
			case a.Start == 0:
				bases = end
			default:
				bases = n - start
			}
			arcs = append(arcs, FeatureArc{Type: typ, Arc: a, Samples: arcSamples(bases)})
		}
	}
	for _, f := range features {
		if _, ok := StyleOf(f.Type); !ok {
			continue
		}
		loc := f.Location
		if loc.Compound() {
			for _, p := range loc.Parts {
				// Parts are drawn independently and never split.
				arcs = append(arcs, FeatureArc{
					Type:    f.Type,
					Arc:     circular.Arc{Start: circular.FeatureAngle(p.Start, n), End: circular.FeatureAngle(p.End, n)},
					Samples: arcSamples(p.End - p.Start),
				})
			}
			continue
		}
		add(f.Type, loc.Start(), loc.End())
	}
	return arcs
}

// ScaleMarker is one kilobase tick.
type ScaleMarker struct {
	// Pos is the 0-based offset of the tick.
	Pos   int
	Angle float64
	Label string
	// Rotation is the counter-clockwise text rotation, in degrees.
	Rotation float64
}

// ScaleMarkers returns one marker per 1000 bases below n, starting at the
// origin.
func ScaleMarkers(n int) []ScaleMarker {
	var markers []ScaleMarker
	for pos := 0; pos < n; pos += 1000 {
		angle := circular.FeatureAngle(pos, n)
		label := "0"
		if pos > 0 {
			label = fmt.Sprintf("%d kb", pos/1000)
		}
		deg := angle * 180 / math.Pi
		if angle > math.Pi/2 && angle < 3*math.Pi/2 {
			deg -= 90
		}
		markers = append(markers, ScaleMarker{Pos: pos, Angle: angle, Label: label, Rotation: deg})
	}
	return markers
}

var numberPrinter = message.NewPrinter(language.English)

// Title returns the two title lines: the record ID (or, if it is blank or
// ".", the base name of the GenBank file without its extension) and the
// genome length with thousands separators.
func Title(rec *genbank.Record, genbankPath string) [2]string {
	name := rec.ID
	if id := strings.TrimSpace(rec.ID); id == "" || id == "." {
		base := filepath.Base(genbankPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return [2]string{name, numberPrinter.Sprintf("%d bp", rec.Len())}
}
