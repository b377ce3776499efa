package plasmidmap

import (
	"strings"

	"github.com/grailbio/plasmidqc/encoding/genbank"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// FeatureStyle is how one feature type is drawn.
type FeatureStyle struct {
	Type string
	// Hex is the "#RRGGBB" arc colour.
	Hex string
	// Display is the legend text.
	Display string
}

// Color returns the arc colour.
func (s FeatureStyle) Color() drawing.Color {
	return hexColor(s.Hex)
}

// Palette lists the feature types that are drawn, in legend order.  Features
// of any other type are ignored.
var Palette = []FeatureStyle{
	{"gene", "#4472C4", "Gene"},
	{"CDS", "#70AD47", "Coding Sequence"},
	{"promoter", "#FFC000", "Promoter"},
	{"terminator", "#C5504B", "Terminator"},
	{"origin", "#7030A0", "Origin"},
	{"rep_origin", "#7030A0", "Replication Origin"},
	{"misc_feature", "#7F7F7F", "Misc Feature"},
	{"polyA_signal", "#8B4513", "PolyA Signal"},
	{"protein_bind", "#00B0F0", "Protein Binding"},
	{"enhancer", "#FF69B4", "Enhancer"},
}

var paletteIndex = func() map[string]int {
	m := make(map[string]int, len(Palette))
	for i, s := range Palette {
		m[s.Type] = i
	}
	return m
}()

// StyleOf returns the style for a feature type.
func StyleOf(featureType string) (FeatureStyle, bool) {
	i, ok := paletteIndex[featureType]
	if !ok {
		return FeatureStyle{}, false
	}
	return Palette[i], true
}

// Fixed colours outside the feature palette.
var (
	coverageColor = hexColor("#ADD8E6") // lightblue
	mismatchColor = hexColor("#FF0000")
	gridColor     = hexColor("#808080")
)

// Legend labels for the non-feature entries.
const (
	LegendTitle    = "Feature Types"
	CoverageLabel  = "Coverage"
	MismatchLabel  = "High Mismatch (>10%)"
	coverageAlpha  = 0.4
	outlineAlpha   = 0.6
	legendCovAlpha = 0.6
)

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// withAlpha returns c at opacity a in [0, 1].
func withAlpha(c drawing.Color, a float64) drawing.Color {
	return c.WithAlpha(uint8(a*255 + 0.5))
}

// PresentTypes returns the palette types that occur among features, in
// palette order.  Every palette-typed feature counts, whether or not it is
// large enough to be labelled.
func PresentTypes(features []genbank.Feature) []string {
	seen := make([]bool, len(Palette))
	for _, f := range features {
		if i, ok := paletteIndex[f.Type]; ok {
			seen[i] = true
		}
	}
	var types []string
	for i, s := range Palette {
		if seen[i] {
			types = append(types, s.Type)
		}
	}
	return types
}

// LegendEntry is one legend row: a colour swatch and its text.
type LegendEntry struct {
	Label string
	Color drawing.Color
}

// LegendEntries returns the legend rows: one per present feature type in
// palette order, then the coverage trace, then the high-mismatch marker if
// mismatches were requested and at least one position qualified.
func LegendEntries(presentTypes []string, showMismatches bool, nMismatches int) []LegendEntry {
	var entries []LegendEntry
	for _, t := range presentTypes {
		style, ok := StyleOf(t)
		if !ok {
			continue
		}
		entries = append(entries, LegendEntry{Label: style.Display, Color: style.Color()})
	}
	entries = append(entries, LegendEntry{Label: CoverageLabel, Color: withAlpha(coverageColor, legendCovAlpha)})
	if showMismatches && nMismatches > 0 {
		entries = append(entries, LegendEntry{Label: MismatchLabel, Color: mismatchColor})
	}
	return entries
}
