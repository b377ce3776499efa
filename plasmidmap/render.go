// Copyright 2021 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package plasmidmap

import (
	"image"
	"image/draw"
	"math"
	"strconv"

	"github.com/golang/freetype/truetype"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/plasmidqc/circular"
	"github.com/grailbio/plasmidqc/encoding/genbank"
	"github.com/grailbio/plasmidqc/pileup"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Figure geometry, in inches unless noted.
const (
	FigureWidth  = 14.0
	FigureHeight = 12.0

	figMargin    = 0.3
	legendRatio  = 0.25 // legend column width relative to the plot column
	columnGap    = 0.1  // relative to the mean column width
	titleGapPt   = 20
	circlePoints = 1000
)

// Font sizes and line widths, in points.
const (
	titleFontSize      = 14
	legendTitleSize    = 12
	legendFontSize     = 10
	largeLabelSize     = 9
	scaleFontSize      = 8
	gridFontSize       = 8
	smallLabelSize     = 7
	featureLineWidth   = 12
	backboneLineWidth  = 3
	outerRingLineWidth = 2
	mismatchLineWidth  = 2
	scaleLineWidth     = 1
	leaderLineWidth    = 0.8
	gridLineWidth      = 0.6
	outlineLineWidth   = 0.5
)

// Map is everything drawn on one plasmid map.
type Map struct {
	Title [2]string
	// Length is the genome length in bases.
	Length   int
	Coverage *pileup.CoverageTable
	Features []genbank.Feature
	// ShowMismatches enables high-mismatch highlighting.
	ShowMismatches bool
	// Mismatches are the 1-based positions highlighted when ShowMismatches
	// is set.
	Mismatches []int
}

// NewMap assembles a map from a parsed GenBank record (read from
// genbankPath) and its coverage table.
func NewMap(rec *genbank.Record, genbankPath string, cov *pileup.CoverageTable, showMismatches bool) (*Map, error) {
	if rec.Len() <= 0 {
		return nil, errors.E(errors.Invalid, "genbank record has zero length", genbankPath)
	}
	if cov == nil || len(cov.Samples) == 0 {
		return nil, errors.E(errors.Invalid, "empty coverage table")
	}
	m := &Map{
		Title:          Title(rec, genbankPath),
		Length:         rec.Len(),
		Coverage:       cov,
		Features:       rec.Features,
		ShowMismatches: showMismatches,
	}
	if showMismatches && cov.HasMismatches() {
		m.Mismatches = cov.HighMismatchPositions(pileup.DefaultMismatchRate)
	}
	return m, nil
}

// canvas draws in polar data coordinates onto an RGBA image.
type canvas struct {
	img  *image.RGBA
	gc   *drawing.RasterGraphicContext
	font *truetype.Font
	dpi  float64
	// cx, cy is the pole in pixels; scale converts depth units to pixels.
	cx, cy, scale float64
}

// px converts a length in points to pixels.
func (c *canvas) px(points float64) float64 {
	return points * c.dpi / 72
}

// xy maps (theta, r) to pixels.  Theta 0 is 12 o'clock, increasing
// clockwise.
func (c *canvas) xy(theta, r float64) (x, y float64) {
	return c.cx + c.scale*r*math.Sin(theta), c.cy - c.scale*r*math.Cos(theta)
}

func (c *canvas) stroke(p *drawing.Path, col drawing.Color, widthPt float64, butt bool) {
	c.gc.SetStrokeColor(col)
	c.gc.SetLineWidth(c.px(widthPt))
	if butt {
		c.gc.SetLineCap(drawing.ButtCap)
	} else {
		c.gc.SetLineCap(drawing.RoundCap)
	}
	c.gc.Stroke(p)
}

// polar strokes the polyline through (thetas[i], rs[i]).
func (c *canvas) polar(thetas []float64, r func(i int) float64, col drawing.Color, widthPt float64, butt bool) {
	if len(thetas) == 0 {
		return
	}
	p := &drawing.Path{}
	for i, t := range thetas {
		x, y := c.xy(t, r(i))
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	c.stroke(p, col, widthPt, butt)
}

func (c *canvas) radial(theta, r0, r1 float64, col drawing.Color, widthPt float64) {
	c.polar([]float64{theta, theta}, func(i int) float64 {
		if i == 0 {
			return r0
		}
		return r1
	}, col, widthPt, true)
}

func (c *canvas) ring(r float64, col drawing.Color, widthPt float64) {
	thetas := circular.Arc{End: circular.FullTurn}.Linspace(circlePoints)
	c.polar(thetas, func(int) float64 { return r }, col, widthPt, false)
}

func (c *canvas) rect(x0, y0, x1, y1 float64, fill, edge drawing.Color, edgePt float64) {
	p := &drawing.Path{}
	p.MoveTo(x0, y0)
	p.LineTo(x1, y0)
	p.LineTo(x1, y1)
	p.LineTo(x0, y1)
	p.Close()
	c.gc.SetFillColor(fill)
	if edgePt <= 0 {
		c.gc.Fill(p)
		return
	}
	c.gc.SetStrokeColor(edge)
	c.gc.SetLineWidth(c.px(edgePt))
	c.gc.SetLineCap(drawing.SquareCap)
	c.gc.FillStroke(p)
}

// textBounds returns the pixel extent of s at sizePt, relative to its
// baseline origin.
func (c *canvas) textBounds(s string, sizePt float64) (l, t, r, b float64, err error) {
	c.gc.SetFont(c.font)
	c.gc.SetFontSize(sizePt)
	return c.gc.GetStringBounds(s)
}

// text draws s centred on (x, y), rotated counter-clockwise by rotDeg.
func (c *canvas) text(s string, x, y, sizePt float64, col drawing.Color, rotDeg float64) error {
	l, t, r, b, err := c.textBounds(s, sizePt)
	if err != nil {
		return err
	}
	c.gc.SetFillColor(col)
	c.gc.Save()
	defer c.gc.Restore()
	c.gc.Translate(x, y)
	if rotDeg != 0 {
		c.gc.Rotate(-rotDeg * math.Pi / 180)
	}
	_, err = c.gc.FillStringAt(s, -(l+r)/2, -(t+b)/2)
	return err
}

// boxedText draws s centred on (x, y) over a white box padded by padPt.
func (c *canvas) boxedText(s string, x, y, sizePt, padPt float64, edge drawing.Color, edgePt, boxAlpha float64) error {
	l, t, r, b, err := c.textBounds(s, sizePt)
	if err != nil {
		return err
	}
	hw, hh, pad := (r-l)/2, (b-t)/2, c.px(padPt)
	c.rect(x-hw-pad, y-hh-pad, x+hw+pad, y+hh+pad, withAlpha(drawing.ColorWhite, boxAlpha), edge, edgePt)
	return c.text(s, x, y, sizePt, drawing.ColorBlack, 0)
}

// Render rasterizes m at dpi pixels per inch.
func Render(m *Map, dpi int) (*image.RGBA, error) {
	if dpi <= 0 {
		return nil, errors.E(errors.Invalid, "dpi must be positive")
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, errors.E(err, "loading default font")
	}
	width, height := int(FigureWidth*float64(dpi)), int(FigureHeight*float64(dpi))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, err
	}
	gc.SetDPI(float64(dpi))
	c := &canvas{img: img, gc: gc, font: font, dpi: float64(dpi)}

	// Columns: the polar plot, a gap, and the legend.
	d := c.dpi
	avail := float64(width) - 2*figMargin*d
	gap := columnGap * (1 + legendRatio) / 2
	plotW := avail / (1 + legendRatio + gap)
	legendX := figMargin*d + plotW*(1+gap)
	legendW := legendRatio * plotW

	titleH := 2*c.px(titleFontSize)*1.2 + c.px(titleGapPt)
	plotTop := figMargin*d + titleH
	plotH := float64(height) - figMargin*d - plotTop
	radius := math.Min(plotW, plotH) / 2
	c.cx = figMargin*d + plotW/2
	c.cy = plotTop + plotH/2

	radii := NewRadii(m.Coverage.MaxDepth())
	c.scale = radius / radii.Limit

	if err := c.drawCoverage(m, radii); err != nil {
		return nil, err
	}
	if err := c.drawFeatures(m, radii); err != nil {
		return nil, err
	}
	if err := c.drawTitle(m.Title, c.cy-radius-c.px(titleGapPt)); err != nil {
		return nil, err
	}
	entries := LegendEntries(PresentTypes(m.Features), m.ShowMismatches, len(m.Mismatches))
	if err := c.drawLegend(entries, legendX, legendW, plotTop+plotH/2); err != nil {
		return nil, err
	}
	return img, nil
}

func (c *canvas) drawCoverage(m *Map, radii Radii) error {
	samples := m.Coverage.Samples
	thetas := make([]float64, len(samples))
	for i, s := range samples {
		thetas[i] = circular.CoverageAngle(s.Pos, m.Length)
	}
	depth := func(i int) float64 { return samples[i].TotalReads }

	// Filled trace, closed through the pole.
	fill := &drawing.Path{}
	fill.MoveTo(c.cx, c.cy)
	for i, t := range thetas {
		fill.LineTo(c.xy(t, depth(i)))
	}
	fill.Close()
	c.gc.SetFillColor(withAlpha(coverageColor, coverageAlpha))
	c.gc.Fill(fill)

	grid := withAlpha(gridColor, 0.6)
	for i := 0; i < NumSpokes; i++ {
		c.radial(circular.FullTurn*float64(i)/NumSpokes, 0, radii.MaxCov, grid, gridLineWidth)
	}
	for _, level := range GridLevels {
		if float64(level) <= radii.MaxCov {
			c.ring(float64(level), grid, gridLineWidth)
		}
	}

	c.polar(thetas, depth, withAlpha(coverageColor, outlineAlpha), outlineLineWidth, false)

	mismatch := withAlpha(mismatchColor, 0.7)
	for _, pos := range m.Mismatches {
		if d, ok := m.Coverage.Depth(pos); ok {
			c.radial(circular.CoverageAngle(pos, m.Length), 0, d, mismatch, mismatchLineWidth)
		}
	}

	c.ring(radii.Feature, drawing.ColorBlack, backboneLineWidth)

	for _, level := range GridLevels {
		if float64(level) > radii.MaxCov {
			continue
		}
		x, y := c.xy(0, float64(level))
		if err := c.boxedText(strconv.Itoa(level), x, y, gridFontSize, 2, drawing.Color{}, 0, 0.8); err != nil {
			return err
		}
	}
	return nil
}

func (c *canvas) drawFeatures(m *Map, radii Radii) error {
	for _, arc := range FeatureArcs(m.Features, m.Length) {
		style, _ := StyleOf(arc.Type)
		thetas := arc.Linspace(arc.Samples)
		c.polar(thetas, func(int) float64 { return radii.Feature }, withAlpha(style.Color(), 0.9), featureLineWidth, true)
	}

	tick := withAlpha(gridColor, 0.6)
	markers := ScaleMarkers(m.Length)
	for _, mk := range markers {
		c.radial(mk.Angle, radii.Feature*1.02, radii.Scale*0.95, tick, scaleLineWidth)
	}
	c.ring(radii.Outer, drawing.ColorBlack, outerRingLineWidth)
	for _, mk := range markers {
		x, y := c.xy(mk.Angle, radii.Scale)
		if err := c.text(mk.Label, x, y, scaleFontSize, gridColor, mk.Rotation); err != nil {
			return err
		}
	}

	placements := PlaceLabels(LabelCandidates(m.Features, m.Length))
	leader := withAlpha(drawing.ColorBlack, 0.7)
	for _, p := range placements {
		if p.Small {
			continue
		}
		r := radii.Label * p.RadiusFactor
		x0, y0 := c.xy(p.MidAngle, radii.Feature*1.02)
		x1, y1 := c.xy(p.Angle, r*0.88)
		line := &drawing.Path{}
		line.MoveTo(x0, y0)
		line.LineTo(x1, y1)
		c.stroke(line, leader, leaderLineWidth, false)
	}
	for _, p := range placements {
		if p.Small {
			x, y := c.xy(p.Angle, radii.Feature*1.12*p.RadiusFactor)
			if err := c.boxedText(p.Text, x, y, smallLabelSize, 2, gridColor, 0.3, 0.9); err != nil {
				return err
			}
			continue
		}
		x, y := c.xy(p.Angle, radii.Label*p.RadiusFactor)
		if err := c.boxedText(p.Text, x, y, largeLabelSize, 3, drawing.ColorBlack, 0.5, 0.95); err != nil {
			return err
		}
	}
	return nil
}

// drawTitle draws the two title lines so that the second ends at bottom.
func (c *canvas) drawTitle(title [2]string, bottom float64) error {
	lineH := c.px(titleFontSize) * 1.2
	for i, s := range title {
		y := bottom - float64(len(title)-i)*lineH + lineH/2
		if err := c.text(s, c.cx, y, titleFontSize, drawing.ColorBlack, 0); err != nil {
			return err
		}
	}
	return nil
}

// drawLegend draws a framed legend whose left edge is x and which is
// vertically centred on midY.
func (c *canvas) drawLegend(entries []LegendEntry, x, maxW, midY float64) error {
	pad := c.px(legendFontSize) * 0.6
	rowH := c.px(legendFontSize) * 1.6
	swatchW, swatchH := c.px(legendFontSize)*2, c.px(legendFontSize)*0.7

	_, tt, tr, tb, err := c.textBounds(LegendTitle, legendTitleSize)
	if err != nil {
		return err
	}
	contentW := tr
	for _, e := range entries {
		l, _, r, _, err := c.textBounds(e.Label, legendFontSize)
		if err != nil {
			return err
		}
		if w := swatchW + pad + (r - l); w > contentW {
			contentW = w
		}
	}
	boxW := math.Min(contentW+2*pad, maxW)
	titleH := (tb - tt) + pad
	boxH := pad + titleH + float64(len(entries))*rowH + pad/2
	y0 := midY - boxH/2

	shadow := c.px(2)
	c.rect(x+shadow, y0+shadow, x+boxW+shadow, y0+boxH+shadow, withAlpha(gridColor, 0.5), drawing.Color{}, 0)
	c.rect(x, y0, x+boxW, y0+boxH, drawing.ColorWhite, hexColor("#CCCCCC"), 0.8)

	if err := c.text(LegendTitle, x+boxW/2, y0+pad+(tb-tt)/2, legendTitleSize, drawing.ColorBlack, 0); err != nil {
		return err
	}
	rowY := y0 + pad + titleH
	for _, e := range entries {
		cy := rowY + rowH/2
		c.rect(x+pad, cy-swatchH/2, x+pad+swatchW, cy+swatchH/2, e.Color, drawing.Color{}, 0)
		l, _, r, _, err := c.textBounds(e.Label, legendFontSize)
		if err != nil {
			return err
		}
		if err := c.text(e.Label, x+2*pad+swatchW+(r-l)/2, cy, legendFontSize, drawing.ColorBlack, 0); err != nil {
			return err
		}
		rowY += rowH
	}
	return nil
}
