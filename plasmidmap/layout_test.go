package plasmidmap_test

import (
	"math"
	"testing"

	"github.com/grailbio/plasmidqc/circular"
	"github.com/grailbio/plasmidqc/encoding/genbank"
	"github.com/grailbio/plasmidqc/plasmidmap"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestNewRadii(t *testing.T) {
	r := plasmidmap.NewRadii(100)
	require.InDelta(t, 105, r.Feature, 1e-9)
	require.InDelta(t, 131.25, r.Label, 1e-9)
	require.InDelta(t, 147, r.Scale, 1e-9)
	require.InDelta(t, 124.95, r.Outer, 1e-9)
	require.InDelta(t, 161.7, r.Limit, 1e-9)

	zero := plasmidmap.NewRadii(0)
	expect.EQ(t, zero.MaxCov, 0.0)
	expect.True(t, zero.Limit > 0)
}

func TestFeatureArcs(t *testing.T) {
	const n = 1000
	arcs := plasmidmap.FeatureArcs([]genbank.Feature{
		feature("source", "1..1000"),
		feature("CDS", "101..300"),
		feature("rep_origin", "901..50"),
		feature("gene", "join(1..20,501..900)"),
	}, n)
	assert.EQ(t, len(arcs), 5)

	expect.EQ(t, arcs[0].Type, "CDS")
	require.InDelta(t, circular.FullTurn*0.1, arcs[0].Start, 1e-12)
	require.InDelta(t, circular.FullTurn*0.3, arcs[0].End, 1e-12)
	expect.EQ(t, arcs[0].Samples, 20)

	// The wrapping origin splits at 0.
	expect.EQ(t, arcs[1].Type, "rep_origin")
	require.InDelta(t, circular.FullTurn*0.9, arcs[1].Start, 1e-12)
	expect.EQ(t, arcs[1].End, circular.FullTurn)
	expect.EQ(t, arcs[1].Samples, 10)
	expect.EQ(t, arcs[2].Start, 0.0)
	require.InDelta(t, circular.FullTurn*0.05, arcs[2].End, 1e-12)
	require.InDelta(t, circular.FullTurn*150/n, arcs[1].Sweep()+arcs[2].Sweep(), 1e-12)

	// Compound parts are drawn one by one.
	expect.EQ(t, arcs[3].Type, "gene")
	require.InDelta(t, 0, arcs[3].Start, 1e-12)
	require.InDelta(t, circular.FullTurn*0.02, arcs[3].End, 1e-12)
	require.InDelta(t, circular.FullTurn*0.5, arcs[4].Start, 1e-12)
	expect.EQ(t, arcs[4].Samples, 40)
}

func TestScaleMarkers(t *testing.T) {
	markers := plasmidmap.ScaleMarkers(5386)
	assert.EQ(t, len(markers), 6)
	labels := []string{}
	for _, m := range markers {
		labels = append(labels, m.Label)
	}
	expect.EQ(t, labels, []string{"0", "1 kb", "2 kb", "3 kb", "4 kb", "5 kb"})
	expect.EQ(t, markers[0].Angle, 0.0)
	expect.EQ(t, markers[0].Rotation, 0.0)

	deg := func(m plasmidmap.ScaleMarker) float64 { return m.Angle * 180 / math.Pi }
	for _, m := range markers {
		if m.Angle > math.Pi/2 && m.Angle < 3*math.Pi/2 {
			require.InDelta(t, deg(m)-90, m.Rotation, 1e-9, m.Label)
		} else {
			require.InDelta(t, deg(m), m.Rotation, 1e-9, m.Label)
		}
	}

	expect.EQ(t, len(plasmidmap.ScaleMarkers(1000)), 1)
	expect.EQ(t, len(plasmidmap.ScaleMarkers(1001)), 2)
	expect.EQ(t, len(plasmidmap.ScaleMarkers(999)), 1)
}

func TestTitle(t *testing.T) {
	rec := &genbank.Record{ID: "pUC19.1", DeclaredLen: 2686}
	expect.EQ(t, plasmidmap.Title(rec, "/data/pUC19.gbk"), [2]string{"pUC19.1", "2,686 bp"})

	rec = &genbank.Record{ID: ".", DeclaredLen: 12345}
	expect.EQ(t, plasmidmap.Title(rec, "/data/sample_7.final.gbk"), [2]string{"sample_7.final", "12,345 bp"})
	rec.ID = "  "
	expect.EQ(t, plasmidmap.Title(rec, "x.gb")[0], "x")
	rec.DeclaredLen = 999
	expect.EQ(t, plasmidmap.Title(rec, "x.gb")[1], "999 bp")
}
