package genbank

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in     string
		parts  []Span
		strand Strand
		op     string
	}{
		{"1..100", []Span{{0, 100}}, StrandFwd, ""},
		{"<1..>100", []Span{{0, 100}}, StrandFwd, ""},
		{"42", []Span{{41, 42}}, StrandFwd, ""},
		{"10^11", []Span{{10, 10}}, StrandFwd, ""},
		{"102.110", []Span{{101, 110}}, StrandFwd, ""},
		{"5300..120", []Span{{5299, 120}}, StrandFwd, ""},
		{"complement(34..126)", []Span{{33, 126}}, StrandRev, ""},
		{"join(5300..5386, 1..120)", []Span{{5299, 5386}, {0, 120}}, StrandFwd, "join"},
		{"complement(join(1..10,20..30))", []Span{{19, 30}, {0, 10}}, StrandRev, "join"},
		{"join(complement(20..30),complement(1..10))", []Span{{19, 30}, {0, 10}}, StrandRev, "join"},
		{"order(1..10,20..30)", []Span{{0, 10}, {19, 30}}, StrandFwd, "order"},
		{"J00194.1:100..202", []Span{{99, 202}}, StrandFwd, ""},
	}
	for _, tt := range tests {
		loc, err := ParseLocation(tt.in)
		assert.NoError(t, err, tt.in)
		expect.EQ(t, loc.Parts, tt.parts, tt.in)
		expect.EQ(t, loc.Strand, tt.strand, tt.in)
		expect.EQ(t, loc.Op, tt.op, tt.in)
	}
}

func TestParseLocationErrors(t *testing.T) {
	for _, in := range []string{"", "a..b", "join()", "1..x", "-5"} {
		_, err := ParseLocation(in)
		expect.NotNil(t, err, in)
	}
}

func TestLocationBounds(t *testing.T) {
	loc := Location{Parts: []Span{{5299, 5386}, {0, 120}}}
	expect.True(t, loc.Compound())
	expect.EQ(t, loc.Start(), 0)
	expect.EQ(t, loc.End(), 5386)

	wrap := Location{Parts: []Span{{5299, 120}}}
	expect.False(t, wrap.Compound())
	expect.EQ(t, wrap.Start(), 5299)
	expect.EQ(t, wrap.End(), 120)

	expect.EQ(t, Location{}.Start(), 0)
	expect.EQ(t, Location{}.End(), 0)
}

func TestSplitTopLevel(t *testing.T) {
	expect.EQ(t, splitTopLevel("1..2,complement(3..4),join(5..6,7..8)"),
		[]string{"1..2", "complement(3..4)", "join(5..6,7..8)"})
}
