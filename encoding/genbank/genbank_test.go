package genbank_test

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/encoding/genbank"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const testRecord = `LOCUS       pTest                    240 bp    DNA     circular SYN 01-JAN-2020
DEFINITION  Synthetic test plasmid
            with a two-line definition.
ACCESSION   XX000001
VERSION     XX000001.1
KEYWORDS    .
SOURCE      synthetic DNA construct
  ORGANISM  synthetic DNA construct
FEATURES             Location/Qualifiers
     source          1..240
                     /organism="synthetic DNA construct"
     promoter        <1..>30
                     /label=lac_promoter
     CDS             complement(join(200..240,1..20))
                     /gene="ampR"
                     /note="a note that wraps onto
                     a second line with ""quotes"""
                     /translation="MSIQHFRVAL
                     IPFFAAF"
     rep_origin      120..60
                     /label="ori"
     misc_feature    join(31..40,
                     50..59)
                     /pseudo
ORIGIN
        1 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
       61 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
      121 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
      181 acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt acgtacgtac gtacgtacgt
//
`

func TestParse(t *testing.T) {
	rec, err := genbank.ReadOne(strings.NewReader(testRecord))
	assert.NoError(t, err)
	expect.EQ(t, rec.Name, "pTest")
	expect.EQ(t, rec.ID, "XX000001.1")
	expect.EQ(t, rec.Definition, "Synthetic test plasmid with a two-line definition.")
	expect.True(t, rec.Circular())
	expect.EQ(t, rec.DeclaredLen, 240)
	expect.EQ(t, rec.Len(), 240)
	expect.EQ(t, rec.Seq[:8], "ACGTACGT")
	assert.EQ(t, len(rec.Features), 5)

	types := []string{}
	for _, f := range rec.Features {
		types = append(types, f.Type)
	}
	expect.EQ(t, types, []string{"source", "promoter", "CDS", "rep_origin", "misc_feature"})

	promoter := rec.Features[1]
	expect.EQ(t, promoter.Location.Parts, []genbank.Span{{0, 30}})
	label, ok := promoter.Qualifiers.Get("label")
	expect.True(t, ok)
	expect.EQ(t, label, "lac_promoter")

	cds := rec.Features[2]
	expect.EQ(t, cds.Location.Strand, genbank.StrandRev)
	expect.EQ(t, cds.Location.Op, "join")
	expect.EQ(t, cds.Location.Parts, []genbank.Span{{0, 20}, {199, 240}})
	expect.EQ(t, cds.Location.Start(), 0)
	expect.EQ(t, cds.Location.End(), 240)
	note, _ := cds.Qualifiers.Get("note")
	expect.EQ(t, note, `a note that wraps onto a second line with "quotes"`)
	tr, _ := cds.Qualifiers.Get("translation")
	expect.EQ(t, tr, "MSIQHFRVALIPFFAAF")

	ori := rec.Features[3]
	expect.EQ(t, ori.Location.Start(), 119)
	expect.EQ(t, ori.Location.End(), 60)
	expect.False(t, ori.Location.Compound())

	misc := rec.Features[4]
	expect.EQ(t, misc.Location.Parts, []genbank.Span{{30, 40}, {49, 59}})
	pseudo, ok := misc.Qualifiers.Get("pseudo")
	expect.True(t, ok)
	expect.EQ(t, pseudo, "")
	_, ok = misc.Qualifiers.Get("label")
	expect.False(t, ok)
}

func TestParseWithoutOrigin(t *testing.T) {
	data := "LOCUS       noseq     5000 bp    DNA     linear\n" +
		"ACCESSION   .\n" +
		"FEATURES             Location/Qualifiers\n" +
		"     gene            10..20\n" +
		"//\n"
	rec, err := genbank.ReadOne(strings.NewReader(data))
	assert.NoError(t, err)
	expect.EQ(t, rec.Len(), 5000)
	expect.EQ(t, rec.ID, ".")
	expect.False(t, rec.Circular())
}

func TestParseMultipleRecords(t *testing.T) {
	recs, err := genbank.Parse(strings.NewReader(testRecord + testRecord))
	assert.NoError(t, err)
	expect.EQ(t, len(recs), 2)
	_, err = genbank.ReadOne(strings.NewReader(testRecord + testRecord))
	expect.HasSubstr(t, err.Error(), "expected one record, found 2")
	_, err = genbank.ReadOne(strings.NewReader(""))
	expect.HasSubstr(t, err.Error(), "expected one record, found 0")
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		name, data, errSubstr string
	}{
		{"no_terminator", "LOCUS       x 10 bp DNA\n", "missing its // terminator"},
		{"bad_length", "LOCUS       x ten bp DNA\n//\n", "bad LOCUS length"},
		{"bad_location", "LOCUS       x 10 bp DNA\nFEATURES             Location/Qualifiers\n     gene            a..b\n//\n", "bad coordinate"},
		{"stray_terminator", "//\n", "terminator without LOCUS"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := genbank.Parse(strings.NewReader(test.data))
			assert.NotNil(t, err)
			expect.HasSubstr(t, err.Error(), test.errSubstr)
		})
	}
}

func TestLoadCompressed(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	plain := filepath.Join(tmpdir, "p.gbk")
	assert.NoError(t, os.WriteFile(plain, []byte(testRecord), 0644))
	rec, err := genbank.Load(ctx, plain)
	assert.NoError(t, err)
	expect.EQ(t, rec.Len(), 240)

	gz := filepath.Join(tmpdir, "p.gbk.gz")
	f, err := os.Create(gz)
	assert.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write([]byte(testRecord))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, f.Close())
	rec, err = genbank.Load(ctx, gz)
	assert.NoError(t, err)
	expect.EQ(t, len(rec.Features), 5)

	_, err = genbank.Load(ctx, filepath.Join(tmpdir, "missing.gbk"))
	expect.NotNil(t, err)
}
