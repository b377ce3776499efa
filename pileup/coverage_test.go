// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pileup_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/pileup"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestReadCoverage(t *testing.T) {
	data := "Position,Ref,TotalReads,Mismatches\n" +
		"1,A,10,0\n" +
		"2,C,10,2\n" +
		"3,G,0,0\n" +
		"4,T,20,\n" +
		"5,A,40,4\n"
	tbl, err := pileup.ReadCoverage(strings.NewReader(data))
	assert.NoError(t, err)
	expect.True(t, tbl.HasMismatchColumn)
	expect.EQ(t, len(tbl.Samples), 5)
	expect.EQ(t, tbl.MaxDepth(), 40.0)
	expect.EQ(t, tbl.Samples[1], pileup.CoverageSample{Pos: 2, TotalReads: 10, Mismatches: 2, HasMismatches: true})
	expect.False(t, tbl.Samples[3].HasMismatches)

	// 2/10 > 10%; 4/40 is not; zero-read position 3 has no rate.
	expect.EQ(t, tbl.HighMismatchPositions(pileup.DefaultMismatchRate), []int{2})
	_, ok := tbl.Samples[2].MismatchRate()
	expect.False(t, ok)

	d, ok := tbl.Depth(5)
	expect.True(t, ok)
	expect.EQ(t, d, 40.0)
	_, ok = tbl.Depth(6)
	expect.False(t, ok)
}

func TestReadCoverageWithoutMismatches(t *testing.T) {
	tbl, err := pileup.ReadCoverage(strings.NewReader("TotalReads,Position\n7,1\n\"9\",2\n"))
	assert.NoError(t, err)
	expect.False(t, tbl.HasMismatchColumn)
	expect.EQ(t, tbl.Samples[1], pileup.CoverageSample{Pos: 2, TotalReads: 9})
	expect.EQ(t, len(tbl.HighMismatchPositions(0)), 0)
}

func TestReadCoverageErrors(t *testing.T) {
	for _, test := range []struct {
		name, data, errSubstr string
	}{
		{"empty", "", "empty coverage table"},
		{"no_rows", "Position,TotalReads\n", "no rows"},
		{"missing_reads", "Position,Depth\n1,5\n", `column "TotalReads" not found`},
		{"missing_position", "Pos,TotalReads\n1,5\n", `column "Position" not found`},
		{"bad_position", "Position,TotalReads\nx,5\n", "bad Position"},
		{"bad_mismatches", "Position,TotalReads,Mismatches\n1,5,many\n", "bad Mismatches"},
		{"tab_separated", "Position\tTotalReads\n1\t5\n", `column "Position" not found`},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := pileup.ReadCoverage(strings.NewReader(test.data))
			assert.NotNil(t, err)
			expect.HasSubstr(t, err.Error(), test.errSubstr)
		})
	}
}

func TestLoadCoverage(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "cov.csv")
	assert.NoError(t, os.WriteFile(path, []byte("Position,TotalReads\n1,3\n2,4\n"), 0644))
	tbl, err := pileup.LoadCoverage(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, len(tbl.Samples), 2)

	bad := filepath.Join(tmpdir, "bad.csv")
	assert.NoError(t, os.WriteFile(bad, []byte("Position\n1\n"), 0644))
	_, err = pileup.LoadCoverage(ctx, bad)
	assert.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "TotalReads")
}
