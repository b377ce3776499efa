// Copyright 2021 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/plasmidmap"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const testGenBank = `LOCUS       pTiny                   2000 bp    DNA     circular SYN 01-JAN-2021
FEATURES             Location/Qualifiers
     CDS             101..900
                     /label=kanR
     rep_origin      1801..100
//
`

func TestRun(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	gb := filepath.Join(tmpdir, "pTiny.gbk")
	cov := filepath.Join(tmpdir, "cov.csv")
	assert.NoError(t, os.WriteFile(gb, []byte(testGenBank), 0644))
	var b strings.Builder
	b.WriteString("Position,TotalReads,Mismatches\n")
	for pos := 1; pos <= 2000; pos++ {
		fmt.Fprintf(&b, "%d,%d,%d\n", pos, 30+pos%7, pos%3)
	}
	assert.NoError(t, os.WriteFile(cov, []byte(b.String()), 0644))

	opts := plasmidmap.DefaultOpts
	opts.PairID = "T1"
	opts.GenBankPath = gb
	opts.CoveragePath = cov
	opts.ShowMismatches = true
	opts.DPI = 12
	opts.OutDir = tmpdir
	var stdout, stderr bytes.Buffer
	assert.NoError(t, run(vcontext.Background(), opts, &stdout, &stderr))
	want := filepath.Join(tmpdir, "T1_circular_coverage_plot.png")
	expect.EQ(t, stdout.String(), "Saved: "+want+"\n")
	_, err := os.Stat(want)
	expect.NoError(t, err)
}

func TestRunMissingFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := plasmidmap.DefaultOpts
	opts.PairID = "T2"
	err := run(vcontext.Background(), opts, &stdout, &stderr)
	expect.EQ(t, err, errUsage)
	expect.HasSubstr(t, stderr.String(), "--genbank, --coverage")
	expect.EQ(t, stdout.String(), "")
}
