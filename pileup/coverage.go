// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pileup loads per-base coverage tables: one row per reference
// position with the number of reads covering it and, optionally, how many of
// those reads disagree with the reference.
package pileup

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// Coverage table column names.
const (
	ColPosition   = "Position"
	ColTotalReads = "TotalReads"
	ColMismatches = "Mismatches"
)

// DefaultMismatchRate is the mismatch fraction above which a position is
// reported by HighMismatchPositions in the plotting tools.
const DefaultMismatchRate = 0.1

// CoverageSample is one row of a coverage table.
type CoverageSample struct {
	// Pos is 1-based.
	Pos        int
	TotalReads float64
	// Mismatches is only meaningful when HasMismatches is set.
	Mismatches    float64
	HasMismatches bool
}

// MismatchRate returns Mismatches / TotalReads.  ok is false when the rate is
// undefined: no mismatch count, or zero reads.
func (s CoverageSample) MismatchRate() (rate float64, ok bool) {
	if !s.HasMismatches || s.TotalReads == 0 {
		return math.NaN(), false
	}
	return s.Mismatches / s.TotalReads, true
}

// CoverageTable is a whole per-base coverage table, in file order.  Positions
// are expected to be contiguous and increasing, but this is not enforced.
type CoverageTable struct {
	Samples []CoverageSample
	// HasMismatchColumn is set when the table has a Mismatches column.
	HasMismatchColumn bool

	byPos map[int]int
}

// MaxDepth returns the largest TotalReads value.
func (t *CoverageTable) MaxDepth() float64 {
	max := math.Inf(-1)
	for _, s := range t.Samples {
		if s.TotalReads > max {
			max = s.TotalReads
		}
	}
	return max
}

// Depth returns the TotalReads of the first row at pos.
func (t *CoverageTable) Depth(pos int) (float64, bool) {
	if t.byPos == nil {
		t.byPos = make(map[int]int, len(t.Samples))
		for i := len(t.Samples) - 1; i >= 0; i-- {
			t.byPos[t.Samples[i].Pos] = i
		}
	}
	i, ok := t.byPos[pos]
	if !ok {
		return 0, false
	}
	return t.Samples[i].TotalReads, true
}

// HighMismatchPositions returns, in table order, the positions whose mismatch
// rate exceeds threshold.  Rows with an undefined rate are skipped.
func (t *CoverageTable) HighMismatchPositions(threshold float64) []int {
	var pos []int
	for _, s := range t.Samples {
		if rate, ok := s.MismatchRate(); ok && rate > threshold {
			pos = append(pos, s.Pos)
		}
	}
	return pos
}

// columnIndex maps the names in header to their column index.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// ReadCoverage parses a comma-separated coverage table with a header row.
// Position and TotalReads columns are required; Mismatches is optional.  A
// blank Mismatches cell leaves that row without a mismatch count.
func ReadCoverage(r io.Reader) (*CoverageTable, error) {
	tr := tsv.NewReader(r)
	tr.Comma = ','
	tr.ReuseRecord = true
	tr.FieldsPerRecord = -1
	// Rows are read raw; Mismatches is optional, so header-name mapping onto
	// a struct does not apply.
	cr := tr.Reader
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("pileup.ReadCoverage: empty coverage table")
	}
	if err != nil {
		return nil, err
	}
	cols := columnIndex(header)
	posCol, ok := cols[ColPosition]
	if !ok {
		return nil, fmt.Errorf("pileup.ReadCoverage: column %q not found", ColPosition)
	}
	readsCol, ok := cols[ColTotalReads]
	if !ok {
		return nil, fmt.Errorf("pileup.ReadCoverage: column %q not found", ColTotalReads)
	}
	mmCol, hasMM := cols[ColMismatches]

	t := &CoverageTable{HasMismatchColumn: hasMM}
	lineIdx := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lineIdx++
		field := func(col int) string {
			if col >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[col])
		}
		var s CoverageSample
		if s.Pos, err = strconv.Atoi(field(posCol)); err != nil {
			return nil, fmt.Errorf("pileup.ReadCoverage: line %d: bad %s %q", lineIdx, ColPosition, field(posCol))
		}
		if s.TotalReads, err = strconv.ParseFloat(field(readsCol), 64); err != nil {
			return nil, fmt.Errorf("pileup.ReadCoverage: line %d: bad %s %q", lineIdx, ColTotalReads, field(readsCol))
		}
		if hasMM {
			if v := field(mmCol); v != "" {
				if s.Mismatches, err = strconv.ParseFloat(v, 64); err != nil {
					return nil, fmt.Errorf("pileup.ReadCoverage: line %d: bad %s %q", lineIdx, ColMismatches, v)
				}
				s.HasMismatches = true
			}
		}
		t.Samples = append(t.Samples, s)
	}
	if len(t.Samples) == 0 {
		return nil, fmt.Errorf("pileup.ReadCoverage: coverage table has no rows")
	}
	return t, nil
}

// LoadCoverage is a thin wrapper around ReadCoverage that opens (and if
// needed decompresses) path.
func LoadCoverage(ctx context.Context, path string) (t *CoverageTable, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if e := infile.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	reader, _ := compress.NewReader(infile.Reader(ctx))
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if t, err = ReadCoverage(reader); err != nil {
		err = errors.E(err, "coverage table", path)
		return
	}
	log.Debug.Printf("%s: %d coverage row(s), max depth %v", path, len(t.Samples), t.MaxDepth())
	return
}

// HasMismatches reports whether the table carried a Mismatches column.
func (t *CoverageTable) HasMismatches() bool { return t.HasMismatchColumn }
