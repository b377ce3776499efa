package unaligned

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// ErrNoContigs is returned by Run when the alignment report mentions no
// contig.  It marks a valid empty result: no summary is written.
var ErrNoContigs = errors.New("no contigs parsed")

// SummaryHeader is the header row of the summary CSV.
var SummaryHeader = []string{"sample_id", "total_bases", "unaligned_bases", "unaligned_pct"}

// Summary holds the unaligned-base statistics of one sample.
type Summary struct {
	SampleID string
	// TotalBases is the sum of Contig.Bases() over every parsed contig.
	TotalBases float64
	// UnalignedBases is the same sum restricted to unaligned contigs.
	UnalignedBases float64
	// UnalignedPct is 100 * UnalignedBases / TotalBases, or 0 when
	// TotalBases is 0.
	UnalignedPct float64

	// NContigs and NUnaligned count the contributing contigs.
	NContigs, NUnaligned int
}

// Summarize computes the statistics of contigs, treating those whose ID is
// in unaligned as unaligned.
func Summarize(sampleID string, contigs []Contig, unaligned map[string]bool) Summary {
	s := Summary{SampleID: sampleID, NContigs: len(contigs)}
	for _, c := range contigs {
		b := c.Bases()
		s.TotalBases += b
		if unaligned[c.ID] {
			s.UnalignedBases += b
			s.NUnaligned++
		}
	}
	if s.TotalBases > 0 {
		s.UnalignedPct = s.UnalignedBases / s.TotalBases * 100
	}
	return s
}

// Record returns the CSV fields of s, in SummaryHeader order.
func (s Summary) Record() []string {
	return []string{
		s.SampleID,
		strconv.FormatInt(int64(math.RoundToEven(s.TotalBases)), 10),
		strconv.FormatInt(int64(math.RoundToEven(s.UnalignedBases)), 10),
		strconv.FormatFloat(s.UnalignedPct, 'f', 8, 64),
	}
}

// WriteCSV writes the header and the single summary row to w.
func (s Summary) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	if err := cw.Write(s.Record()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SummaryPath returns the summary CSV path for sampleID under dir.  An empty
// or "." dir yields a bare file name.
func SummaryPath(dir, sampleID string) string {
	name := sampleID + "_unaligned_summary.csv"
	if dir == "" || dir == "." {
		return name
	}
	return file.Join(dir, name)
}

// WriteSummary writes s to SummaryPath(dir, s.SampleID) and returns the path.
func WriteSummary(ctx context.Context, dir string, s Summary) (path string, err error) {
	path = SummaryPath(dir, s.SampleID)
	out, err := file.Create(ctx, path)
	if err != nil {
		return "", errors.E(err, "Couldn't create summary file:", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", path)
		}
	}()
	if err = s.WriteCSV(out.Writer(ctx)); err != nil {
		return "", errors.E(err, "error writing to summary file:", path)
	}
	return path, nil
}

// Opts configures Run.
type Opts struct {
	// SampleID names the sample and the output file.
	SampleID string
	// UnalignedPath lists unaligned contig names, one per line.
	UnalignedPath string
	// AlignmentPath is the tab-delimited alignment report.
	AlignmentPath string
	// OutDir is where the summary CSV is written.
	OutDir string
}

// DefaultOpts holds the default options.
var DefaultOpts = Opts{OutDir: "."}

// Run reads both inputs, computes the summary and writes it.  It returns
// ErrNoContigs, and writes nothing, when the report mentions no contig.
func Run(ctx context.Context, opts Opts) (Summary, string, error) {
	ids, err := ReadUnalignedList(ctx, opts.UnalignedPath)
	if err != nil {
		return Summary{}, "", err
	}
	contigs, err := ScanAlignments(ctx, opts.AlignmentPath)
	if err != nil {
		return Summary{}, "", err
	}
	if len(contigs) == 0 {
		return Summary{SampleID: opts.SampleID}, "", ErrNoContigs
	}
	s := Summarize(opts.SampleID, contigs, ids)
	log.Debug.Printf("%s: %d contig line(s), %d unaligned, %.0f/%.0f bases",
		opts.SampleID, s.NContigs, s.NUnaligned, s.UnalignedBases, s.TotalBases)
	path, err := WriteSummary(ctx, opts.OutDir, s)
	if err != nil {
		return s, "", err
	}
	return s, path, nil
}
