package plasmidmap

import (
	"bytes"
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/plasmidqc/encoding/genbank"
	"github.com/grailbio/plasmidqc/pileup"
)

// Opts configures Plot.
type Opts struct {
	// PairID names the sample and the output file.
	PairID string
	// GenBankPath is the annotation of the (single) plasmid record.
	GenBankPath string
	// CoveragePath is the per-base coverage CSV.
	CoveragePath string
	// ShowMismatches highlights positions whose mismatch rate exceeds 10%.
	ShowMismatches bool
	// DPI is the output pixel density.
	DPI int
	// OutDir is where the PNG is written.
	OutDir string
}

// DefaultOpts holds the default options.
var DefaultOpts = Opts{DPI: 300, OutDir: "."}

// OutputPath returns the PNG path for pairID under dir.  An empty or "." dir
// yields a bare file name.
func OutputPath(dir, pairID string) string {
	name := pairID + "_circular_coverage_plot.png"
	if dir == "" || dir == "." {
		return name
	}
	return file.Join(dir, name)
}

// Plot loads the annotation and the coverage table, renders the map and
// writes it to OutputPath(opts.OutDir, opts.PairID).  Nothing is written
// unless every earlier step succeeds.
func Plot(ctx context.Context, opts Opts) (string, error) {
	if opts.PairID == "" {
		return "", errors.E(errors.Invalid, "plasmidmap.Plot: empty pair ID")
	}
	rec, err := genbank.Load(ctx, opts.GenBankPath)
	if err != nil {
		return "", err
	}
	cov, err := pileup.LoadCoverage(ctx, opts.CoveragePath)
	if err != nil {
		return "", err
	}
	m, err := NewMap(rec, opts.GenBankPath, cov, opts.ShowMismatches)
	if err != nil {
		return "", err
	}
	log.Debug.Printf("%s: %d bp, %d feature(s), %d coverage row(s), %d high-mismatch position(s)",
		opts.PairID, m.Length, len(m.Features), len(cov.Samples), len(m.Mismatches))
	img, err := Render(m, opts.DPI)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img, opts.DPI); err != nil {
		return "", err
	}
	return writeFile(ctx, OutputPath(opts.OutDir, opts.PairID), buf.Bytes())
}

func writeFile(ctx context.Context, path string, data []byte) (_ string, err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return "", errors.E(err, "Couldn't create plot file:", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", path)
		}
	}()
	if _, err = out.Writer(ctx).Write(data); err != nil {
		return "", errors.E(err, "error writing plot file:", path)
	}
	return path, nil
}
