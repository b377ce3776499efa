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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/plasmidmap"
)

var (
	pairID       = flag.String("pair-id", "", "Sample or pair ID; names the output file (required)")
	genbankPath  = flag.String("genbank", "", "GenBank annotation of the plasmid (required)")
	coveragePath = flag.String("coverage", "", "Per-base coverage CSV with Position, TotalReads and optionally Mismatches columns (required)")
	variants     = flag.Bool("variants", plasmidmap.DefaultOpts.ShowMismatches, "Highlight positions with more than 10% mismatching reads")
	dpi          = flag.Int("dpi", plasmidmap.DefaultOpts.DPI, "Output resolution, in pixels per inch")
	outDir       = flag.String("out-dir", plasmidmap.DefaultOpts.OutDir, "Directory the PNG is written to")
)

var errUsage = errors.New("missing required flag")

func circularCoverageUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s --pair-id ID --genbank FILE --coverage FILE [--variants]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

// run renders the plot described by opts and prints where it went.
func run(ctx context.Context, opts plasmidmap.Opts, stdout, stderr io.Writer) error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"--pair-id", opts.PairID},
		{"--genbank", opts.GenBankPath},
		{"--coverage", opts.CoveragePath},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(stderr, "the following arguments are required: %s\n", strings.Join(missing, ", "))
		return errUsage
	}
	path, err := plasmidmap.Plot(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved: %s\n", path)
	return nil
}

func main() {
	flag.Usage = circularCoverageUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		log.Fatalf("Unexpected positional arguments: '%s'", strings.Join(flag.Args(), " "))
	}
	opts := plasmidmap.Opts{
		PairID:         *pairID,
		GenBankPath:    *genbankPath,
		CoveragePath:   *coveragePath,
		ShowMismatches: *variants,
		DPI:            *dpi,
		OutDir:         *outDir,
	}
	err := run(vcontext.Background(), opts, os.Stdout, os.Stderr)
	if err == errUsage {
		flag.Usage()
		shutdown()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("bio-circular-coverage: %v", err)
	}
	log.Debug.Printf("exiting")
}
