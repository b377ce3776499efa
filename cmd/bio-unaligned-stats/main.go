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

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/plasmidqc/unaligned"
)

const usageLine = "Usage: bio-unaligned-stats <sample_id> <unaligned_file> <alignment_tsv>"

var outDir = flag.String("out-dir", unaligned.DefaultOpts.OutDir, "Directory the summary CSV is written to")

var errUsage = errors.New("wrong number of arguments")

func unalignedStatsUsage() {
	fmt.Fprintln(os.Stderr, usageLine)
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

// run computes and writes the summary for args.  A missing contig report is
// reported on stdout and is not an error.
func run(ctx context.Context, args []string, dir string, stdout, stderr io.Writer) error {
	if len(args) != 3 {
		fmt.Fprintln(stderr, usageLine)
		return errUsage
	}
	opts := unaligned.DefaultOpts
	opts.SampleID = args[0]
	opts.UnalignedPath = args[1]
	opts.AlignmentPath = args[2]
	opts.OutDir = dir
	s, path, err := unaligned.Run(ctx, opts)
	if err == unaligned.ErrNoContigs {
		fmt.Fprintf(stdout, "No contigs parsed for %s\n", opts.SampleID)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("%s: %.8f%% unaligned, wrote %s", s.SampleID, s.UnalignedPct, path)
	return nil
}

func main() {
	flag.Usage = unalignedStatsUsage
	shutdown := grail.Init()
	defer shutdown()

	err := run(vcontext.Background(), flag.Args(), *outDir, os.Stdout, os.Stderr)
	if err == errUsage {
		shutdown()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("bio-unaligned-stats: %v", err)
	}
	log.Debug.Printf("exiting")
}
