// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package unaligned computes how much of a de novo assembly failed to align
// to the reference.
//
// Contigs are identified by SPAdes-style names, NODE_<n>_length_<len>_cov_<cov>,
// from which the number of sequenced bases backing the contig is estimated as
// length * coverage.  Given the contigs mentioned in an alignment report and
// the subset listed as unaligned, Summarize reports the total and unaligned
// bases and the unaligned percentage.
package unaligned
