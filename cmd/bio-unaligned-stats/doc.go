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

/*
bio-unaligned-stats reports how many assembly bases did not align to the
reference.  Contig names follow the assembler's NODE_<n>_length_<len>_cov_<cov>
convention, so a contig's base count is its length times its coverage.

It takes the sample ID, a file listing unaligned contig names one per line,
and the tab-delimited alignment report, and writes
<sample_id>_unaligned_summary.csv with the columns
sample_id,total_bases,unaligned_bases,unaligned_pct.

If the alignment report names no contig at all, a notice is printed and no
file is written; this is not an error.

Sample usage:
bio-unaligned-stats \
    -out-dir results \
    S1 S1.unaligned.txt S1.alignments.tsv
*/
package main
