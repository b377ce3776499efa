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
bio-circular-coverage draws a circular plasmid coverage map: read depth from a
per-base coverage table as a filled polar trace, the annotated features of a
single-record GenBank file as coloured arcs with non-overlapping labels,
kilobase scale markers, and a legend of the feature types present.

The coverage table is a CSV with a header row and at least the Position
(1-based) and TotalReads columns.  With -variants, positions whose
Mismatches / TotalReads exceeds 10% are marked in red.

The image is written to <out-dir>/<pair-id>_circular_coverage_plot.png.

Sample usage:
bio-circular-coverage \
    --pair-id S1 \
    --genbank S1.gbk \
    --coverage S1.per_base.csv \
    --variants
*/
package main
