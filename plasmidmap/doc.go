// Copyright 2021 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package plasmidmap renders a circular plasmid map: per-base read depth as a
// filled polar trace, annotated features as coloured arcs around it, feature
// labels spread out so they do not collide, kilobase scale markers, and a
// legend.
//
// Plot is the usual entry point.  The layout steps (PresentTypes,
// LegendEntries, PlaceLabels, ScaleMarkers, FeatureArcs, Title) are exported
// separately so they can be tested without rasterizing anything.
package plasmidmap
