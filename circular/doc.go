// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular maps positions on a circular genome (typically a plasmid)
// onto angles, and provides the arc arithmetic needed when a feature spans
// the origin.
//
// Angles are in radians, start at 12 o'clock and increase clockwise.  Two
// position conventions coexist: per-base coverage positions are 1-based, and
// annotation offsets are 0-based.  They map to angles slightly differently
// (see CoverageAngle and FeatureAngle), and callers must use the one matching
// the source of the position.
package circular
