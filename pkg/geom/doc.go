// Package geom provides the planar geometry used by the layout database and
// the router: points, axis-aligned rectangles, instance orientations, and
// rounding to the database grid.
//
// All coordinates are in lambda. Every value written to the database passes
// through [Round] so that equality checks between port centers are exact.
package geom
