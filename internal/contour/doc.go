// Package contour traces object boundaries in binary images and computes
// polygon geometry over the traced points.
//
// Boundaries are found with the Suzuki–Abe border following algorithm using
// 8-connectivity. Each traced border is either an outer border (the boundary
// between an object and the background surrounding it) or a hole border (the
// boundary between an object and a background cavity inside it). The
// parent/child relation between borders is returned as an index slice
// (Hierarchy) rather than a pointer graph: Hierarchy[i] is the index of the
// parent of contour i, or -1 when contour i is a root.
//
// # Binary Images
//
// Input masks are *image.Gray rasters. Any non-zero sample is foreground.
// Pixels outside the image bounds are treated as background, so objects
// touching the image edge still produce closed borders.
//
// # Point Order
//
// Contours are returned in discovery order: the order in which a row-major
// scan reaches each border's starting pixel. Points within a contour are
// chain-compressed: runs of horizontal, vertical or diagonal steps are
// reduced to their end points, which preserves both the enclosed area and
// the arc length of the polygon.
//
// # Coordinate System
//
// All points are absolute image coordinates: (0,0) at the top-left,
// X increasing to the right and Y increasing downward.
package contour
