// Package imaging handles image input and output for the shape tools.
//
// It decodes files (with EXIF auto-orientation), caches decoded images for
// the MCP server, converts arbitrary images to 8-bit grayscale, and encodes
// results as base64 PNG or writes them to disk.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Regions are given as
// image.Rectangle values whose Max corner is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify their inputs.
package imaging
