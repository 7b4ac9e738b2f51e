// Package morph implements the binary-image cleaning stages of the shape
// pipeline: global Otsu binarization, area-based small object removal,
// morphological closing with a disk element, and hole filling.
//
// Every function takes its input raster by pointer and returns a freshly
// allocated *image.Gray. Inputs are never modified. Binary rasters use 0 for
// background and 255 for foreground; any non-zero input sample is treated as
// foreground.
package morph
