// Package shape extracts per-object shape descriptors from an image.
//
// A Pipeline converts the input to grayscale, binarizes it with Otsu's
// method, drops objects smaller than Config.MinArea, closes small gaps with
// a disk element, fills holes, and then measures every remaining external
// contour:
//
//   - Area: polygon area of the contour
//   - Perimeter: closed arc length of the contour
//   - Metric: 4*pi*Area/Perimeter^2, 1.0 for a perfect circle
//   - Eccentricity: from a least-squares ellipse fit, 0 for a circle
//   - Centroid: first-order moments, truncated toward zero
//
// Each object is then labelled Round, Elongated, or Other by Classify.
//
// Numerical failures for a single object (ellipse fit, zero area moment)
// never abort a run. The object is kept with eccentricity 1.0 and centroid
// (0,0) and marked as degraded.
package shape
