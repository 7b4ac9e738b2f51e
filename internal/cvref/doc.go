// Package cvref runs the shape extraction stages through OpenCV so the
// pure Go implementation can be checked against it.
//
// The package is only compiled with the opencv build tag, which requires
// OpenCV 4 and its development headers:
//
//	go test -tags opencv ./internal/cvref/...
package cvref
