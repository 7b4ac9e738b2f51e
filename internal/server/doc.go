// Package server implements the MCP (Model Context Protocol) server for shape
// feature extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the shape pipeline
// and its companion analyses through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Diagnostics are written through zerolog to the logger given with
// WithLogger, never to the protocol stream.
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Shape Features:
//   - shape_extract: Segment objects and measure, classify and optionally draw them
//   - shape_classify: Label a (metric, eccentricity) pair
//   - shape_crop_object: Crop one object by index
//   - shape_feature_plot: Scatter plot of metric against eccentricity
//
// Companion Analyses:
//   - geometry_distances: Pairwise centroid distances in pixels and millimetres
//   - texture_glcm: Grey-level co-occurrence texture properties
//   - color_segment: Isolate pixels in a hue band
//
// # Image Caching
//
// Images are cached by path and shared between every tool, including the
// shape pipeline, for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(config.Default(), server.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
