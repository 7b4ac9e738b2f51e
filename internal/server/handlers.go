package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/shape-features-mcp/internal/colorseg"
	"github.com/ironsheep/shape-features-mcp/internal/geometry"
	"github.com/ironsheep/shape-features-mcp/internal/imaging"
	"github.com/ironsheep/shape-features-mcp/internal/render"
	"github.com/ironsheep/shape-features-mcp/internal/report"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
	"github.com/ironsheep/shape-features-mcp/internal/texture"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "shape_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errMissingPath is returned by handlers whose path argument is empty.
var errMissingPath = errors.New("path is required")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Error().Err(err).Str("tool", params.Name).Msg("tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Runs the analysis and returns its result
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Shape Features
	case "shape_extract":
		return s.handleShapeExtract(ctx, args)
	case "shape_classify":
		return s.handleShapeClassify(args)
	case "shape_crop_object":
		return s.handleShapeCropObject(ctx, args)
	case "shape_feature_plot":
		return s.handleShapeFeaturePlot(ctx, args)

	// Geometry, Texture and Color
	case "geometry_distances":
		return s.handleGeometryDistances(args)
	case "texture_glcm":
		return s.handleTextureGLCM(args)
	case "color_segment":
		return s.handleColorSegment(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals args into dst and checks that a path was given.
func decodeArgs(args json.RawMessage, dst interface{ path() string }) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return err
	}
	if dst.path() == "" {
		return errMissingPath
	}
	return nil
}

// === Basic Image Information Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (a *pathArgs) path() string { return a.Path }

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Shape Feature Handlers ===

type shapeExtractArgs struct {
	pathArgs
	MinArea       *int   `json:"min_area"`
	CloseRadius   *int   `json:"close_radius"`
	IncludeImages bool   `json:"include_images"`
	AnnotatedPath string `json:"annotated_path"`
}

type shapeExtractResult struct {
	RunID     string               `json:"run_id"`
	Threshold uint8                `json:"threshold"`
	Count     int                  `json:"count"`
	Skipped   int                  `json:"skipped"`
	Config    shape.Config         `json:"config"`
	Objects   []shape.ObjectRecord `json:"objects"`
	Panels    []render.Panel       `json:"panels,omitempty"`
	Saved     string               `json:"saved,omitempty"`
}

// pipelineFor returns the server pipeline, or a fresh one when the call
// overrides any setting.
func (s *Server) pipelineFor(minArea, closeRadius *int) (*shape.Pipeline, error) {
	if minArea == nil && closeRadius == nil {
		return s.pipeline, nil
	}
	cfg := s.cfg.Shape
	if minArea != nil {
		cfg.MinArea = *minArea
	}
	if closeRadius != nil {
		cfg.CloseRadius = *closeRadius
	}
	return s.newPipeline(cfg)
}

func (s *Server) handleShapeExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a shapeExtractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.MinArea, a.CloseRadius)
	if err != nil {
		return nil, err
	}
	res, err := p.RunFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	out := &shapeExtractResult{
		RunID:     res.RunID,
		Threshold: res.Threshold,
		Count:     len(res.Records),
		Skipped:   res.Skipped,
		Config:    p.Config(),
		Objects:   res.Records,
	}

	if !a.IncludeImages && a.AnnotatedPath == "" {
		return out, nil
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.IncludeImages {
		if out.Panels, err = render.Panels(img, res, render.DefaultOptions()); err != nil {
			return nil, err
		}
	}
	if a.AnnotatedPath != "" {
		annotated := render.Annotate(img, res.Records, render.DefaultOptions())
		if err := imaging.Save(annotated, a.AnnotatedPath); err != nil {
			return nil, err
		}
		out.Saved = a.AnnotatedPath
	}
	return out, nil
}

type shapeClassifyArgs struct {
	Metric       *float64 `json:"metric"`
	Eccentricity *float64 `json:"eccentricity"`
}

func (s *Server) handleShapeClassify(args json.RawMessage) (interface{}, error) {
	var a shapeClassifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Metric == nil || a.Eccentricity == nil {
		return nil, errors.New("metric and eccentricity are required")
	}
	return map[string]interface{}{
		"metric":       *a.Metric,
		"eccentricity": *a.Eccentricity,
		"label":        shape.Classify(*a.Metric, *a.Eccentricity),
	}, nil
}

type shapeCropObjectArgs struct {
	pathArgs
	Index   int     `json:"index"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
}

type shapeCropObjectResult struct {
	Index int         `json:"index"`
	Label shape.Label `json:"label"`
	*imaging.EncodedImage
}

func (s *Server) handleShapeCropObject(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a shapeCropObjectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	padding := 10
	if a.Padding != nil {
		padding = *a.Padding
	}

	res, err := s.pipeline.RunFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	rec, ok := res.Record(a.Index)
	if !ok {
		return nil, fmt.Errorf("no object with index %d: image has %d objects, %d skipped", a.Index, len(res.Records), res.Skipped)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	enc, err := render.CropObject(img, rec, padding, a.Scale)
	if err != nil {
		return nil, err
	}
	return &shapeCropObjectResult{Index: rec.Index, Label: rec.Label, EncodedImage: enc}, nil
}

func (s *Server) handleShapeFeaturePlot(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, err := s.pipeline.RunFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := report.FeaturePlotImage(res.Records)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(img)
}

// === Geometry Handlers ===

type geometryDistancesArgs struct {
	pathArgs
	Threshold     *uint8   `json:"threshold"`
	MinObjectArea *float64 `json:"min_object_area"`
	Resolution    *float64 `json:"resolution"`
	Count         *int     `json:"count"`
	IncludeImage  bool     `json:"include_image"`
}

type geometryDistancesResult struct {
	*geometry.DistanceResult
	Image *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleGeometryDistances(args json.RawMessage) (interface{}, error) {
	var a geometryDistancesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg := s.cfg.Geometry
	if a.Threshold != nil {
		cfg.Threshold = *a.Threshold
	}
	if a.MinObjectArea != nil {
		cfg.MinObjectArea = *a.MinObjectArea
	}
	if a.Resolution != nil {
		cfg.Resolution = *a.Resolution
	}
	if a.Count != nil {
		cfg.Count = *a.Count
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := geometry.MeasureDistances(imaging.Gray(img), cfg)
	if err != nil {
		return nil, err
	}

	out := &geometryDistancesResult{DistanceResult: res}
	if a.IncludeImage {
		if out.Image, err = imaging.EncodePNG(render.Distances(img, res)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// === Texture Handlers ===

type textureGLCMArgs struct {
	pathArgs
	Distances []int `json:"distances"`
}

func (s *Server) handleTextureGLCM(args json.RawMessage) (interface{}, error) {
	var a textureGLCMArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg := s.cfg.Texture
	if len(a.Distances) > 0 {
		cfg.Distances = a.Distances
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return texture.Analyze(imaging.Gray(img), cfg)
}

// === Color Handlers ===

type colorSegmentArgs struct {
	pathArgs
	TargetHue    *int `json:"target_hue"`
	Tolerance    *int `json:"tolerance"`
	IncludeImage bool `json:"include_image"`
}

type colorSegmentResult struct {
	*colorseg.Result
	Image *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleColorSegment(args json.RawMessage) (interface{}, error) {
	var a colorSegmentArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg := s.cfg.Color
	if a.TargetHue != nil {
		cfg.TargetHue = *a.TargetHue
	}
	if a.Tolerance != nil {
		cfg.Tolerance = *a.Tolerance
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := colorseg.Segment(img, cfg)
	if err != nil {
		return nil, err
	}

	out := &colorSegmentResult{Result: res}
	if a.IncludeImage {
		if out.Image, err = imaging.EncodePNG(res.Isolated); err != nil {
			return nil, err
		}
	}
	return out, nil
}
