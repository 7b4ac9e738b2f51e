package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent calls.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
			}, "path"),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
			}, "path"),
		},

		// Shape Features
		{
			Name: "shape_extract",
			Description: "Segment the bright objects of an image (Otsu threshold, small object removal, disk closing, hole filling) " +
				"and report area, perimeter, eccentricity, centroid, roundness metric and shape label for each one.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
				"min_area": map[string]interface{}{
					"type":        "integer",
					"description": "Smallest object area in square pixels. Default 30",
					"default":     30,
				},
				"close_radius": map[string]interface{}{
					"type":        "integer",
					"description": "Radius of the closing disk; 0 disables closing. Default 2",
					"default":     2,
				},
				"include_images": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return grayscale, mask and annotated panels as base64 PNG",
					"default":     false,
				},
				"annotated_path": map[string]interface{}{
					"type":        "string",
					"description": "Optional path to save the annotated image to",
				},
			}, "path"),
		},
		{
			Name:        "shape_classify",
			Description: "Classify a shape from its roundness metric and eccentricity: Round if metric > 0.8, else Elongated if eccentricity > 0.85, else Other.",
			InputSchema: objectSchema(map[string]interface{}{
				"metric": map[string]interface{}{
					"type":        "number",
					"description": "Roundness metric 4*pi*area/perimeter^2",
				},
				"eccentricity": map[string]interface{}{
					"type":        "number",
					"description": "Eccentricity of the fitted ellipse, 0 to 1",
				},
			}, "metric", "eccentricity"),
		},
		{
			Name:        "shape_crop_object",
			Description: "Crop one extracted object by its 1-based index and return it as base64-encoded PNG.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "1-based object index as reported by shape_extract",
				},
				"padding": map[string]interface{}{
					"type":        "integer",
					"description": "Pixels added around the bounding box. Default 10",
					"default":     10,
				},
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
					"default":     1.0,
				},
			}, "path", "index"),
		},
		{
			Name:        "shape_feature_plot",
			Description: "Plot every object's roundness metric against its eccentricity with the classification thresholds, as base64-encoded PNG.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
			}, "path"),
		},

		// Geometry
		{
			Name:        "geometry_distances",
			Description: "Threshold an image, number the object centroids top-to-bottom then left-to-right, and measure every pairwise distance in pixels and millimetres.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Binary threshold; samples above it are objects. Default 150",
					"default":     150,
				},
				"min_object_area": map[string]interface{}{
					"type":        "number",
					"description": "Objects must be larger than this area. Default 100",
					"default":     100,
				},
				"resolution": map[string]interface{}{
					"type":        "number",
					"description": "Pixels per millimetre. Default 1.4798",
					"default":     1.4798,
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of objects to measure. Default 4",
					"default":     4,
				},
				"include_image": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return the centroid and distance overlay as base64 PNG",
					"default":     false,
				},
			}, "path"),
		},

		// Texture
		{
			Name:        "texture_glcm",
			Description: "Compute grey-level co-occurrence texture features (contrast, correlation, energy, homogeneity) per distance, averaged over 0, 45, 90 and 135 degrees.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
				"distances": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Pixel distances. Default [1, 2, 3]",
				},
			}, "path"),
		},

		// Color
		{
			Name:        "color_segment",
			Description: "Keep the pixels whose hue (0-179 scale) lies within tolerance of a target hue and paint everything else white.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": pathProperty(),
				"target_hue": map[string]interface{}{
					"type":        "integer",
					"description": "Target hue on the 0-179 scale. Default 164",
					"default":     164,
				},
				"tolerance": map[string]interface{}{
					"type":        "integer",
					"description": "Inclusive hue tolerance. Default 10",
					"default":     10,
				},
				"include_image": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return the segmented image as base64 PNG",
					"default":     false,
				},
			}, "path"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
