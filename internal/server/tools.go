package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pairProperties are the inputs shared by the image pair tools.
func pairProperties() map[string]interface{} {
	return map[string]interface{}{
		"original": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the original image",
		},
		"changed": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the changed image. Must have the same size as the original.",
		},
		"padding": map[string]interface{}{
			"type":        "integer",
			"description": "Margin in pixels added around each changed region before clustering. Default 10",
			"default":     10,
		},
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Fixed difference threshold (0-255). Omit to pick one automatically with Otsu's method.",
		},
		"blur_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur applied to both images before differencing. 0 disables it.",
			"default":     0.0,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	diffProps := pairProperties()
	diffProps["outline_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Hex color of the cluster outlines (#RGB or #RRGGBB). Default #FF0000",
		"default":     "#FF0000",
	}
	diffProps["outline_width"] = map[string]interface{}{
		"type":        "integer",
		"description": "Outline stroke width in pixels. Default 3",
		"default":     3,
	}
	diffProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional path to save the outlined image as PNG",
	}
	diffProps["include_image"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the outlined image inline as base64 PNG. Default false",
		"default":     false,
	}

	return []Tool{
		{
			Name:        "image_info",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Change detection
		{
			Name:        "diff_images",
			Description: "Compare two equally sized images, merge overlapping changed areas into clusters and outline each cluster on the changed image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": diffProps,
				"required":   []string{"original", "changed"},
			},
		},
		{
			Name:        "detect_change_regions",
			Description: "Find the padded bounding rectangle of every changed area between two equally sized images, before clustering.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pairProperties(),
				"required":   []string{"original", "changed"},
			},
		},
		{
			Name:        "cluster_rectangles",
			Description: "Merge rectangles that overlap, directly or through a chain of overlaps, and return each group's bounding rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rectangles": map[string]interface{}{
						"type":        "array",
						"description": "Rectangles as {x, y, width, height} in pixels",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":      map[string]interface{}{"type": "integer"},
								"y":      map[string]interface{}{"type": "integer"},
								"width":  map[string]interface{}{"type": "integer"},
								"height": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x", "y", "width", "height"},
						},
					},
				},
				"required": []string{"rectangles"},
			},
		},

		// Documents
		{
			Name:        "diff_documents",
			Description: "Compare two PDF documents page by page and write an HTML side-by-side report with changed areas outlined. Returns the report location and a per-page summary.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"original": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the original PDF",
					},
					"changed": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the changed PDF",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Report directory. Default is a timestamped directory in the working directory",
					},
					"dpi": map[string]interface{}{
						"type":        "integer",
						"description": "Rasterization resolution. Default 200",
						"default":     200,
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Margin in pixels added around each changed region before clustering. Default 10",
						"default":     10,
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Fixed difference threshold (0-255). Omit for automatic thresholding.",
					},
				},
				"required": []string{"original", "changed"},
			},
		},

		{
			Name:        "ocr_status",
			Description: "Report whether text recognition under changed clusters is available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
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
