package server

import imgutil "github.com/agile-geoscience/pickthat/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func imageIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Image identifier on the Pick This service",
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned image. Default 1.0",
		"default":     1.0,
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        imgutil.RegionNames,
		"description": "Optional part of the image to return. Default full",
	}
}

func pickStyleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"points", "polyline", "polygon"},
		"description": "How picks on the image are drawn",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Service records
		{
			Name:        "pick_images",
			Description: "List images on the Pick This service, or fetch one image record by id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
				},
			},
		},
		{
			Name:        "pick_picks",
			Description: "Fetch every user's picks for an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
				},
				"required": []string{"image_id"},
			},
		},

		{
			Name:        "pick_users",
			Description: "List users on the Pick This service, or fetch one user record by id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"user_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional user identifier. Omit to list every user",
					},
				},
			},
		},

		// Heatmap parameters
		{
			Name:        "heatmap_radius",
			Description: "Return the dilation disk radius used for an image of the given size and pick style.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width":     map[string]interface{}{"type": "integer", "description": "Image width in pixels"},
					"height":    map[string]interface{}{"type": "integer", "description": "Image height in pixels"},
					"pickstyle": pickStyleProperty(),
				},
				"required": []string{"width", "height", "pickstyle"},
			},
		},
		{
			Name:        "heatmap_legend",
			Description: "Sample the heatmap colour ramp, from transparent (no picks) through red and yellow to white (most picks).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stops": map[string]interface{}{
						"type":        "integer",
						"description": "Number of evenly spaced samples (default 5)",
						"default":     5,
					},
				},
			},
		},

		// Rendering
		{
			Name:        "heatmap_from_geometry",
			Description: "Render a heatmap from pick geometry supplied in the call, without contacting the service.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width":     map[string]interface{}{"type": "integer", "description": "Image width in pixels"},
					"height":    map[string]interface{}{"type": "integer", "description": "Image height in pixels"},
					"pickstyle": pickStyleProperty(),
					"picks": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"user_id": map[string]interface{}{"type": "string"},
								"cohort":  map[string]interface{}{"type": "string"},
								"geometry": map[string]interface{}{
									"type":        "array",
									"description": "Coordinates as [[x,y],...] or [[x,y,group],...]",
								},
							},
							"required": []string{"geometry"},
						},
					},
					"cohort": map[string]interface{}{
						"type":        "string",
						"description": "Only include picks from this cohort",
					},
					"scale": scaleProperty(),
				},
				"required": []string{"width", "height", "pickstyle", "picks"},
			},
		},
		{
			Name:        "heatmap_user_layer",
			Description: "Render one user's heatmap layer for an image and cache it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"user_id":  map[string]interface{}{"type": "string", "description": "User whose picks to render"},
					"region":   regionProperty(),
					"scale":    scaleProperty(),
				},
				"required": []string{"image_id", "user_id"},
			},
		},
		{
			Name:        "heatmap_composite",
			Description: "Render the composite heatmap of all users' picks on an image, optionally for one cohort and optionally overlaid on the image itself.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
					"cohort": map[string]interface{}{
						"type":        "string",
						"description": "Only include picks from this cohort",
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Blend the heatmap over the base image",
						"default":     false,
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Heatmap opacity when overlaid (0-1, default 0.8)",
						"default":     0.8,
					},
					"region": regionProperty(),
					"scale":  scaleProperty(),
				},
				"required": []string{"image_id"},
			},
		},
		{
			Name:        "heatmap_invalidate",
			Description: "Mark every cached heatmap of an image as stale so it is re-rendered on next request.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": imageIDProperty(),
				},
				"required": []string{"image_id"},
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
