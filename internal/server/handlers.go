package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/agile-geoscience/pickthat/internal/api"
	"github.com/agile-geoscience/pickthat/internal/heatmap"
	imgutil "github.com/agile-geoscience/pickthat/internal/imaging"
)

var errNoClient = errors.New("no Pick This service configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "heatmap_composite").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Service records
	case "pick_images":
		return s.handlePickImages(ctx, args)
	case "pick_picks":
		return s.handlePickPicks(ctx, args)
	case "pick_users":
		return s.handlePickUsers(ctx, args)

	// Heatmap parameters
	case "heatmap_radius":
		return s.handleHeatmapRadius(args)
	case "heatmap_legend":
		return s.handleHeatmapLegend(args)

	// Rendering
	case "heatmap_from_geometry":
		return s.handleHeatmapFromGeometry(ctx, args)
	case "heatmap_user_layer":
		return s.handleHeatmapUserLayer(ctx, args)
	case "heatmap_composite":
		return s.handleHeatmapComposite(ctx, args)
	case "heatmap_invalidate":
		return s.handleHeatmapInvalidate(ctx, args)

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

// HeatmapResult is returned by the rendering tools.
type HeatmapResult struct {
	*imgutil.ImageResult

	ImageID string   `json:"image_id,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	Cohort  string   `json:"cohort,omitempty"`
	Layers  int      `json:"layers"`
	Skipped []string `json:"skipped,omitempty"`
	Cached  bool     `json:"cached"`
}

// === Service Record Handlers ===

type imageIDArgs struct {
	ImageID string `json:"image_id"`
}

func (s *Server) handlePickImages(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, errNoClient
	}
	return s.client.Images(ctx, a.ImageID)
}

func (s *Server) handlePickPicks(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, errNoClient
	}
	return s.client.Picks(ctx, a.ImageID)
}

type userIDArgs struct {
	UserID string `json:"user_id"`
}

func (s *Server) handlePickUsers(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a userIDArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if s.client == nil {
		return nil, errNoClient
	}
	return s.client.Users(ctx, a.UserID)
}

// === Heatmap Parameter Handlers ===

type heatmapRadiusArgs struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PickStyle string `json:"pickstyle"`
}

func (s *Server) handleHeatmapRadius(args json.RawMessage) (interface{}, error) {
	var a heatmapRadiusArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	spec, err := specFromArgs(a.Width, a.Height, a.PickStyle)
	if err != nil {
		return nil, err
	}
	r := heatmap.Radius(spec)
	return map[string]interface{}{
		"radius":    r,
		"disk_size": 2*r + 1,
		"pickstyle": spec.Style,
	}, nil
}

type heatmapLegendArgs struct {
	Stops int `json:"stops"`
}

func (s *Server) handleHeatmapLegend(args json.RawMessage) (interface{}, error) {
	var a heatmapLegendArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if a.Stops == 0 {
		a.Stops = 5
	}
	return map[string]interface{}{
		"stops": heatmap.Legend(a.Stops),
	}, nil
}

// === Rendering Handlers ===

type heatmapFromGeometryArgs struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	PickStyle string `json:"pickstyle"`
	Picks     []struct {
		UserID   string          `json:"user_id"`
		Cohort   string          `json:"cohort"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"picks"`
	Cohort string  `json:"cohort"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleHeatmapFromGeometry(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a heatmapFromGeometryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	spec, err := specFromArgs(a.Width, a.Height, a.PickStyle)
	if err != nil {
		return nil, err
	}

	picks := make([]heatmap.Pick, 0, len(a.Picks))
	var skipped []string
	for i, p := range a.Picks {
		userID := p.UserID
		if userID == "" {
			userID = fmt.Sprintf("pick-%d", i)
		}
		g, err := heatmap.ParseGeometry(p.Geometry)
		if err != nil {
			skipped = append(skipped, userID)
			continue
		}
		picks = append(picks, heatmap.Pick{UserID: userID, Cohort: p.Cohort, Geometry: g})
	}

	// Ad hoc geometry has no image identity, so nothing is cached.
	res, err := heatmap.NewCompositor(nil).Heatmap(ctx, "", spec, picks, a.Cohort)
	if err != nil {
		return nil, err
	}
	img, err := imgutil.PNGResult(res.PNG, a.Scale)
	if err != nil {
		return nil, err
	}
	return &HeatmapResult{
		ImageResult: img,
		Cohort:      a.Cohort,
		Layers:      res.Layers,
		Skipped:     append(skipped, res.Skipped...),
	}, nil
}

type heatmapUserLayerArgs struct {
	ImageID string  `json:"image_id"`
	UserID  string  `json:"user_id"`
	Region  string  `json:"region"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleHeatmapUserLayer(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a heatmapUserLayerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.UserID == "" {
		return nil, heatmap.ErrMissingUserID
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	_, spec, picks, _, err := s.loadImage(ctx, a.ImageID)
	if err != nil {
		return nil, err
	}

	var layers []heatmap.Pick
	for _, p := range picks {
		if p.UserID == a.UserID {
			layers = append(layers, p)
		}
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("user %s has no valid picks on image %s", a.UserID, a.ImageID)
	}

	// A user may submit more than once; the latest submission wins.
	res, err := s.compositor.UserHeatmap(ctx, a.ImageID, spec, layers[len(layers)-1])
	if err != nil {
		if heatmap.IsPickError(err) {
			return nil, fmt.Errorf("invalid picks: %w", err)
		}
		return nil, err
	}
	img, err := imgutil.RegionResult(res.PNG, a.Region, a.Scale)
	if err != nil {
		return nil, err
	}
	return &HeatmapResult{
		ImageResult: img,
		ImageID:     a.ImageID,
		UserID:      a.UserID,
		Cohort:      layers[len(layers)-1].Cohort,
		Layers:      res.Layers,
	}, nil
}

type heatmapCompositeArgs struct {
	ImageID string   `json:"image_id"`
	Cohort  string   `json:"cohort"`
	Overlay bool     `json:"overlay"`
	Opacity *float64 `json:"opacity"`
	Region  string   `json:"region"`
	Scale   float64  `json:"scale"`
}

func (s *Server) handleHeatmapComposite(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a heatmapCompositeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	opacity := 0.8
	if a.Opacity != nil {
		opacity = *a.Opacity
	}

	rec, spec, picks, skipped, err := s.loadImage(ctx, a.ImageID)
	if err != nil {
		return nil, err
	}
	res, err := s.compositor.Heatmap(ctx, a.ImageID, spec, picks, a.Cohort)
	if err != nil {
		return nil, err
	}

	var img *imgutil.ImageResult
	if a.Overlay {
		img, err = s.overlay(ctx, rec, res.PNG, opacity, a.Region, a.Scale)
	} else {
		img, err = imgutil.RegionResult(res.PNG, a.Region, a.Scale)
	}
	if err != nil {
		return nil, err
	}
	return &HeatmapResult{
		ImageResult: img,
		ImageID:     a.ImageID,
		Cohort:      a.Cohort,
		Layers:      res.Layers,
		Skipped:     append(skipped, res.Skipped...),
		Cached:      res.Cached,
	}, nil
}

func (s *Server) handleHeatmapInvalidate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImageID == "" {
		return nil, api.ErrImageIDRequired
	}
	n, err := s.compositor.Invalidate(ctx, a.ImageID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image_id":    a.ImageID,
		"invalidated": n,
	}, nil
}

// loadImage fetches an image record and its picks. Picks whose coordinates
// cannot be parsed are returned in skipped.
func (s *Server) loadImage(ctx context.Context, imageID string) (*api.Image, heatmap.ImageSpec, []heatmap.Pick, []string, error) {
	if s.client == nil {
		return nil, heatmap.ImageSpec{}, nil, nil, errNoClient
	}
	rec, err := s.client.Image(ctx, imageID)
	if err != nil {
		return nil, heatmap.ImageSpec{}, nil, nil, err
	}
	spec, err := rec.Spec()
	if err != nil {
		return nil, heatmap.ImageSpec{}, nil, nil, err
	}
	raw, err := s.client.Picks(ctx, imageID)
	if err != nil {
		return nil, heatmap.ImageSpec{}, nil, nil, err
	}

	picks := make([]heatmap.Pick, 0, len(raw))
	var skipped []string
	for _, r := range raw {
		p, err := r.HeatmapPick()
		if err != nil {
			skipped = append(skipped, r.UserID)
			continue
		}
		picks = append(picks, p)
	}
	return rec, spec, picks, skipped, nil
}

// overlay blends a rendered heatmap onto the image record's picture.
func (s *Server) overlay(ctx context.Context, rec *api.Image, heatPNG []byte, opacity float64, region string, scale float64) (*imgutil.ImageResult, error) {
	if rec.Link == "" {
		return nil, fmt.Errorf("image %s has no link to overlay on", rec.ID)
	}
	base, err := s.images.Get(rec.Link, func() (image.Image, error) {
		return s.client.FetchImage(ctx, rec.Link)
	})
	if err != nil {
		return nil, err
	}
	heat, err := imaging.Decode(bytes.NewReader(heatPNG))
	if err != nil {
		return nil, fmt.Errorf("failed to decode heatmap: %w", err)
	}
	blended, err := imgutil.Crop(imgutil.Overlay(base, heat, opacity), region)
	if err != nil {
		return nil, err
	}
	return imgutil.NewImageResult(blended, scale)
}

func specFromArgs(width, height int, pickstyle string) (heatmap.ImageSpec, error) {
	style, err := heatmap.ParsePickStyle(pickstyle)
	if err != nil {
		return heatmap.ImageSpec{}, err
	}
	spec := heatmap.ImageSpec{Width: width, Height: height, Style: style}
	if err := spec.Validate(); err != nil {
		return heatmap.ImageSpec{}, err
	}
	return spec, nil
}
