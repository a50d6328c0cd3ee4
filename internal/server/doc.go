// Package server implements the MCP (Model Context Protocol) server for pick
// heatmaps.
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
// # Available Tools
//
// Service records:
//   - pick_images: List images or fetch one image record
//   - pick_picks: Fetch all picks for an image
//   - pick_users: List users or fetch one user record
//
// Heatmap parameters:
//   - heatmap_radius: Dilation radius for an image size and pick style
//   - heatmap_legend: Samples of the colour ramp
//
// Rendering:
//   - heatmap_from_geometry: Render from geometry given in the call
//   - heatmap_user_layer: Render and cache one user's layer
//   - heatmap_composite: Render and cache the composite, optionally per
//     cohort and optionally overlaid on the base image
//   - heatmap_invalidate: Mark an image's cached heatmaps stale
//
// heatmap_user_layer and heatmap_composite take an optional region (for
// example "top-left" or "center") to return only part of the image.
//
// # Caching
//
// Rendered heatmaps are written through to the configured store.LayerCache;
// composites are served from it until invalidated. Base images used for
// overlays are kept in an in-memory imaging.ImageCache for the life of the
// process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
