// Package imaging handles the base pictures that heatmaps are drawn on.
//
// It caches decoded base images and overlays colour-mapped heatmaps onto
// them. Results can be cropped to a named region (see RegionNames) and are
// packaged as base64 PNG for tool clients.
//
// # Coordinate System
//
// Heatmaps and base images share pixel coordinates with (0,0) at the top-left
// corner. When a heatmap was rendered at a different size than the base
// picture it is stretched with nearest-neighbour sampling before blending.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Overlay and the result
// helpers are stateless.
package imaging
