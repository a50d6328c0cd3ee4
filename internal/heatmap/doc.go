// Package heatmap turns user picks on an image into a colour-mapped density
// layer.
//
// A pick is an ordered list of pixel coordinates drawn by one user. The
// pipeline runs in four stages:
//
//  1. Rasterize: mark every pixel the pick touches in an occupancy layer.
//     Points are marked directly, polylines and polygons are connected by
//     stepping along the axis with the larger range (see Interpolate).
//  2. Dilate: grow the occupancy layer by a disk whose radius follows the
//     image size and pick style (see Radius and Dilate).
//  3. Composite: sum the dilated layers of many users into one accumulator.
//  4. Colour map: normalise to 0-255 and build an RGBA heat ramp where
//     zero-density pixels are fully transparent (see ColorImage).
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner. A Layer is
// indexed (row, column), i.e. (y, x). Coordinates beyond the right or bottom
// edge clamp to the last column or row; negative coordinates clamp to 0.
//
// # Thread Safety
//
// All functions are pure over their inputs and return freshly allocated
// layers. A Layer is not safe for concurrent mutation, but independent
// layers may be produced concurrently and summed in any order.
//
// # Error Handling
//
// Errors are sentinel values matched with errors.Is:
//   - ErrEmptyGeometry: a pick with no vertices
//   - ErrInvalidDimensions: a non-positive width or height
//   - ErrMalformedGeometry: pick JSON that is not a list of [x,y] rows
//   - ErrUnknownPickStyle: an unrecognised pick style name
//   - ErrSizeMismatch: compositing layers of different shapes
//
// An all-zero accumulator is not an error; it colour maps to a fully
// transparent image.
package heatmap
