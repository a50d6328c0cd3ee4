package heatmap

import "fmt"

// MaxCoordinate bounds the magnitude of a pick coordinate. Larger values
// are rejected as malformed; anything within it is clamped to the layer.
const MaxCoordinate = 1 << 29

// Rasterize draws one pick into a fresh occupancy layer sized to spec.
//
// Parameters:
//   - g: The pick geometry. Grouped geometry is split into runs of equal group
//     labels and every run is drawn as its own sub-geometry of the same style
//     into the same layer.
//   - spec: Image width, height and pick style.
//
// Returns:
//   - *Layer: A spec.Height x spec.Width layer holding 1 on every touched
//     pixel and 0 elsewhere.
//   - error: Non-nil if the pick cannot be drawn.
//
// Coordinates beyond an edge clamp to that edge. Segments that run far
// outside the image cost no more than ones inside it.
//
// # Errors
//
//   - ErrInvalidDimensions if width or height is not positive
//   - ErrEmptyGeometry if g has no vertices
//   - ErrMalformedGeometry if a coordinate exceeds MaxCoordinate in magnitude
//   - ErrUnknownPickStyle if spec.Style is not points, polyline or polygon
func Rasterize(g Geometry, spec ImageSpec) (*Layer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if g.Len() == 0 {
		return nil, ErrEmptyGeometry
	}
	layer, err := NewLayer(spec.Height, spec.Width)
	if err != nil {
		return nil, err
	}
	if err := DrawGeometry(layer, g, spec.Style); err != nil {
		return nil, err
	}
	return layer, nil
}

// DrawGeometry marks the pixels of g in an existing layer. Marking a cell that
// is already set is a no-op, so repeated and self-intersecting picks are safe.
func DrawGeometry(layer *Layer, g Geometry, style PickStyle) error {
	if g.Len() == 0 {
		return ErrEmptyGeometry
	}
	for i, v := range g.Vertices {
		if outOfRange(v.X) || outOfRange(v.Y) {
			return fmt.Errorf("%w: vertex %d (%d,%d) beyond ±%d", ErrMalformedGeometry, i, v.X, v.Y, MaxCoordinate)
		}
	}
	for _, group := range g.Groups() {
		switch style {
		case Points:
			for _, v := range group.Vertices {
				mark(layer, v.X, v.Y)
			}
		case Polyline:
			drawPath(layer, group.Vertices)
		case Polygon:
			closed := make([]Vertex, 0, len(group.Vertices)+1)
			closed = append(closed, group.Vertices...)
			closed = append(closed, group.Vertices[0])
			drawPath(layer, closed)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownPickStyle, style)
		}
	}
	return nil
}

func outOfRange(c int) bool {
	return c > MaxCoordinate || c < -MaxCoordinate
}

// drawPath connects consecutive vertices. A lone vertex is marked as is.
func drawPath(layer *Layer, vs []Vertex) {
	if len(vs) == 1 {
		mark(layer, vs[0].X, vs[0].Y)
		return
	}
	for i := 0; i < len(vs)-1; i++ {
		drawSegment(layer, vs[i], vs[i+1])
	}
}

// drawSegment marks the clamped pixels of the segment from a to b.
//
// The result equals interpolating the sorted endpoint pairs, reversing the
// output of each descending axis and clamping every pixel. When exactly one
// axis descends the minor axis pairs with the dominant axis read backwards,
// which is what flip tracks.
//
// Only dominant positions inside the layer are stepped. Positions beyond an
// edge collapse onto that edge; the minor axis is monotone with unit steps
// there, so those pixels form one run between the clamped minor values at
// the ends of the out-of-layer stretch.
func drawSegment(layer *Layer, a, b Vertex) {
	xp := sortedPair(a.X, b.X)
	yp := sortedPair(a.Y, b.Y)
	flip := (a.X > b.X) != (a.Y > b.Y)

	xMajor := xp[1]-xp[0] >= yp[1]-yp[0]
	dom, minor := xp, yp
	domSize, minorSize := layer.Width(), layer.Height()
	if !xMajor {
		dom, minor = yp, xp
		domSize, minorSize = layer.Height(), layer.Width()
	}

	set := func(d, m int) {
		if xMajor {
			mark(layer, d, m)
		} else {
			mark(layer, m, d)
		}
	}
	lo, hi := dom[0], dom[1]
	// minorAt returns the minor coordinate paired with dominant position p.
	minorAt := func(p int) int {
		d := p
		if flip {
			d = lo + hi - p
		}
		return int(interp(float64(d), dom, minor))
	}
	run := func(edge, p1, p2 int) {
		m1, m2 := minorAt(p1), minorAt(p2)
		if m1 > m2 {
			m1, m2 = m2, m1
		}
		last := clamp(m2, 0, minorSize-1)
		for m := clamp(m1, 0, minorSize-1); m <= last; m++ {
			set(edge, m)
		}
	}

	for p := max(lo, 0); p <= min(hi, domSize-1); p++ {
		set(p, minorAt(p))
	}
	if lo < 0 {
		run(0, lo, min(hi, -1))
	}
	if hi > domSize-1 {
		run(domSize-1, max(lo, domSize), hi)
	}
}

func sortedPair(a, b int) [2]int {
	if a > b {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}

// mark sets layer[y, x] = 1 after clamping to the layer bounds.
func mark(layer *Layer, x, y int) {
	x = clamp(x, 0, layer.Width()-1)
	y = clamp(y, 0, layer.Height()-1)
	layer.Set(y, x, 1)
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
