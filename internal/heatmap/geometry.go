package heatmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Vertex is one picked pixel coordinate. Group is set only for grouped
// geometry, where it names the feature (e.g. the line segment) the vertex
// belongs to.
type Vertex struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Group string `json:"group,omitempty"`
}

// Geometry is the ordered vertex list of one pick submission.
type Geometry struct {
	Vertices []Vertex `json:"vertices"`
	Grouped  bool     `json:"grouped"`
}

// Len returns the number of vertices.
func (g Geometry) Len() int {
	return len(g.Vertices)
}

// Groups splits grouped geometry into runs of consecutive vertices that share
// a group label. A label that reappears after a different one starts a new
// run. Ungrouped geometry is returned as a single element.
func (g Geometry) Groups() []Geometry {
	if !g.Grouped || len(g.Vertices) == 0 {
		return []Geometry{g}
	}
	var groups []Geometry
	start := 0
	for i := 1; i <= len(g.Vertices); i++ {
		if i == len(g.Vertices) || g.Vertices[i].Group != g.Vertices[start].Group {
			groups = append(groups, Geometry{Vertices: g.Vertices[start:i]})
			start = i
		}
	}
	return groups
}

// ParseGeometry decodes pick JSON as stored by the service: an array of
// [x, y] or [x, y, group] rows. The array may itself be wrapped in a JSON
// string. Coordinates are truncated toward zero; magnitudes above
// MaxCoordinate are rejected. The arity of the first row
// decides whether the geometry is grouped; every row must match it.
//
// An empty array decodes to an empty Geometry without error; rasterising it
// reports ErrEmptyGeometry.
func ParseGeometry(data []byte) (Geometry, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return Geometry{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
		}
		return ParseGeometry([]byte(inner))
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return Geometry{}, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	if len(rows) == 0 {
		return Geometry{}, nil
	}

	arity := len(rows[0])
	if arity != 2 && arity != 3 {
		return Geometry{}, fmt.Errorf("%w: rows must have 2 or 3 values, got %d", ErrMalformedGeometry, arity)
	}

	g := Geometry{Vertices: make([]Vertex, 0, len(rows)), Grouped: arity == 3}
	for i, row := range rows {
		if len(row) != arity {
			return Geometry{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformedGeometry, i, len(row), arity)
		}
		var x, y float64
		if err := json.Unmarshal(row[0], &x); err != nil {
			return Geometry{}, fmt.Errorf("%w: row %d x: %v", ErrMalformedGeometry, i, err)
		}
		if err := json.Unmarshal(row[1], &y); err != nil {
			return Geometry{}, fmt.Errorf("%w: row %d y: %v", ErrMalformedGeometry, i, err)
		}
		if math.Abs(x) > MaxCoordinate || math.Abs(y) > MaxCoordinate {
			return Geometry{}, fmt.Errorf("%w: row %d (%g,%g) beyond ±%d", ErrMalformedGeometry, i, x, y, MaxCoordinate)
		}
		v := Vertex{X: int(x), Y: int(y)}
		if g.Grouped {
			v.Group = groupLabel(row[2])
		}
		g.Vertices = append(g.Vertices, v)
	}
	return g, nil
}

// groupLabel normalises a group value so that 1 and 1.0 compare equal.
func groupLabel(raw json.RawMessage) string {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
