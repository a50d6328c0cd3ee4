package heatmap

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Layer is a height x width raster of non-negative values.
//
// Occupancy layers hold 0 or 1; accumulated layers hold summed densities.
type Layer struct {
	m *mat.Dense
}

// NewLayer allocates an all-zero layer.
func NewLayer(height, width int) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Layer{m: mat.NewDense(height, width, nil)}, nil
}

// LayerFromRows builds a layer from row-major values. All rows must have the
// same non-zero length.
func LayerFromRows(rows [][]float64) (*Layer, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty rows", ErrInvalidDimensions)
	}
	w := len(rows[0])
	data := make([]float64, 0, len(rows)*w)
	for i, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrSizeMismatch, i, len(row), w)
		}
		data = append(data, row...)
	}
	return &Layer{m: mat.NewDense(len(rows), w, data)}, nil
}

// Width is the number of columns.
func (l *Layer) Width() int {
	_, c := l.m.Dims()
	return c
}

// Height is the number of rows.
func (l *Layer) Height() int {
	r, _ := l.m.Dims()
	return r
}

// At returns the value at row y, column x.
func (l *Layer) At(y, x int) float64 {
	return l.m.At(y, x)
}

// Set stores v at row y, column x.
func (l *Layer) Set(y, x int, v float64) {
	l.m.Set(y, x, v)
}

// Max returns the largest value in the layer.
func (l *Layer) Max() float64 {
	return mat.Max(l.m)
}

// Count returns the number of non-zero cells.
func (l *Layer) Count() int {
	n := 0
	for _, v := range l.m.RawMatrix().Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Rows copies the layer into row-major slices.
func (l *Layer) Rows() [][]float64 {
	h := l.Height()
	rows := make([][]float64, h)
	for y := 0; y < h; y++ {
		rows[y] = mat.Row(nil, y, l.m)
	}
	return rows
}

func (l *Layer) sameShape(o *Layer) bool {
	return l.Width() == o.Width() && l.Height() == o.Height()
}
