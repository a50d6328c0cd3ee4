package heatmap

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"gonum.org/v1/gonum/mat"
)

// Disk returns a (2r+1)x(2r+1) structuring element holding every offset
// (dx, dy) with dx²+dy² <= r². A radius below 0 is treated as 0.
func Disk(r int) [][]bool {
	if r < 0 {
		r = 0
	}
	size := 2*r + 1
	se := make([][]bool, size)
	for i := range se {
		se[i] = make([]bool, size)
		dy := i - r
		for j := range se[i] {
			dx := j - r
			se[i][j] = dx*dx+dy*dy <= r*r
		}
	}
	return se
}

// diskHalfWidths returns, for each row offset dy in [-r, r], the largest dx
// with dx²+dy² <= r². Index i holds dy = i - r.
func diskHalfWidths(r int) []int {
	hw := make([]int, 2*r+1)
	for i := range hw {
		dy := i - r
		k := 0
		for (k+1)*(k+1)+dy*dy <= r*r {
			k++
		}
		hw[i] = k
	}
	return hw
}

// Dilate grows a layer by a disk of the given radius.
//
// Parameters:
//   - layer: The layer to grow. It is not modified.
//   - radius: Disk radius in pixels. Values below 0 are treated as 0, which
//     returns a copy of layer.
//
// Returns:
//   - *Layer: A new layer of the same size. Each pixel is the maximum of the
//     input over the disk centred on it, with pixels outside the layer
//     counting as 0.
//
// Rows are computed in parallel. Dilate does not fail; sizing and radius
// errors are caught by Radius and Rasterize before it runs.
func Dilate(layer *Layer, radius int) *Layer {
	if radius < 0 {
		radius = 0
	}
	h, w := layer.Height(), layer.Width()
	src := layer.m.RawMatrix()
	out := mat.NewDense(h, w, nil)
	dst := out.RawMatrix()
	hw := diskHalfWidths(radius)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				best := math.Inf(-1)
				clipped := false
				for i, k := range hw {
					sy := y + i - radius
					if sy < 0 || sy >= h {
						clipped = true
						continue
					}
					lo, hi := x-k, x+k
					if lo < 0 {
						lo = 0
						clipped = true
					}
					if hi > w-1 {
						hi = w - 1
						clipped = true
					}
					row := src.Data[sy*src.Stride : sy*src.Stride+w]
					for sx := lo; sx <= hi; sx++ {
						if row[sx] > best {
							best = row[sx]
						}
					}
				}
				if clipped && best < 0 {
					best = 0
				}
				dst.Data[y*dst.Stride+x] = best
			}
		}
	})

	return &Layer{m: out}
}

// UserLayer rasterises one pick and dilates it with the radius for spec.
func UserLayer(g Geometry, spec ImageSpec) (*Layer, error) {
	occ, err := Rasterize(g, spec)
	if err != nil {
		return nil, err
	}
	return Dilate(occ, Radius(spec)), nil
}
