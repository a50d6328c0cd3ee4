package heatmap

// Interpolate traces the integer pixels between two endpoints.
//
// xIn and yIn hold the endpoint coordinates (x1, x2) and (y1, y2). The axis
// with the larger inclusive range, max-min+1, is stepped by one pixel from
// its minimum to its maximum; x wins ties. The other axis is linearly
// interpolated at each step and truncated toward zero. Values outside the
// sample range take the nearest endpoint value.
//
// Both outputs have the same length, at least 1. Equal endpoints yield the
// point itself. The length grows with the endpoint distance, so callers must
// bound the endpoints; Rasterize clips segments to the layer instead of
// calling Interpolate.
func Interpolate(xIn, yIn [2]int) (xOut, yOut []int) {
	xs := span(xIn)
	ys := span(yIn)

	if len(xs) >= len(ys) {
		yOut = make([]int, len(xs))
		for i, x := range xs {
			yOut[i] = int(interp(float64(x), xIn, yIn))
		}
		return xs, yOut
	}

	xOut = make([]int, len(ys))
	for i, y := range ys {
		xOut[i] = int(interp(float64(y), yIn, xIn))
	}
	return xOut, ys
}

// span lists every integer from min(p) to max(p) inclusive.
func span(p [2]int) []int {
	lo, hi := p[0], p[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	out := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

// interp evaluates the line through (xp[0], fp[0]) and (xp[1], fp[1]) at x.
func interp(x float64, xp, fp [2]int) float64 {
	x0, x1 := float64(xp[0]), float64(xp[1])
	f0, f1 := float64(fp[0]), float64(fp[1])
	if x0 > x1 {
		x0, x1 = x1, x0
		f0, f1 = f1, f0
	}
	switch {
	case x <= x0:
		return f0
	case x >= x1:
		return f1
	}
	return f0 + (x-x0)*(f1-f0)/(x1-x0)
}
