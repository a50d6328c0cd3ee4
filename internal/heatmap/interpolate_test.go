package heatmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name   string
		xIn    [2]int
		yIn    [2]int
		wantXs []int
		wantYs []int
	}{
		{"single point", [2]int{5, 5}, [2]int{5, 5}, []int{5}, []int{5}},
		{"horizontal", [2]int{0, 3}, [2]int{2, 2}, []int{0, 1, 2, 3}, []int{2, 2, 2, 2}},
		{"vertical", [2]int{1, 1}, [2]int{0, 3}, []int{1, 1, 1, 1}, []int{0, 1, 2, 3}},
		{"x dominant truncates y", [2]int{0, 4}, [2]int{0, 2}, []int{0, 1, 2, 3, 4}, []int{0, 0, 1, 1, 2}},
		{"y dominant truncates x", [2]int{0, 2}, [2]int{0, 4}, []int{0, 0, 1, 1, 2}, []int{0, 1, 2, 3, 4}},
		{"tie goes to x", [2]int{0, 3}, [2]int{10, 13}, []int{0, 1, 2, 3}, []int{10, 11, 12, 13}},
		{"descending other axis", [2]int{0, 4}, [2]int{4, 0}, []int{0, 1, 2, 3, 4}, []int{4, 3, 2, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs, ys := Interpolate(tt.xIn, tt.yIn)
			if diff := cmp.Diff(tt.wantXs, xs); diff != "" {
				t.Errorf("xs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantYs, ys); diff != "" {
				t.Errorf("ys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInterpolate_StepsAndEndpoints(t *testing.T) {
	pairs := []struct {
		xIn, yIn [2]int
	}{
		{[2]int{0, 10}, [2]int{0, 3}},
		{[2]int{3, 90}, [2]int{7, 40}},
		{[2]int{2, 2}, [2]int{0, 17}},
		{[2]int{100, 250}, [2]int{300, 301}},
		{[2]int{0, 7}, [2]int{0, 7}},
	}

	for _, p := range pairs {
		xs, ys := Interpolate(p.xIn, p.yIn)
		if len(xs) != len(ys) {
			t.Fatalf("%v %v: lengths differ: %d vs %d", p.xIn, p.yIn, len(xs), len(ys))
		}

		xr := p.xIn[1] - p.xIn[0] + 1
		yr := p.yIn[1] - p.yIn[0] + 1
		want := xr
		if yr > xr {
			want = yr
		}
		if len(xs) != want {
			t.Errorf("%v %v: got %d steps, want %d", p.xIn, p.yIn, len(xs), want)
		}

		if xs[0] != p.xIn[0] || ys[0] != p.yIn[0] {
			t.Errorf("%v %v: first point (%d,%d), want (%d,%d)", p.xIn, p.yIn, xs[0], ys[0], p.xIn[0], p.yIn[0])
		}
		last := len(xs) - 1
		if xs[last] != p.xIn[1] || ys[last] != p.yIn[1] {
			t.Errorf("%v %v: last point (%d,%d), want (%d,%d)", p.xIn, p.yIn, xs[last], ys[last], p.xIn[1], p.yIn[1])
		}
	}
}
