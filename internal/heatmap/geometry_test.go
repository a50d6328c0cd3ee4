package heatmap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Geometry
	}{
		{
			name: "pairs",
			in:   `[[1,2],[3,4]]`,
			want: Geometry{Vertices: []Vertex{{X: 1, Y: 2}, {X: 3, Y: 4}}},
		},
		{
			name: "string encoded",
			in:   `"[[10, 20], [30, 40]]"`,
			want: Geometry{Vertices: []Vertex{{X: 10, Y: 20}, {X: 30, Y: 40}}},
		},
		{
			name: "floats truncate",
			in:   `[[1.7, 2.2], [3.999, 0.5]]`,
			want: Geometry{Vertices: []Vertex{{X: 1, Y: 2}, {X: 3, Y: 0}}},
		},
		{
			name: "grouped",
			in:   `[[0,0,1],[5,0,1.0],[0,9,"b"]]`,
			want: Geometry{Grouped: true, Vertices: []Vertex{
				{X: 0, Y: 0, Group: "1"},
				{X: 5, Y: 0, Group: "1"},
				{X: 0, Y: 9, Group: "b"},
			}},
		},
		{
			name: "empty",
			in:   `[]`,
			want: Geometry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGeometry([]byte(tt.in))
			if err != nil {
				t.Fatalf("ParseGeometry failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseGeometry_Malformed(t *testing.T) {
	inputs := []string{
		`{}`,
		`[[1]]`,
		`[[1,2,3,4]]`,
		`[[1,2],[1,2,3]]`,
		`[["a",2]]`,
		`"not json"`,
		`[[0,0],[1e15,0]]`,
		`[[0,-1e300]]`,
	}
	for _, in := range inputs {
		if _, err := ParseGeometry([]byte(in)); !errors.Is(err, ErrMalformedGeometry) {
			t.Errorf("ParseGeometry(%s): expected ErrMalformedGeometry, got %v", in, err)
		}
	}
}

func TestGeometry_Groups(t *testing.T) {
	g := Geometry{Grouped: true, Vertices: []Vertex{
		{X: 0, Group: "a"}, {X: 1, Group: "a"},
		{X: 2, Group: "b"},
		{X: 3, Group: "a"}, {X: 4, Group: "a"},
	}}

	groups := g.Groups()
	if len(groups) != 3 {
		t.Fatalf("groups: got %d, want 3", len(groups))
	}
	sizes := []int{groups[0].Len(), groups[1].Len(), groups[2].Len()}
	if diff := cmp.Diff([]int{2, 1, 2}, sizes); diff != "" {
		t.Errorf("group sizes mismatch (-want +got):\n%s", diff)
	}

	plain := Geometry{Vertices: []Vertex{{X: 1}, {X: 2}}}
	if n := len(plain.Groups()); n != 1 {
		t.Errorf("ungrouped geometry: got %d groups, want 1", n)
	}
}

func TestRasterize_ParsedEmptyGeometry(t *testing.T) {
	g, err := ParseGeometry([]byte(`[]`))
	if err != nil {
		t.Fatalf("ParseGeometry failed: %v", err)
	}
	if _, err := Rasterize(g, ImageSpec{Width: 5, Height: 5, Style: Polyline}); !errors.Is(err, ErrEmptyGeometry) {
		t.Errorf("expected ErrEmptyGeometry, got %v", err)
	}
}
