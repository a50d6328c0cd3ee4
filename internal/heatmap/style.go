package heatmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// PickStyle is the kind of geometry users draw on an image.
type PickStyle string

const (
	// Points marks each vertex on its own.
	Points PickStyle = "points"
	// Polyline connects consecutive vertices with straight segments.
	Polyline PickStyle = "polyline"
	// Polygon is a polyline closed back to its first vertex.
	Polygon PickStyle = "polygon"
)

// ParsePickStyle maps the names used by the service to a PickStyle.
//
// Accepted spellings (case-insensitive):
//   - "point", "points"
//   - "line", "lines", "polyline", "polylines"
//   - "polygon", "polygons"
func ParsePickStyle(s string) (PickStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point", "points":
		return Points, nil
	case "line", "lines", "polyline", "polylines":
		return Polyline, nil
	case "polygon", "polygons":
		return Polygon, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPickStyle, s)
	}
}

// UnmarshalJSON accepts any spelling understood by ParsePickStyle.
func (p *PickStyle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	style, err := ParsePickStyle(s)
	if err != nil {
		return err
	}
	*p = style
	return nil
}

// ImageSpec describes the image a pick was drawn on.
type ImageSpec struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Style  PickStyle `json:"pickstyle"`
}

// Validate rejects non-positive dimensions.
func (s ImageSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, s.Width, s.Height)
	}
	return nil
}

// Radius returns the dilation disk radius for an image.
//
// The radius is ceil(((width+height)/2) / D), with D = 150 for point picks and
// D = 300 otherwise, and is never below 1.
func Radius(s ImageSpec) int {
	d := 300.0
	if s.Style == Points {
		d = 150.0
	}
	avg := float64(s.Width+s.Height) / 2
	r := int(math.Ceil(avg / d))
	if r < 1 {
		return 1
	}
	return r
}
