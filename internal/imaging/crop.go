package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// RegionNames lists the named regions accepted by NamedRegion.
var RegionNames = []string{
	"full",
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half",
	"center",
}

// NamedRegion resolves a region name to a rectangle inside bounds.
// An empty name or "full" selects the whole image.
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := w/2, h/2

	var x1, y1, x2, y2 int
	switch name {
	case "", "full":
		x1, y1, x2, y2 = 0, 0, w, h
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		qW, qH := w/4, h/4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}

	r := image.Rect(x1, y1, x2, y2).Add(bounds.Min)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %s of a %dx%d image is empty", name, w, h)
	}
	return r, nil
}

// Crop cuts a region out of a rendered heatmap or overlay so a client can
// zoom in on where picks concentrate.
func Crop(img image.Image, region string) (*image.NRGBA, error) {
	r, err := NamedRegion(img.Bounds(), region)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, r), nil
}

// RegionResult decodes PNG bytes, crops them to region and encodes the result
// with the requested scale. The whole image skips the decode and crop.
func RegionResult(data []byte, region string, scale float64) (*ImageResult, error) {
	if region == "" || region == "full" {
		return PNGResult(data, scale)
	}
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	cropped, err := Crop(img, region)
	if err != nil {
		return nil, err
	}
	return NewImageResult(cropped, scale)
}
