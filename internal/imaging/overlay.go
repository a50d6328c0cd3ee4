package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// ImageResult is an image returned to a client as base64 PNG.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// NewImageResult encodes img as PNG, resizing it first when scale is
// positive and not 1.
func NewImageResult(img image.Image, scale float64) (*ImageResult, error) {
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// PNGResult wraps already encoded PNG bytes, decoding them only when a
// rescale is requested.
func PNGResult(data []byte, scale float64) (*ImageResult, error) {
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	if scale == 1.0 || scale <= 0 {
		return &ImageResult{
			Width:       img.Bounds().Dx(),
			Height:      img.Bounds().Dy(),
			ImageBase64: base64.StdEncoding.EncodeToString(data),
			MimeType:    "image/png",
		}, nil
	}
	return NewImageResult(img, scale)
}

func decodePNG(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	return img, nil
}

// Overlay draws a heatmap over its base image.
//
// The heatmap is stretched to the base bounds with nearest-neighbour sampling
// when the sizes differ, so picks stay aligned with the picture. opacity is
// clamped to [0, 1]; transparent heatmap pixels leave the base untouched.
func Overlay(base, heat image.Image, opacity float64) *image.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	b := base.Bounds()
	if heat.Bounds().Dx() != b.Dx() || heat.Bounds().Dy() != b.Dy() {
		heat = imaging.Resize(heat, b.Dx(), b.Dy(), imaging.NearestNeighbor)
	}
	return imaging.Overlay(base, heat, image.Point{}, opacity)
}
