package heatmap

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Composite sums layers elementwise into a fresh accumulator.
//
// Parameters:
//   - height, width: Size of the accumulator. Every layer must match it.
//   - layers: The layers to add. None of them is modified.
//
// Returns:
//   - *Layer: A height x width layer holding the elementwise sum. With no
//     layers it is all zeros.
//   - error: Non-nil if the accumulator cannot be built or a layer has a
//     different shape.
//
// # Errors
//
//   - ErrInvalidDimensions if height or width is not positive
//   - ErrSizeMismatch if any layer is not height x width; the error names
//     the index of the first offending layer
func Composite(height, width int, layers ...*Layer) (*Layer, error) {
	acc, err := NewLayer(height, width)
	if err != nil {
		return nil, err
	}
	for i, l := range layers {
		if !acc.sameShape(l) {
			return nil, fmt.Errorf("%w: layer %d is %dx%d, want %dx%d",
				ErrSizeMismatch, i, l.Width(), l.Height(), width, height)
		}
		acc.m.Add(acc.m, l.m)
	}
	return acc, nil
}

// LayerFromImage reads the first (red) channel of a greyscale or colour
// mapped image as 8-bit values.
func LayerFromImage(img image.Image) (*Layer, error) {
	bounds := img.Bounds()
	layer, err := NewLayer(bounds.Dy(), bounds.Dx())
	if err != nil {
		return nil, err
	}
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, _, _, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			layer.Set(y, x, float64(r>>8))
		}
	}
	return layer, nil
}

// DecodeLayer decodes an encoded image (typically a cached PNG) into a layer.
func DecodeLayer(data []byte) (*Layer, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode layer image: %w", err)
	}
	return LayerFromImage(img)
}

// CompositePNG decodes each encoded layer, sums them and returns the colour
// mapped composite as PNG. With no layers it returns a blank transparent
// image of the given size.
func CompositePNG(height, width int, encoded ...[]byte) ([]byte, error) {
	layers := make([]*Layer, 0, len(encoded))
	for i, data := range encoded {
		l, err := DecodeLayer(data)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, l)
	}
	acc, err := Composite(height, width, layers...)
	if err != nil {
		return nil, err
	}
	return EncodePNG(acc)
}
