package heatmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
)

// ColorImage maps a layer onto the heat ramp.
//
// Values are normalised to v' = 255*v/max. The channels are
//
//	R = clamp(2v', 0, 255)
//	G = clamp(3v' - 255, 0, 255)
//	B = clamp(3v' - 510, 0, 255)
//	A = 255, or 0 where v == 0
//
// so density runs transparent -> red -> yellow -> white. An all-zero layer
// maps to a fully transparent black image.
func ColorImage(layer *Layer) *image.NRGBA {
	h, w := layer.Height(), layer.Width()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	max := layer.Max()
	if max <= 0 {
		return img
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := layer.At(y, x)
			if v == 0 {
				continue
			}
			img.SetNRGBA(x, y, rampColor(255*v/max))
		}
	}
	return img
}

// rampColor returns the opaque ramp colour for a normalised value in [0, 255].
func rampColor(n float64) color.NRGBA {
	return color.NRGBA{
		R: channel(2 * n),
		G: channel(3*n - 255),
		B: channel(3*n - 510),
		A: 255,
	}
}

// channel clips to [0, 255] and truncates to 8 bits.
func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// EncodePNG colour maps a layer and encodes it as PNG.
func EncodePNG(layer *Layer) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, ColorImage(layer)); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return buf.Bytes(), nil
}
