package heatmap

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// LegendStop is one sample of the heat ramp.
type LegendStop struct {
	// Fraction of the maximum density, 0 to 1.
	Value float64 `json:"value"`
	Hex   string  `json:"hex"`
	Alpha uint8   `json:"alpha"`
}

// Legend samples the heat ramp at n evenly spaced fractions from 0 to 1.
// The first stop is the transparent zero colour. n below 2 is raised to 2.
func Legend(n int) []LegendStop {
	if n < 2 {
		n = 2
	}
	stops := make([]LegendStop, n)
	for i := range stops {
		frac := float64(i) / float64(n-1)
		c := rampColor(255 * frac)
		if frac == 0 {
			c.A = 0
		}
		cf := colorful.Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
		}
		stops[i] = LegendStop{Value: frac, Hex: cf.Hex(), Alpha: c.A}
	}
	return stops
}
