package colorutil

import "math"

// Minimum contrast recommended for non-text graphical elements.
const DefaultContrastThreshold = 3.0

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearChannel linearizes one 8-bit sRGB channel value.
func LinearChannel(v uint8) float64 {
	return srgbToLinear(float64(v) / 255.0)
}

// Luminance returns the WCAG relative luminance of c, in [0, 1].
func Luminance(c RGB) float64 {
	return relativeLuminance(c.ToRGBF())
}

// LuminanceF is Luminance for normalized colors; out-of-range input is rejected.
func LuminanceF(c RGBF) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return relativeLuminance(c), nil
}

func relativeLuminance(c RGBF) float64 {
	r := srgbToLinear(c.R)
	g := srgbToLinear(c.G)
	b := srgbToLinear(c.B)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// RatioFromLuminance combines two relative luminances into a contrast ratio.
func RatioFromLuminance(l1, l2 float64) float64 {
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// ContrastRatio is symmetric and ranges from 1 (identical) to 21 (black on white).
func ContrastRatio(a, b RGB) float64 {
	return RatioFromLuminance(Luminance(a), Luminance(b))
}
