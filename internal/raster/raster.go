// Package raster holds the in-memory pixel grids the analysis pipeline works
// on: an 8-bit RGB image as loaded and its normalized floating counterpart.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"go-cvd-inspector/internal/colorutil"
)

var ErrEmptyImage = errors.New("image has no pixels")

// RGBImage is a row-major grid of 8-bit R,G,B triples.
type RGBImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// FloatImage is a row-major grid of R,G,B triples normalized to [0, 1].
type FloatImage struct {
	Width  int
	Height int
	Pix    []float64
}

// NewRGBImage allocates a black image.
func NewRGBImage(width, height int) *RGBImage {
	return &RGBImage{Width: width, Height: height, Pix: make([]uint8, 3*width*height)}
}

// NewFloatImage allocates a black image.
func NewFloatImage(width, height int) *FloatImage {
	return &FloatImage{Width: width, Height: height, Pix: make([]float64, 3*width*height)}
}

// FromImage copies img into an RGBImage. Alpha is discarded after
// un-premultiplying, so transparent areas keep their stored color.
func FromImage(img image.Image) *RGBImage {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	out := NewRGBImage(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < out.Width; x++ {
			i := 3 * (y*out.Width + x)
			copy(out.Pix[i:i+3], row[4*x:4*x+3])
		}
	}
	return out
}

// Len returns the number of pixels.
func (m *RGBImage) Len() int { return m.Width * m.Height }

// At returns the pixel at (x, y).
func (m *RGBImage) At(x, y int) colorutil.RGB {
	i := 3 * (y*m.Width + x)
	return colorutil.RGB{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
}

// Set writes the pixel at (x, y).
func (m *RGBImage) Set(x, y int, c colorutil.RGB) {
	i := 3 * (y*m.Width + x)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c.R, c.G, c.B
}

// Pixel returns the n-th pixel in row-major order.
func (m *RGBImage) Pixel(n int) colorutil.RGB {
	return colorutil.RGB{R: m.Pix[3*n], G: m.Pix[3*n+1], B: m.Pix[3*n+2]}
}

// ToFloat normalizes every channel to [0, 1].
func (m *RGBImage) ToFloat() *FloatImage {
	out := NewFloatImage(m.Width, m.Height)
	for i, v := range m.Pix {
		out.Pix[i] = float64(v) / 255.0
	}
	return out
}

// ToNRGBA returns an opaque image.NRGBA view of the pixels.
func (m *RGBImage) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for n := 0; n < m.Len(); n++ {
		copy(out.Pix[4*n:4*n+3], m.Pix[3*n:3*n+3])
		out.Pix[4*n+3] = 0xff
	}
	return out
}

// Len returns the number of pixels.
func (f *FloatImage) Len() int { return f.Width * f.Height }

// At returns the pixel at (x, y).
func (f *FloatImage) At(x, y int) colorutil.RGBF {
	i := 3 * (y*f.Width + x)
	return colorutil.RGBF{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2]}
}

// Validate checks that dimensions match the buffer and every value is in [0, 1].
func (f *FloatImage) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return ErrEmptyImage
	}
	if len(f.Pix) != 3*f.Width*f.Height {
		return fmt.Errorf("pixel buffer holds %d values, want %d", len(f.Pix), 3*f.Width*f.Height)
	}
	for i, v := range f.Pix {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("pixel %d: %w", i/3, &colorutil.InvalidColorError{
				Channel: string("RGB"[i%3]),
				Value:   v,
				Max:     1,
			})
		}
	}
	return nil
}

// ToRGB quantizes back to 8-bit, rounding to nearest.
func (f *FloatImage) ToRGB() *RGBImage {
	out := NewRGBImage(f.Width, f.Height)
	for i, v := range f.Pix {
		out.Pix[i] = uint8(math.Round(clamp01(v) * 255.0))
	}
	return out
}

// ToNRGBA renders the image as an opaque image.NRGBA.
func (f *FloatImage) ToNRGBA() *image.NRGBA {
	return f.ToRGB().ToNRGBA()
}

// rgbView adapts an RGBImage to image.Image.
type rgbView struct{ m *RGBImage }

func (v rgbView) ColorModel() color.Model { return color.NRGBAModel }
func (v rgbView) Bounds() image.Rectangle { return image.Rect(0, 0, v.m.Width, v.m.Height) }
func (v rgbView) At(x, y int) color.Color {
	c := v.m.At(x, y)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// AsImage wraps m without copying.
func (m *RGBImage) AsImage() image.Image { return rgbView{m} }

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
