package colorutil

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidColor is returned when a channel value falls outside its range.
var ErrInvalidColor = errors.New("invalid color")

// InvalidColorError names the offending channel and value.
type InvalidColorError struct {
	Channel string
	Value   float64
	Max     float64
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid color: channel %s = %v outside [0, %v]", e.Channel, e.Value, e.Max)
}

func (e *InvalidColorError) Unwrap() error {
	return ErrInvalidColor
}

// RGB is an 8-bit sRGB color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBF is an sRGB color with channels normalized to [0, 1].
type RGBF struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// NewRGB builds an 8-bit color, rejecting channels outside 0-255.
func NewRGB(r, g, b int) (RGB, error) {
	for _, ch := range []struct {
		name string
		v    int
	}{{"R", r}, {"G", g}, {"B", b}} {
		if ch.v < 0 || ch.v > 255 {
			return RGB{}, &InvalidColorError{Channel: ch.name, Value: float64(ch.v), Max: 255}
		}
	}
	return RGB{uint8(r), uint8(g), uint8(b)}, nil
}

// ToRGBF normalizes the color to [0, 1].
func (c RGB) ToRGBF() RGBF {
	return RGBF{float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0}
}

// String renders the color the way palette reports print it: [R G B].
func (c RGB) String() string {
	return fmt.Sprintf("[%d %d %d]", c.R, c.G, c.B)
}

// Validate reports whether every channel is a finite value in [0, 1].
func (c RGBF) Validate() error {
	for _, ch := range []struct {
		name string
		v    float64
	}{{"R", c.R}, {"G", c.G}, {"B", c.B}} {
		if math.IsNaN(ch.v) || ch.v < 0 || ch.v > 1 {
			return &InvalidColorError{Channel: ch.name, Value: ch.v, Max: 1}
		}
	}
	return nil
}

// ToRGB converts to 8-bit, rounding to the nearest integer.
func (c RGBF) ToRGB() (RGB, error) {
	if err := c.Validate(); err != nil {
		return RGB{}, err
	}
	return RGB{to8(c.R), to8(c.G), to8(c.B)}, nil
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255.0))
}
