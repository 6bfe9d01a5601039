package simulate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/internal/workerpool"
)

func gradient(w, h int) *raster.FloatImage {
	img := raster.NewRGBImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, colorutil.RGB{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 255 / max(w+h-2, 1)),
			})
		}
	}
	return img.ToFloat()
}

func solid(c colorutil.RGB) *raster.FloatImage {
	img := raster.NewRGBImage(1, 1)
	img.Set(0, 0, c)
	return img.ToFloat()
}

func TestSimulate_PreservesDimensionsAndRange(t *testing.T) {
	pool := workerpool.NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	img := gradient(17, 9)
	for _, sim := range []Simulator{NewMachado2009(pool), NewVienot1999(nil)} {
		for _, d := range AllDeficiencies() {
			out, err := sim.Simulate(img, d, 1.0)
			require.NoError(t, err, "%s/%s", sim.Name(), d)
			assert.Equal(t, img.Width, out.Width)
			assert.Equal(t, img.Height, out.Height)
			require.Len(t, out.Pix, len(img.Pix))
			for i, v := range out.Pix {
				if v < 0 || v > 1 {
					t.Fatalf("%s/%s: value %d = %v outside [0,1]", sim.Name(), d, i, v)
				}
			}
		}
	}
}

func TestSimulate_ZeroSeverityIsIdentity(t *testing.T) {
	img := gradient(8, 8)
	out, err := NewMachado2009(nil).Simulate(img, Protanomaly, 0)
	require.NoError(t, err)
	for i := range img.Pix {
		assert.InDelta(t, img.Pix[i], out.Pix[i], 1e-9)
	}
}

func TestSimulate_GraysStayGray(t *testing.T) {
	// every model row sums to ~1, so neutral colors are preserved
	for _, d := range AllDeficiencies() {
		for _, v := range []uint8{0, 64, 128, 255} {
			out, err := NewMachado2009(nil).Simulate(solid(colorutil.RGB{R: v, G: v, B: v}), d, 1)
			require.NoError(t, err)
			want := float64(v) / 255
			for c := 0; c < 3; c++ {
				assert.InDelta(t, want, out.Pix[c], 2e-3, "%s gray %d", d, v)
			}
		}
	}
}

func TestSimulate_RedGreenConverge(t *testing.T) {
	red, green := solid(colorutil.RGB{R: 255}), solid(colorutil.RGB{G: 255})
	for _, d := range []Deficiency{Deuteranomaly, Protanomaly} {
		r, err := NewVienot1999(nil).Simulate(red, d, 1)
		require.NoError(t, err)
		g, err := NewVienot1999(nil).Simulate(green, d, 1)
		require.NoError(t, err)
		// dichromat projections collapse R and G onto the same value
		assert.InDelta(t, r.Pix[0], r.Pix[1], 1e-9)
		assert.InDelta(t, g.Pix[0], g.Pix[1], 1e-9)
	}
}

func TestSimulate_Errors(t *testing.T) {
	sim := NewMachado2009(nil)
	img := gradient(2, 2)

	_, err := sim.Simulate(img, Deficiency(9), 1)
	assert.True(t, errors.Is(err, ErrUnknownDeficiency))

	for _, s := range []float64{-0.1, 1.5, math.NaN()} {
		_, err = sim.Simulate(img, Tritanomaly, s)
		assert.True(t, errors.Is(err, ErrInvalidSeverity))
	}

	bad := gradient(2, 2)
	bad.Pix[0] = 2
	_, err = sim.Simulate(bad, Tritanomaly, 1)
	assert.True(t, errors.Is(err, colorutil.ErrInvalidColor))
}

func TestMatrix_BlendsWithIdentity(t *testing.T) {
	sim := NewMachado2009(nil).(*matrixSimulator)
	half, err := sim.Matrix(Deuteranomaly, 0.5)
	require.NoError(t, err)
	full := machado2009[Deuteranomaly]
	for i := 0; i < 9; i++ {
		id := 0.0
		if i%4 == 0 {
			id = 1
		}
		assert.InDelta(t, (id+full[i])/2, half[i], 1e-12)
	}
}

func TestStrips(t *testing.T) {
	cases := []struct {
		height, workers int
		want            [][2]int
	}{
		{10, 3, [][2]int{{0, 4}, {4, 8}, {8, 10}}},
		{2, 8, [][2]int{{0, 1}, {1, 2}}},
		{5, 1, [][2]int{{0, 5}}},
		{0, 4, nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, strips(tc.height, tc.workers))
	}
}

func TestParseDeficiency(t *testing.T) {
	cases := []struct {
		in      string
		want    Deficiency
		wantErr bool
	}{
		{"deuteranomaly", Deuteranomaly, false},
		{"Protanopia", Protanomaly, false},
		{" tritan ", Tritanomaly, false},
		{"achromatopsia", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseDeficiency(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnknownDeficiency)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		text, err := got.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, got.String(), string(text))
	}
}

func TestNew(t *testing.T) {
	for _, name := range append(Models(), "") {
		sim, err := New(name, nil)
		require.NoError(t, err)
		if name == "" {
			name = ModelMachado2009
		}
		assert.Equal(t, name, sim.Name())
	}
	_, err := New("brettel1997", nil)
	assert.Error(t, err)
}
