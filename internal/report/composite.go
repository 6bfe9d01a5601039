package report

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/kovidgoyal/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go-cvd-inspector/internal/simulate"
	"go-cvd-inspector/pkg/models"
)

// DefaultPanelWidth is the width of each of the four panels
const DefaultPanelWidth = 480

const (
	padding     = 10
	titleHeight = 20
)

var ErrMissingSimulation = errors.New("result has no simulation for every deficiency")

// panel order: original top-left, then deuteranomaly, protanomaly, tritanomaly
var panelOrder = []simulate.Deficiency{simulate.Deuteranomaly, simulate.Protanomaly, simulate.Tritanomaly}

// Composite lays out the original and the three simulations in a titled
// 2x2 grid. Panels are resized to panelWidth keeping the aspect ratio.
func Composite(result *models.AnalysisResult, panelWidth int) (*image.NRGBA, error) {
	if result.Original == nil || result.Original.Len() == 0 {
		return nil, errors.New("result has no original image")
	}
	if panelWidth <= 0 {
		panelWidth = DefaultPanelWidth
	}

	panels := []image.Image{result.Original.ToNRGBA()}
	titles := []string{"Original"}
	for _, d := range panelOrder {
		sim, ok := result.Simulations[d]
		if !ok || sim == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrMissingSimulation, d)
		}
		panels = append(panels, sim.ToNRGBA())
		titles = append(titles, d.Title())
	}

	panelHeight := max(1, result.Original.Height*panelWidth/result.Original.Width)
	cellW := panelWidth + 2*padding
	cellH := panelHeight + titleHeight + 2*padding

	canvas := image.NewNRGBA(image.Rect(0, 0, 2*cellW, 2*cellH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, p := range panels {
		x0 := (i % 2) * cellW
		y0 := (i / 2) * cellH

		drawTitle(canvas, titles[i], x0+cellW/2, y0+padding+13)

		resized := imaging.Resize(p, panelWidth, panelHeight, imaging.Lanczos)
		at := image.Pt(x0+padding, y0+padding+titleHeight)
		draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(resized.Bounds().Size())}, resized, resized.Bounds().Min, draw.Src)
	}
	return canvas, nil
}

// drawTitle centers s horizontally on cx with its baseline at y
func drawTitle(dst draw.Image, s string, cx, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(s).Ceil()
	d.Dot = fixed.P(cx-width/2, y)
	d.DrawString(s)
}

// WritePNG encodes img as PNG
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SaveComposite renders the grid and writes it to path
func SaveComposite(path string, result *models.AnalysisResult, panelWidth int) error {
	img, err := Composite(result, panelWidth)
	if err != nil {
		return err
	}
	return savePNG(path, img)
}

// SaveImage writes img to path as PNG
func SaveImage(path string, img image.Image) error {
	return savePNG(path, img)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
