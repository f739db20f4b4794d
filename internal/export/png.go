// Package export rasterizes a rendered diagram into a PNG image, one
// monospace cell per canvas column.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/bnomei/nereid-sub000/internal/canvas"
	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/render"
)

// ErrEmpty is returned when the diagram has no cells to draw.
var ErrEmpty = errors.New("export: nothing to export")

type Options struct {
	CellWidth  float64
	CellHeight float64
	FontSize   float64
	Padding    int // in cells, on every side

	// Highlight spans are filled with HighlightColor beneath the text.
	Highlight      []model.LineSpan
	HighlightColor color.Color
}

func DefaultOptions() Options {
	return Options{
		CellWidth:      8,
		CellHeight:     16,
		FontSize:       12,
		Padding:        1,
		HighlightColor: color.NRGBA{R: 255, G: 95, B: 175, A: 96},
	}
}

// Size reports the pixel dimensions Image will produce for res.
func Size(res render.Result, opts Options) (int, int) {
	w := float64(res.Width+2*opts.Padding) * opts.CellWidth
	h := float64(res.Height+2*opts.Padding) * opts.CellHeight
	return int(w), int(h)
}

func newFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func draw(res render.Result, opts Options) (*gg.Context, error) {
	if res.Width == 0 || res.Height == 0 {
		return nil, ErrEmpty
	}
	face, err := newFace(opts.FontSize)
	if err != nil {
		return nil, err
	}

	w, h := Size(res, opts)
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	pad := float64(opts.Padding)
	cellX := func(col int) float64 { return (float64(col) + pad) * opts.CellWidth }
	cellY := func(row int) float64 { return (float64(row) + pad) * opts.CellHeight }

	if len(opts.Highlight) > 0 && opts.HighlightColor != nil {
		dc.SetColor(opts.HighlightColor)
		for _, s := range opts.Highlight {
			dc.DrawRectangle(cellX(s.ColStart), cellY(s.Row), float64(s.Len())*opts.CellWidth, opts.CellHeight)
		}
		dc.Fill()
	}

	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	// Baseline sits a quarter cell above the bottom edge so descenders fit.
	baseline := opts.CellHeight * 0.75
	for y, line := range res.Lines() {
		col := 0
		for _, r := range line {
			if r != ' ' {
				dc.DrawString(string(r), cellX(col), cellY(y)+baseline)
			}
			col += canvas.StringWidth(string(r))
		}
	}
	return dc, nil
}

// Image rasterizes res.
func Image(res render.Result, opts Options) (image.Image, error) {
	dc, err := draw(res, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// Encode writes res as PNG to w.
func Encode(w io.Writer, res render.Result, opts Options) error {
	dc, err := draw(res, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// WriteFile writes res as PNG to path.
func WriteFile(path string, res render.Result, opts Options) error {
	dc, err := draw(res, opts)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
