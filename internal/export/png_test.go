package export

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/render"
)

func hello(t *testing.T) render.Result {
	t.Helper()
	seq := &model.Sequence{
		DiagramID:    "png",
		Participants: []model.Participant{{ID: "A"}, {ID: "B"}},
		Messages:     []model.Message{{ID: "m1", From: "A", To: "B", Text: "Hi", Order: 1}},
	}
	res, err := render.Sequence(seq, model.RenderOptions{})
	require.NoError(t, err)
	require.Equal(t, 16, res.Width)
	require.Equal(t, 7, res.Height)
	return res
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestImageSize(t *testing.T) {
	img, err := Image(hello(t), DefaultOptions())
	require.NoError(t, err)

	// (16+2)*8 by (7+2)*16
	assert.Equal(t, 144, img.Bounds().Dx())
	assert.Equal(t, 144, img.Bounds().Dy())
}

func TestImageDrawsInk(t *testing.T) {
	img, err := Image(hello(t), DefaultOptions())
	require.NoError(t, err)

	ink := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !ink; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isWhite(img.At(x, y)) {
				ink = true
				break
			}
		}
	}
	assert.True(t, ink, "expected some non-white pixels")
	assert.True(t, isWhite(img.At(0, 0)), "padding stays white")
}

func TestHighlightFillsCells(t *testing.T) {
	res := hello(t)
	// Row 0, column 7 is the blank gap between the two header boxes.
	cx, cy := (7+1)*8+4, (0+1)*16+8

	plain, err := Image(res, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, isWhite(plain.At(cx, cy)))

	opts := DefaultOptions()
	opts.Highlight = []model.LineSpan{{Row: 0, ColStart: 7, ColEnd: 7}}
	lit, err := Image(res, opts)
	require.NoError(t, err)
	assert.False(t, isWhite(lit.At(cx, cy)))
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, hello(t), DefaultOptions()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 144, img.Bounds().Dx())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, WriteFile(path, hello(t), DefaultOptions()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestEmptyDiagram(t *testing.T) {
	res, err := render.Sequence(&model.Sequence{}, model.RenderOptions{})
	require.NoError(t, err)

	_, err = Image(res, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmpty)
	assert.ErrorIs(t, WriteFile(filepath.Join(t.TempDir(), "x.png"), res, DefaultOptions()), ErrEmpty)
}
