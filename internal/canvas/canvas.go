// Package canvas provides the fixed-size character grid the renderer draws on.
//
// Cells live in one flat buffer addressed by (x, y). Accessors never panic:
// off-canvas coordinates return ErrOutOfBounds so callers can degrade.
package canvas

import (
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Blank is the fill rune of a fresh canvas.
const Blank = ' '

// tail marks the second cell of a double-width rune.
const tail rune = 0

// ErrOutOfBounds is returned when a coordinate lies outside the canvas.
var ErrOutOfBounds = errors.New("canvas: out of bounds")

// cond fixes width rules so output does not depend on the caller's locale.
var cond = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// Canvas is a width x height grid of display cells.
type Canvas struct {
	width, height int
	cells         []rune
}

// New allocates a blank canvas. Negative sizes are treated as zero.
func New(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	c := &Canvas{width: width, height: height, cells: make([]rune, width*height)}
	for i := range c.cells {
		c.cells[i] = Blank
	}
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// In reports whether (x, y) is on the canvas.
func (c *Canvas) In(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// At returns the rune stored at (x, y). The trailing cell of a wide rune
// reads as the wide rune itself.
func (c *Canvas) At(x, y int) (rune, error) {
	if !c.In(x, y) {
		return Blank, ErrOutOfBounds
	}
	r := c.cells[y*c.width+x]
	if r == tail && x > 0 {
		return c.cells[y*c.width+x-1], nil
	}
	return r, nil
}

// IsBlank reports whether (x, y) holds Blank. Off-canvas cells are not blank.
func (c *Canvas) IsBlank(x, y int) bool {
	if !c.In(x, y) {
		return false
	}
	return c.cells[y*c.width+x] == Blank
}

// Set writes r at (x, y). A double-width rune also claims x+1 and fails
// without writing when that cell is off-canvas. Zero-width runes are dropped.
func (c *Canvas) Set(x, y int, r rune) error {
	if !c.In(x, y) {
		return ErrOutOfBounds
	}
	switch cond.RuneWidth(r) {
	case 0:
		return nil
	case 2:
		if !c.In(x+1, y) {
			return ErrOutOfBounds
		}
		c.split(x, y)
		c.split(x+1, y)
		c.cells[y*c.width+x] = r
		c.cells[y*c.width+x+1] = tail
	default:
		c.split(x, y)
		c.cells[y*c.width+x] = r
	}
	return nil
}

// split blanks the other half of a wide rune about to be overwritten at (x, y).
func (c *Canvas) split(x, y int) {
	i := y*c.width + x
	if c.cells[i] == tail && x > 0 {
		c.cells[i-1] = Blank
		c.cells[i] = Blank
		return
	}
	if x+1 < c.width && c.cells[i+1] == tail {
		c.cells[i+1] = Blank
	}
}

// SetGuarded writes r only when the cell is blank or already holds a
// box-drawing glyph. Frames drawn this way can cross each other but never
// erase text or arrowheads.
func (c *Canvas) SetGuarded(x, y int, r rune) error {
	cur, err := c.At(x, y)
	if err != nil {
		return err
	}
	if cur != Blank && !IsBoxGlyph(cur) {
		return nil
	}
	return c.Set(x, y, r)
}

// HLine writes r on row y from x0 to x1 inclusive. Cells off the canvas are
// skipped and reported with ErrOutOfBounds after the rest is drawn.
func (c *Canvas) HLine(y, x0, x1 int, r rune) error {
	return c.hline(y, x0, x1, r, c.Set)
}

// HLineGuarded is HLine through SetGuarded.
func (c *Canvas) HLineGuarded(y, x0, x1 int, r rune) error {
	return c.hline(y, x0, x1, r, c.SetGuarded)
}

func (c *Canvas) hline(y, x0, x1 int, r rune, set func(x, y int, r rune) error) error {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	var first error
	for x := x0; x <= x1; x++ {
		if err := set(x, y, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// VLine writes r in column x from y0 to y1 inclusive.
func (c *Canvas) VLine(x, y0, y1 int, r rune) error {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	var first error
	for y := y0; y <= y1; y++ {
		if err := c.Set(x, y, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteString writes s starting at (x, y) and returns the number of cells
// it advanced. Writing stops at the first rune that does not fit.
func (c *Canvas) WriteString(x, y int, s string) (int, error) {
	n := 0
	for _, r := range s {
		w := cond.RuneWidth(r)
		if w == 0 {
			continue
		}
		if err := c.Set(x+n, y, r); err != nil {
			return n, err
		}
		n += w
	}
	return n, nil
}

// Blend copies every non-blank cell of layer into the cells of c that are
// still blank. Only the overlapping region is considered.
func (c *Canvas) Blend(layer *Canvas) {
	w, h := min(c.width, layer.width), min(c.height, layer.height)
	for y := range h {
		for x := range w {
			src := layer.cells[y*layer.width+x]
			if src == Blank || src == tail {
				continue
			}
			if c.cells[y*c.width+x] != Blank {
				continue
			}
			if cond.RuneWidth(src) == 2 && !c.IsBlank(x+1, y) {
				continue
			}
			_ = c.Set(x, y, src)
		}
	}
}

// Rows returns a copy of the grid, one slice per row.
func (c *Canvas) Rows() [][]rune {
	rows := make([][]rune, c.height)
	for y := range rows {
		rows[y] = make([]rune, c.width)
		copy(rows[y], c.cells[y*c.width:(y+1)*c.width])
	}
	return rows
}

// String serializes the canvas with trailing blanks trimmed from every line.
func (c *Canvas) String() string {
	return Join(c.Rows())
}

// Overlay is a text label placed over the flattened grid after all line
// art is final.
type Overlay struct {
	X, Y int
	Text string
}

// ApplyOverlays writes each overlay into rows, clipping at the row end.
// A wide rune that would straddle the end is dropped.
func ApplyOverlays(rows [][]rune, overlays []Overlay) {
	for _, o := range overlays {
		if o.Y < 0 || o.Y >= len(rows) {
			continue
		}
		row := rows[o.Y]
		x := o.X
		for _, r := range o.Text {
			w := cond.RuneWidth(r)
			if w == 0 {
				continue
			}
			if x < 0 || x+w > len(row) {
				break
			}
			row[x] = r
			if w == 2 {
				row[x+1] = tail
			}
			x += w
		}
	}
}

// Join turns rows into text: trailing blanks trimmed, lines joined by "\n".
func Join(rows [][]rune) string {
	var sb strings.Builder
	for y, row := range rows {
		var line strings.Builder
		for _, r := range row {
			if r == tail {
				continue
			}
			line.WriteRune(r)
		}
		sb.WriteString(strings.TrimRight(line.String(), string(Blank)))
		if y < len(rows)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// IsBoxGlyph reports whether r is in the Unicode box-drawing block.
func IsBoxGlyph(r rune) bool {
	return r >= 0x2500 && r <= 0x257F
}

// StringWidth is the number of cells s occupies.
func StringWidth(s string) int {
	return cond.StringWidth(s)
}

// Fit truncates s to at most w cells, ending with an ellipsis when cut.
func Fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if cond.StringWidth(s) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return cond.Truncate(s, w, "…")
}
