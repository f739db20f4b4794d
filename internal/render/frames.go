package render

import (
	"github.com/bnomei/nereid-sub000/internal/canvas"
	"github.com/bnomei/nereid-sub000/internal/model"
)

// rect is a frame rectangle, inclusive on all sides.
type rect struct {
	left, right, top, bottom int
}

func (r rect) drawable() bool {
	return r.right > r.left && r.bottom > r.top
}

// startChain counts the frame edges of b's descendants that open on row r:
// block tops and the separators of non-first sections. Each of them pushed
// row r down by one, so an edge of b sits that many rows higher.
func startChain(b *blockPlan, r int) int {
	n := 0
	for _, c := range b.children {
		if c.first == r {
			n++
		}
		for _, sp := range c.sections[1:] {
			if sp.first == r {
				n++
			}
		}
		n += startChain(c, r)
	}
	return n
}

func endChain(b *blockPlan, r int) int {
	n := 0
	for _, c := range b.children {
		if c.last == r {
			n++
		}
		n += endChain(c, r)
	}
	return n
}

// frame returns the rectangle of a block.
func (l *layout) frame(b *blockPlan) rect {
	inset := b.depth * FrameInset
	f := rect{
		left:   inset,
		right:  l.width - 1 - inset,
		top:    l.rows[b.first].y - FrameLabelOffset - startChain(b, b.first),
		bottom: l.rows[b.last].y + 1 + l.selfDrop(b.last) + endChain(b, b.last),
	}
	if b.parent != nil {
		f.top = max(f.top, l.frame(b.parent).top+1)
	}
	return f
}

// separatorY is the row of the line opening a non-first section.
func (l *layout) separatorY(b *blockPlan, sp sectionPlan, outer rect) int {
	y := l.rows[sp.first].y - FrameLabelOffset - startChain(b, sp.first)
	return min(max(y, outer.top+1), outer.bottom-1)
}

// sectionRects splits a block's rectangle at its separators. Adjacent
// sections share the separator row.
func (l *layout) sectionRects(b *blockPlan) []rect {
	outer := l.frame(b)
	rects := make([]rect, len(b.sections))
	for i, sp := range b.sections {
		rects[i] = rect{left: outer.left, right: outer.right, top: outer.top, bottom: outer.bottom}
		if i > 0 {
			rects[i].top = l.separatorY(b, sp, outer)
			rects[i-1].bottom = rects[i].top
		}
	}
	return rects
}

// perimeter converts a rectangle into spans: full top and bottom rows plus
// one cell per side on every row between.
func perimeter(r rect) []model.LineSpan {
	if !r.drawable() {
		return nil
	}
	spans := []model.LineSpan{{Row: r.top, ColStart: r.left, ColEnd: r.right}}
	for y := r.top + 1; y < r.bottom; y++ {
		spans = append(spans,
			model.LineSpan{Row: y, ColStart: r.left, ColEnd: r.left},
			model.LineSpan{Row: y, ColStart: r.right, ColEnd: r.right},
		)
	}
	return append(spans, model.LineSpan{Row: r.bottom, ColStart: r.left, ColEnd: r.right})
}

func drawFrame(layer *canvas.Canvas, r rect) {
	if !r.drawable() {
		return
	}
	_ = layer.SetGuarded(r.left, r.top, glyphTL)
	_ = layer.HLineGuarded(r.top, r.left+1, r.right-1, glyphH)
	_ = layer.SetGuarded(r.right, r.top, glyphTR)
	for y := r.top + 1; y < r.bottom; y++ {
		_ = layer.SetGuarded(r.left, y, glyphV)
		_ = layer.SetGuarded(r.right, y, glyphV)
	}
	_ = layer.SetGuarded(r.left, r.bottom, glyphBL)
	_ = layer.HLineGuarded(r.bottom, r.left+1, r.right-1, glyphH)
	_ = layer.SetGuarded(r.right, r.bottom, glyphBR)
}

func drawSeparator(layer *canvas.Canvas, r rect) {
	if !r.drawable() {
		return
	}
	_ = layer.SetGuarded(r.left, r.top, glyphTeeRight)
	_ = layer.HLineGuarded(r.top, r.left+1, r.right-1, glyphH)
	_ = layer.SetGuarded(r.right, r.top, glyphTeeLeft)
}

// frameLabel places a caption on a frame line, two cells in from the left
// corner and clear of the right one.
func frameLabel(r rect, text string) (canvas.Overlay, bool) {
	text = canvas.Fit(text, r.right-r.left-2)
	if text == "" {
		return canvas.Overlay{}, false
	}
	return canvas.Overlay{X: r.left + 2, Y: r.top, Text: text}, true
}

func blockCaption(b *model.Block) string {
	var kind string
	switch b.Kind {
	case model.BlockAlt, model.BlockOpt, model.BlockLoop, model.BlockPar:
		kind = b.Kind.Label()
	}
	if b.Header == "" {
		return kind
	}
	return kind + " " + b.Header
}

func sectionCaption(s *model.Section) string {
	switch s.Kind {
	case model.SectionMain:
		return ""
	case model.SectionElse, model.SectionAnd:
		if s.Header == "" {
			return s.Kind.Label()
		}
		return s.Kind.Label() + " " + s.Header
	}
	return ""
}

// decorate paints every frame and separator onto a fresh layer and returns
// the captions as overlays for the flattened grid.
func (l *layout) decorate() (*canvas.Canvas, []canvas.Overlay) {
	layer := canvas.New(l.width, l.height)
	var overlays []canvas.Overlay
	for _, b := range l.blocks {
		f := l.frame(b)
		drawFrame(layer, f)
		if o, ok := frameLabel(f, blockCaption(b.block)); ok {
			overlays = append(overlays, o)
		}
		for i, r := range l.sectionRects(b) {
			if i == 0 {
				continue
			}
			drawSeparator(layer, r)
			if o, ok := frameLabel(r, sectionCaption(b.sections[i].section)); ok {
				overlays = append(overlays, o)
			}
		}
	}
	return layer, overlays
}
