package render

import (
	"github.com/bnomei/nereid-sub000/internal/canvas"
	"github.com/bnomei/nereid-sub000/internal/model"
)

// arrow is the straight run of a two-party message. x0..x1 includes the head.
type arrow struct {
	y, x0, x1 int
	headX     int
	head      rune
	line      rune
}

// loop is the geometry of a self-message: an upper arm on y, a lower arm on
// y+SelfMessageLoopDrop, both stub cells long, closed on the right.
type loop struct {
	y, lifeline, stub int
	head              rune
	line              rune
}

func (g loop) right() int  { return g.lifeline + g.stub }
func (g loop) bottom() int { return g.y + SelfMessageLoopDrop }

// label is message text placed on the row above its arrow.
type label struct {
	x, y int
	text string
}

func headGlyph(kind model.MessageKind, dir model.Direction) rune {
	switch kind {
	case model.MessageSync:
		switch dir {
		case model.Right:
			return headSyncRight
		case model.Left:
			return headSyncLeft
		}
	case model.MessageAsync, model.MessageReturn:
		switch dir {
		case model.Right:
			return headHollowRight
		case model.Left:
			return headHollowLeft
		}
	}
	return glyphH
}

func lineGlyph(kind model.MessageKind) rune {
	switch kind {
	case model.MessageSync, model.MessageAsync:
		return glyphH
	case model.MessageReturn:
		return glyphDash
	}
	return glyphH
}

func (l *layout) arrow(r row) (arrow, bool) {
	if r.from < 0 || r.to < 0 || r.from == r.to {
		return arrow{}, false
	}
	from, to := l.cols[r.from].lifeline, l.cols[r.to].lifeline
	dir := l.direction(r)
	a := arrow{y: r.y, head: headGlyph(r.msg.Kind, dir), line: lineGlyph(r.msg.Kind)}
	switch dir {
	case model.Right:
		a.x0, a.x1, a.headX = from+1, to-1, to-1
	case model.Left:
		a.x0, a.x1, a.headX = to+1, from-1, to+1
	}
	return a, a.x1 >= a.x0
}

// selfLimit is the rightmost column a self-message on column c may use: one
// cell short of the neighbor's lifeline, or the canvas edge inside the frame
// margin for the last participant.
func (l *layout) selfLimit(c int) int {
	limit := l.width - 1 - l.margin
	if c+1 < len(l.cols) {
		limit = min(limit, l.cols[c+1].lifeline-2)
	}
	return limit
}

func (l *layout) loop(r row) (loop, bool) {
	if r.from < 0 || r.from != r.to {
		return loop{}, false
	}
	lx := l.cols[r.from].lifeline
	avail := l.selfLimit(r.from) - lx
	if avail <= 0 || r.y+SelfMessageLoopDrop >= l.height {
		return loop{}, false
	}
	stub := max(SelfMessageStubLen, avail*SelfMessageStubNum/SelfMessageStubDen)
	return loop{
		y:        r.y,
		lifeline: lx,
		stub:     min(stub, avail),
		head:     headGlyph(r.msg.Kind, model.Left),
		line:     lineGlyph(r.msg.Kind),
	}, true
}

func (l *layout) label(r row) (label, bool) {
	if r.from < 0 || r.to < 0 {
		return label{}, false
	}
	text := l.labelText(r)
	if text == "" {
		return label{}, false
	}
	if r.from == r.to {
		lx := l.cols[r.from].lifeline
		text = canvas.Fit(text, l.selfLimit(r.from)-lx)
		if text == "" {
			return label{}, false
		}
		return label{x: lx + 1, y: r.y - 1, text: text}, true
	}
	lo := min(l.cols[r.from].lifeline, l.cols[r.to].lifeline)
	hi := max(l.cols[r.from].lifeline, l.cols[r.to].lifeline)
	avail := hi - lo - 3
	text = canvas.Fit(text, avail)
	if text == "" {
		return label{}, false
	}
	return label{x: lo + 2 + (avail-canvas.StringWidth(text))/2, y: r.y - 1, text: text}, true
}

// inkRuns returns the spans of s written at (x, y) that hold non-blank cells.
func inkRuns(x, y int, s string) []model.LineSpan {
	var spans []model.LineSpan
	start := -1
	for _, r := range s {
		w := canvas.StringWidth(string(r))
		if w == 0 {
			continue
		}
		if r == canvas.Blank {
			if start >= 0 {
				spans = append(spans, model.LineSpan{Row: y, ColStart: start, ColEnd: x - 1})
				start = -1
			}
		} else if start < 0 {
			start = x
		}
		x += w
	}
	if start >= 0 {
		spans = append(spans, model.LineSpan{Row: y, ColStart: start, ColEnd: x - 1})
	}
	return spans
}

// nameX is where a participant's name starts inside its box.
func (c column) nameX() int {
	return c.x + 1 + (c.inner-canvas.StringWidth(c.name))/2
}

func drawBox(base *canvas.Canvas, c column) {
	right := c.x + c.width - 1
	_ = base.Set(c.x, 0, glyphTL)
	_ = base.HLine(0, c.x+1, right-1, glyphH)
	_ = base.Set(right, 0, glyphTR)

	_ = base.Set(c.x, 1, glyphV)
	_, _ = base.WriteString(c.nameX(), 1, c.name)
	_ = base.Set(right, 1, glyphV)

	_ = base.Set(c.x, 2, glyphBL)
	_ = base.HLine(2, c.x+1, right-1, glyphH)
	_ = base.Set(c.lifeline, 2, glyphTeeDown)
	_ = base.Set(right, 2, glyphBR)
}

func drawArrow(base *canvas.Canvas, a arrow) {
	_ = base.HLine(a.y, a.x0, a.x1, a.line)
	_ = base.Set(a.headX, a.y, a.head)
}

func drawLoop(base *canvas.Canvas, g loop) {
	lo := g.bottom()
	if g.right()-1 >= g.lifeline+1 {
		_ = base.HLine(g.y, g.lifeline+1, g.right()-1, g.line)
	}
	_ = base.Set(g.right(), g.y, glyphTR)
	for y := g.y + 1; y < lo; y++ {
		_ = base.Set(g.right(), y, glyphV)
	}
	if g.right()-1 >= g.lifeline+2 {
		_ = base.HLine(lo, g.lifeline+2, g.right()-1, g.line)
	}
	_ = base.Set(g.right(), lo, glyphBR)
	_ = base.Set(g.lifeline+1, lo, g.head)
}

// paint draws the complete diagram except frame captions, which are
// returned as overlays.
func (l *layout) paint() (*canvas.Canvas, []canvas.Overlay) {
	base := canvas.New(l.width, l.height)
	for _, c := range l.cols {
		drawBox(base, c)
		_ = base.VLine(c.lifeline, BoxHeight, l.height-1, glyphV)
	}
	for _, r := range l.rows {
		if a, ok := l.arrow(r); ok {
			drawArrow(base, a)
		}
		if g, ok := l.loop(r); ok {
			drawLoop(base, g)
		}
		if lb, ok := l.label(r); ok {
			_, _ = base.WriteString(lb.x, lb.y, lb.text)
		}
	}
	layer, overlays := l.decorate()
	base.Blend(layer)
	return base, overlays
}
