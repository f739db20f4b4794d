package render

import "github.com/bnomei/nereid-sub000/internal/model"

// index records the cells of every object from the same geometry paint
// draws with. Order: participants, messages by row, then blocks in pre-order,
// each followed by its sections.
func (l *layout) index() *model.HighlightIndex {
	idx := model.NewHighlightIndex()
	for _, c := range l.cols {
		if spans := inkRuns(c.nameX(), 1, c.name); len(spans) > 0 {
			idx.Add(l.seq.ParticipantRef(c.id), spans...)
		}
	}
	for _, r := range l.rows {
		if spans := l.messageSpans(r); len(spans) > 0 {
			idx.Add(l.seq.MessageRef(r.msg.ID), spans...)
		}
	}
	for _, b := range l.blocks {
		if spans := perimeter(l.frame(b)); len(spans) > 0 {
			idx.Add(l.seq.BlockRef(b.block.ID), spans...)
		}
		for i, rc := range l.sectionRects(b) {
			if spans := perimeter(rc); len(spans) > 0 {
				idx.Add(l.seq.SectionRef(b.sections[i].section.ID), spans...)
			}
		}
	}
	return idx
}

func (l *layout) messageSpans(r row) []model.LineSpan {
	var spans []model.LineSpan
	if lb, ok := l.label(r); ok {
		spans = append(spans, inkRuns(lb.x, lb.y, lb.text)...)
	}
	if a, ok := l.arrow(r); ok {
		spans = append(spans, model.LineSpan{Row: a.y, ColStart: a.x0, ColEnd: a.x1})
	}
	if g, ok := l.loop(r); ok {
		spans = append(spans, model.LineSpan{Row: g.y, ColStart: g.lifeline + 1, ColEnd: g.right()})
		for y := g.y + 1; y < g.bottom(); y++ {
			spans = append(spans, model.LineSpan{Row: y, ColStart: g.right(), ColEnd: g.right()})
		}
		spans = append(spans, model.LineSpan{Row: g.bottom(), ColStart: g.lifeline + 1, ColEnd: g.right()})
	}
	return spans
}
