package render

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bnomei/nereid-sub000/internal/canvas"
	"github.com/bnomei/nereid-sub000/internal/model"
)

// column is one participant's box and lifeline.
type column struct {
	id       string
	name     string
	x        int // left edge of the box
	inner    int
	width    int
	lifeline int
}

// row is one message in time order. from and to are column indexes, -1 when
// the participant is unknown.
type row struct {
	msg      model.Message
	from, to int
	y        int
}

type sectionPlan struct {
	section     *model.Section
	first, last int
}

type blockPlan struct {
	block       *model.Block
	parent      *blockPlan
	depth       int
	first, last int
	sections    []sectionPlan
	children    []*blockPlan
}

func (b *blockPlan) extend(first, last int) {
	if b.first < 0 || first < b.first {
		b.first = first
	}
	if last > b.last {
		b.last = last
	}
}

// layout is the resolved geometry of one diagram. Drawing and indexing both
// read from it and never recompute coordinates on their own.
type layout struct {
	seq    *model.Sequence
	opts   model.RenderOptions
	cols   []column
	colIdx map[string]int
	rows   []row
	rowOf  map[string]int
	blocks []*blockPlan // pre-order
	levels int
	margin int
	topY   int
	width  int
	height int
}

// boxWidths returns the inner and total width of a participant box. The total
// is always odd so the lifeline sits on the center cell.
func boxWidths(name string) (inner, total int) {
	inner = max(canvas.StringWidth(name)+2, MinBoxInnerWidth)
	total = inner + 2
	if total%2 == 0 {
		inner++
		total++
	}
	return inner, total
}

func plan(seq *model.Sequence, opts model.RenderOptions) (*layout, error) {
	l := &layout{
		seq:    seq,
		opts:   opts,
		colIdx: make(map[string]int, len(seq.Participants)),
		rowOf:  make(map[string]int, len(seq.Messages)),
	}

	for _, p := range seq.Participants {
		if _, dup := l.colIdx[p.ID]; dup {
			continue
		}
		name := p.DisplayName()
		inner, total := boxWidths(name)
		l.colIdx[p.ID] = len(l.cols)
		l.cols = append(l.cols, column{id: p.ID, name: name, inner: inner, width: total})
	}

	msgs := slices.Clone(seq.Messages)
	slices.SortStableFunc(msgs, func(a, b model.Message) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for i, m := range msgs {
		r := row{msg: m, from: -1, to: -1}
		if c, ok := l.colIdx[m.From]; ok {
			r.from = c
		}
		if c, ok := l.colIdx[m.To]; ok {
			r.to = c
		}
		l.rows = append(l.rows, r)
		if _, dup := l.rowOf[m.ID]; !dup {
			l.rowOf[m.ID] = i
		}
	}

	for i := range seq.Blocks {
		if _, err := l.planBlock(&seq.Blocks[i], nil, 0); err != nil {
			return nil, err
		}
	}

	l.margin = l.levels * FrameInset
	l.placeColumns()
	l.topY = BoxHeight + HeaderGap + 1
	if opts.ReserveNotes {
		l.topY += NoteRows
	}
	resolveRows(l)
	l.height = l.contentBottom() + 2
	switch {
	case len(l.cols) == 0 && len(l.rows) == 0:
		l.height = 0
	case len(l.rows) == 0:
		l.height = l.topY
	}
	return l, nil
}

func (l *layout) planBlock(b *model.Block, parent *blockPlan, depth int) (*blockPlan, error) {
	if len(b.Sections) == 0 {
		return nil, &MembershipError{BlockID: b.ID, Reason: "block has no sections"}
	}
	bp := &blockPlan{block: b, parent: parent, depth: depth, first: -1, last: -1}
	l.blocks = append(l.blocks, bp)
	l.levels = max(l.levels, depth+1)

	for i := range b.Sections {
		s := &b.Sections[i]
		if len(s.Messages) == 0 {
			return nil, &MembershipError{BlockID: b.ID, SectionID: s.ID, Reason: "section has no messages"}
		}
		sp := sectionPlan{section: s, first: -1, last: -1}
		for _, id := range s.Messages {
			r, ok := l.rowOf[id]
			if !ok {
				return nil, &MembershipError{
					BlockID:   b.ID,
					SectionID: s.ID,
					Reason:    fmt.Sprintf("message %q is not in the diagram", id),
				}
			}
			if sp.first < 0 || r < sp.first {
				sp.first = r
			}
			sp.last = max(sp.last, r)
		}
		bp.sections = append(bp.sections, sp)
		bp.extend(sp.first, sp.last)
	}

	for i := range b.Blocks {
		child, err := l.planBlock(&b.Blocks[i], bp, depth+1)
		if err != nil {
			return nil, err
		}
		bp.children = append(bp.children, child)
		bp.extend(child.first, child.last)
	}
	return bp, nil
}

// placeColumns spaces the lifelines so every message label fits between its
// endpoints and fixes the canvas width.
func (l *layout) placeColumns() {
	n := len(l.cols)
	if n == 0 {
		l.width = 2 * l.margin
		return
	}
	half := func(i int) int { return l.cols[i].width / 2 }

	gaps := make([]int, n-1)
	for i := range gaps {
		gaps[i] = half(i) + half(i+1) + 1 + ParticipantGap
	}
	tail := half(n - 1)

	for _, r := range l.rows {
		if r.from < 0 || r.to < 0 {
			continue
		}
		need := canvas.StringWidth(l.labelText(r)) + MessageLabelPadding
		if r.from == r.to {
			if r.from < n-1 {
				gaps[r.from] = max(gaps[r.from], need)
			} else {
				tail = max(tail, need-2)
			}
			continue
		}
		lo, hi := min(r.from, r.to), max(r.from, r.to)
		have := 0
		for _, g := range gaps[lo:hi] {
			have += g
		}
		if have < need {
			gaps[hi-1] += need - have
		}
	}

	x := l.margin + half(0)
	for i := range l.cols {
		if i > 0 {
			x += gaps[i-1]
		}
		l.cols[i].lifeline = x
		l.cols[i].x = x - half(i)
	}
	l.width = l.cols[n-1].lifeline + tail + 1 + l.margin
}

// contentBottom is the lowest row holding message or frame ink.
func (l *layout) contentBottom() int {
	if len(l.rows) == 0 {
		return l.topY
	}
	last := len(l.rows) - 1
	bottom := l.rows[last].y + l.selfDrop(last)
	for _, bp := range l.blocks {
		bottom = max(bottom, l.frame(bp).bottom)
	}
	return bottom
}

func (l *layout) selfDrop(r int) int {
	if l.rows[r].msg.IsSelf() {
		return SelfMessageLoopDrop
	}
	return 0
}

// direction follows the lifeline order, which is the column order.
func (l *layout) direction(r row) model.Direction {
	if r.from < r.to {
		return model.Right
	}
	return model.Left
}

// labelText is the message text, prefixed with a direction marker when
// requested.
func (l *layout) labelText(r row) string {
	if !l.opts.PrefixLabels || r.from < 0 || r.to < 0 {
		return r.msg.Text
	}
	var marker string
	switch {
	case r.from == r.to:
		marker = "↻"
	default:
		switch l.direction(r) {
		case model.Right:
			marker = "→"
		case model.Left:
			marker = "←"
		}
	}
	if r.msg.Text == "" {
		return marker
	}
	return marker + " " + r.msg.Text
}
