package model

import (
	"encoding/json"
	"fmt"
)

// LineSpan is an inclusive column range on one canvas row.
// It encodes to JSON as the 3-tuple [row, colStart, colEnd].
type LineSpan struct {
	Row      int
	ColStart int
	ColEnd   int
}

// Contains reports whether the cell (row, col) lies on the span.
func (s LineSpan) Contains(row, col int) bool {
	return row == s.Row && col >= s.ColStart && col <= s.ColEnd
}

// Len is the number of cells covered.
func (s LineSpan) Len() int {
	return s.ColEnd - s.ColStart + 1
}

func (s LineSpan) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{s.Row, s.ColStart, s.ColEnd})
}

func (s *LineSpan) UnmarshalJSON(b []byte) error {
	var t [3]int
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("line span: %w", err)
	}
	if t[0] < 0 || t[1] < 0 || t[2] < t[1] {
		return fmt.Errorf("line span %v: want non-negative row and colStart <= colEnd", t)
	}
	*s = LineSpan{Row: t[0], ColStart: t[1], ColEnd: t[2]}
	return nil
}

// Rect is the bounding box of a set of spans, inclusive on all sides.
type Rect struct {
	Top, Left, Bottom, Right int
}

// Encloses reports whether o lies entirely inside r.
func (r Rect) Encloses(o Rect) bool {
	return o.Top >= r.Top && o.Bottom <= r.Bottom && o.Left >= r.Left && o.Right <= r.Right
}

// IndexEntry pairs a ref with its spans.
type IndexEntry struct {
	Ref   ObjectRef  `json:"ref"`
	Spans []LineSpan `json:"spans"`
}

// HighlightIndex maps ObjectRefs to the cells they occupy. Refs keep the
// order in which they were first added.
type HighlightIndex struct {
	order []ObjectRef
	spans map[ObjectRef][]LineSpan
}

// NewHighlightIndex returns an empty index.
func NewHighlightIndex() *HighlightIndex {
	return &HighlightIndex{spans: make(map[ObjectRef][]LineSpan)}
}

// Add appends spans to ref, registering ref on first use.
func (h *HighlightIndex) Add(ref ObjectRef, spans ...LineSpan) {
	if _, ok := h.spans[ref]; !ok {
		h.order = append(h.order, ref)
		h.spans[ref] = nil
	}
	h.spans[ref] = append(h.spans[ref], spans...)
}

// Len is the number of refs.
func (h *HighlightIndex) Len() int {
	return len(h.order)
}

// Refs returns the refs in insertion order.
func (h *HighlightIndex) Refs() []ObjectRef {
	out := make([]ObjectRef, len(h.order))
	copy(out, h.order)
	return out
}

// Spans returns a copy of the spans owned by ref.
func (h *HighlightIndex) Spans(ref ObjectRef) ([]LineSpan, bool) {
	s, ok := h.spans[ref]
	if !ok {
		return nil, false
	}
	out := make([]LineSpan, len(s))
	copy(out, s)
	return out, true
}

// Entries returns every ref with its spans, in insertion order.
func (h *HighlightIndex) Entries() []IndexEntry {
	out := make([]IndexEntry, 0, len(h.order))
	for _, ref := range h.order {
		spans, _ := h.Spans(ref)
		out = append(out, IndexEntry{Ref: ref, Spans: spans})
	}
	return out
}

// Lookup returns every ref owning the cell (row, col), in insertion order.
func (h *HighlightIndex) Lookup(row, col int) []ObjectRef {
	var out []ObjectRef
	for _, ref := range h.order {
		for _, s := range h.spans[ref] {
			if s.Contains(row, col) {
				out = append(out, ref)
				break
			}
		}
	}
	return out
}

// Bounds returns the bounding box of ref's spans.
func (h *HighlightIndex) Bounds(ref ObjectRef) (Rect, bool) {
	spans := h.spans[ref]
	if len(spans) == 0 {
		return Rect{}, false
	}
	r := Rect{Top: spans[0].Row, Bottom: spans[0].Row, Left: spans[0].ColStart, Right: spans[0].ColEnd}
	for _, s := range spans[1:] {
		r.Top = min(r.Top, s.Row)
		r.Bottom = max(r.Bottom, s.Row)
		r.Left = min(r.Left, s.ColStart)
		r.Right = max(r.Right, s.ColEnd)
	}
	return r, true
}
