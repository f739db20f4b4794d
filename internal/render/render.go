// Package render lays out a sequence diagram on a character grid and
// returns the text together with a highlight index of every object's cells.
//
// Rendering is pure: the same Sequence and RenderOptions always produce the
// same bytes and the same spans. The only failure is a malformed block graph,
// reported as *MembershipError. Everything else that does not fit is
// truncated or left out.
package render

import (
	"strings"

	"github.com/bnomei/nereid-sub000/internal/canvas"
	"github.com/bnomei/nereid-sub000/internal/model"
)

// Result is one rendered diagram. Index is owned by Text: both come from
// the same call and go stale together.
type Result struct {
	Text   string
	Index  *model.HighlightIndex
	Width  int
	Height int
}

// Sequence renders seq. A nil seq renders as an empty diagram.
func Sequence(seq *model.Sequence, opts model.RenderOptions) (Result, error) {
	if seq == nil {
		seq = &model.Sequence{}
	}
	l, err := plan(seq, opts)
	if err != nil {
		return Result{}, err
	}
	base, overlays := l.paint()
	rows := base.Rows()
	canvas.ApplyOverlays(rows, overlays)
	return Result{
		Text:   canvas.Join(rows),
		Index:  l.index(),
		Width:  l.width,
		Height: l.height,
	}, nil
}

// Lines splits Text into its Height rows.
func (r Result) Lines() []string {
	if r.Height == 0 {
		return nil
	}
	return strings.Split(r.Text, "\n")
}

// Document is the JSON form of a Result.
type Document struct {
	Text   string             `json:"text"`
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Index  []model.IndexEntry `json:"index"`
}

func (r Result) Document() Document {
	d := Document{Text: r.Text, Width: r.Width, Height: r.Height, Index: []model.IndexEntry{}}
	if r.Index != nil {
		d.Index = r.Index.Entries()
	}
	return d
}
