// Package snapshot builds immutable render snapshots of a diagram file.
//
// A Snapshot captures the loaded diagram together with its rendered text and
// highlight index at a point in time. Snapshots are rebuilt on each file
// change and swapped into the UI model; a failed rebuild leaves the previous
// snapshot in place.
package snapshot

import (
	"time"

	"github.com/bnomei/nereid-sub000/internal/datasource"
	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/render"
)

// Snapshot is an immutable, self-contained view of one rendered diagram.
type Snapshot struct {
	Path    string
	Diagram *model.Sequence
	Result  render.Result

	// Counts.
	Participants int
	Messages     int
	Blocks       int
	Sections     int
	MaxDepth     int

	// Timestamp of snapshot creation.
	BuiltAt time.Time
}

// Build loads the diagram at path and renders it.
func Build(path string, opts model.RenderOptions) (*Snapshot, error) {
	seq, err := datasource.Load(path)
	if err != nil {
		return nil, err
	}
	snap, err := FromSequence(seq, opts)
	if err != nil {
		return nil, err
	}
	snap.Path = path
	return snap, nil
}

// FromSequence renders an already loaded diagram.
func FromSequence(seq *model.Sequence, opts model.RenderOptions) (*Snapshot, error) {
	res, err := render.Sequence(seq, opts)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Diagram:      seq,
		Result:       res,
		Participants: len(seq.Participants),
		Messages:     len(seq.Messages),
		BuiltAt:      time.Now(),
	}
	seq.WalkBlocks(func(b *model.Block, depth int) {
		snap.Blocks++
		snap.Sections += len(b.Sections)
		snap.MaxDepth = max(snap.MaxDepth, depth+1)
	})
	return snap, nil
}

// Refs returns every indexed object in index order.
func (s *Snapshot) Refs() []model.ObjectRef {
	if s == nil || s.Result.Index == nil {
		return nil
	}
	return s.Result.Index.Refs()
}

// Spans returns the spans of ref, or nil when ref is not on screen.
func (s *Snapshot) Spans(ref model.ObjectRef) []model.LineSpan {
	if s == nil || s.Result.Index == nil {
		return nil
	}
	spans, _ := s.Result.Index.Spans(ref)
	return spans
}
