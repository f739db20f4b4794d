package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnomei/nereid-sub000/internal/datasource"
	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/render"
)

// writeFile writes a diagram into a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const nested = `
diagram_id: demo
participants: [{id: a, name: Alice}, {id: b, name: Bob}]
messages:
  - {id: m1, from: a, to: b, text: hello, order: 1}
  - {id: m2, from: b, to: b, text: think, order: 2}
  - {id: m3, from: b, to: a, kind: return, text: bye, order: 3}
blocks:
  - id: l1
    kind: loop
    sections: [{id: ls, messages: [m1, m2, m3]}]
    blocks:
      - id: a1
        kind: alt
        sections:
          - {id: as1, messages: [m1]}
          - {id: as2, kind: else, messages: [m2]}
`

func TestBuildEmptyDiagram(t *testing.T) {
	path := writeFile(t, "diagram.json", `{"diagram_id": "e", "participants": [], "messages": []}`)

	snap, err := Build(path, model.RenderOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Participants != 0 {
		t.Errorf("expected 0 participants, got %d", snap.Participants)
	}
	if snap.Messages != 0 {
		t.Errorf("expected 0 messages, got %d", snap.Messages)
	}
	if snap.Blocks != 0 {
		t.Errorf("expected 0 blocks, got %d", snap.Blocks)
	}
	if snap.Result.Text != "" {
		t.Errorf("expected empty text, got %q", snap.Result.Text)
	}
	if len(snap.Refs()) != 0 {
		t.Errorf("expected no refs, got %v", snap.Refs())
	}
	if snap.Path != path {
		t.Errorf("Path = %q, want %q", snap.Path, path)
	}
	if snap.BuiltAt.IsZero() {
		t.Error("BuiltAt should not be zero")
	}
}

func TestBuildNested(t *testing.T) {
	path := writeFile(t, "diagram.yaml", nested)

	snap, err := Build(path, model.RenderOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.Participants != 2 || snap.Messages != 3 {
		t.Errorf("counts = %d participants, %d messages", snap.Participants, snap.Messages)
	}
	if snap.Blocks != 2 {
		t.Errorf("expected 2 blocks, got %d", snap.Blocks)
	}
	if snap.Sections != 3 {
		t.Errorf("expected 3 sections, got %d", snap.Sections)
	}
	if snap.MaxDepth != 2 {
		t.Errorf("expected depth 2, got %d", snap.MaxDepth)
	}

	// 2 participants + 3 messages + 2 blocks + 3 sections.
	refs := snap.Refs()
	if len(refs) != 10 {
		t.Fatalf("expected 10 refs, got %d: %v", len(refs), refs)
	}
	if refs[0].String() != "d:demo/seq/participant/a" {
		t.Errorf("first ref = %s", refs[0])
	}
	if refs[5].String() != "d:demo/seq/block/l1" {
		t.Errorf("first block ref = %s", refs[5])
	}
	for _, ref := range refs {
		if len(snap.Spans(ref)) == 0 {
			t.Errorf("%s has no spans", ref)
		}
	}
}

func TestBuildInvalidMembership(t *testing.T) {
	path := writeFile(t, "diagram.json", `{
  "participants": [{"id": "a"}],
  "messages": [{"id": "m1", "from": "a", "to": "a", "order": 1}],
  "blocks": [{"id": "b1", "kind": "opt", "sections": [{"id": "s1", "messages": ["ghost"]}]}]
}`)

	_, err := Build(path, model.RenderOptions{})
	if !errors.Is(err, render.ErrInvalidBlockMembership) {
		t.Fatalf("expected invalid block membership, got %v", err)
	}
	var me *render.MembershipError
	if !errors.As(err, &me) || me.SectionID != "s1" {
		t.Errorf("expected error naming section s1, got %v", err)
	}
}

func TestBuildSchemaError(t *testing.T) {
	path := writeFile(t, "diagram.json", `{"participants": "nope", "messages": []}`)

	_, err := Build(path, model.RenderOptions{})
	var verr *datasource.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestBuildMissingFile(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing.json"), model.RenderOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestFromSequenceOptions(t *testing.T) {
	seq := &model.Sequence{
		DiagramID:    "o",
		Participants: []model.Participant{{ID: "a"}, {ID: "b"}},
		Messages:     []model.Message{{ID: "m", From: "a", To: "b", Text: "go", Order: 1}},
	}
	plain, err := FromSequence(seq, model.RenderOptions{})
	if err != nil {
		t.Fatalf("FromSequence: %v", err)
	}
	notes, err := FromSequence(seq, model.RenderOptions{ReserveNotes: true})
	if err != nil {
		t.Fatalf("FromSequence: %v", err)
	}
	if notes.Result.Height != plain.Result.Height+render.NoteRows {
		t.Errorf("ReserveNotes height = %d, want %d", notes.Result.Height, plain.Result.Height+render.NoteRows)
	}
}

func TestNilSnapshotAccessors(t *testing.T) {
	var s *Snapshot
	if s.Refs() != nil {
		t.Error("nil snapshot should have no refs")
	}
	if s.Spans(model.ObjectRef{}) != nil {
		t.Error("nil snapshot should have no spans")
	}
}
