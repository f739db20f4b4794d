package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseObjectRef(t *testing.T) {
	tests := []struct {
		in      string
		want    ObjectRef
		wantErr bool
	}{
		{in: "d:demo/seq/message/m:0001", want: ObjectRef{"demo", "seq/message", "m:0001"}},
		{in: "d:x/seq/participant/alice", want: ObjectRef{"x", "seq/participant", "alice"}},
		{in: "d:x/flow/node/n1", want: ObjectRef{"x", "flow/node", "n1"}},
		{in: "demo/seq/message/m1", wantErr: true},
		{in: "d:/seq/message/m1", wantErr: true},
		{in: "d:demo", wantErr: true},
		{in: "d:demo/m1", wantErr: true},
		{in: "d:demo/seq/message/", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseObjectRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestObjectRefJSON(t *testing.T) {
	ref := ObjectRef{Diagram: "demo", Category: CategoryBlock, Object: "b1"}
	b, err := json.Marshal(map[string]ObjectRef{"ref": ref})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref":"d:demo/seq/block/b1"}`, string(b))

	var back map[string]ObjectRef
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ref, back["ref"])
}

func TestKindsText(t *testing.T) {
	var seq Sequence
	doc := `
participants: [{id: a}]
messages:
  - {id: m1, from: a, to: a, kind: ASYNC, order: 1}
  - {id: m2, from: a, to: a, order: 2}
blocks:
  - id: b1
    kind: loop
    sections:
      - {id: s1, messages: [m1]}
      - {id: s2, kind: and, messages: [m2]}
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), &seq))
	assert.Equal(t, MessageAsync, seq.Messages[0].Kind)
	assert.Equal(t, MessageSync, seq.Messages[1].Kind, "missing kind defaults to sync")
	assert.Equal(t, BlockLoop, seq.Blocks[0].Kind)
	assert.Equal(t, SectionMain, seq.Blocks[0].Sections[0].Kind)
	assert.Equal(t, SectionAnd, seq.Blocks[0].Sections[1].Kind)
	assert.True(t, seq.Messages[0].IsSelf())

	var k BlockKind
	assert.Error(t, k.UnmarshalText([]byte("critical")))
	var mk MessageKind
	assert.Error(t, mk.UnmarshalText([]byte("oneway")))
	var sk SectionKind
	assert.Error(t, sk.UnmarshalText([]byte("otherwise")))

	_, err := BlockKind(42).MarshalText()
	assert.Error(t, err)
	b, err := MessageReturn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "return", string(b))
}

func TestKindLabels(t *testing.T) {
	assert.Equal(t, "ALT", BlockAlt.Label())
	assert.Equal(t, "OPT", BlockOpt.Label())
	assert.Equal(t, "LOOP", BlockLoop.Label())
	assert.Equal(t, "PAR", BlockPar.Label())
	assert.Equal(t, "", SectionMain.Label())
	assert.Equal(t, "ELSE", SectionElse.Label())
	assert.Equal(t, "AND", SectionAnd.Label())
	assert.Equal(t, "?", Direction(9).String())
}

func TestWalkBlocksPreOrder(t *testing.T) {
	seq := Sequence{Blocks: []Block{
		{ID: "a", Blocks: []Block{{ID: "a1", Blocks: []Block{{ID: "a11"}}}, {ID: "a2"}}},
		{ID: "b"},
	}}
	var got []string
	var depths []int
	seq.WalkBlocks(func(b *Block, depth int) {
		got = append(got, b.ID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"a", "a1", "a11", "a2", "b"}, got)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
}

func TestParticipantDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", Participant{ID: "a", Name: "Alice"}.DisplayName())
	assert.Equal(t, "a", Participant{ID: "a"}.DisplayName())
}

func TestLineSpanJSON(t *testing.T) {
	b, err := json.Marshal(LineSpan{Row: 3, ColStart: 4, ColEnd: 9})
	require.NoError(t, err)
	assert.Equal(t, "[3,4,9]", string(b))

	var s LineSpan
	require.NoError(t, json.Unmarshal([]byte("[1,2,2]"), &s))
	assert.Equal(t, LineSpan{Row: 1, ColStart: 2, ColEnd: 2}, s)
	assert.Equal(t, 1, s.Len())

	assert.Error(t, json.Unmarshal([]byte("[1,5,2]"), &s))
	assert.Error(t, json.Unmarshal([]byte("[-1,0,0]"), &s))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &s))
}

func TestHighlightIndex(t *testing.T) {
	a := ObjectRef{"d", CategoryParticipant, "a"}
	m := ObjectRef{"d", CategoryMessage, "m"}
	idx := NewHighlightIndex()
	idx.Add(m, LineSpan{Row: 5, ColStart: 2, ColEnd: 8})
	idx.Add(a, LineSpan{Row: 1, ColStart: 3, ColEnd: 3})
	idx.Add(m, LineSpan{Row: 4, ColStart: 4, ColEnd: 5})

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []ObjectRef{m, a}, idx.Refs(), "insertion order is kept")

	spans, ok := idx.Spans(m)
	require.True(t, ok)
	assert.Len(t, spans, 2)
	spans[0].Row = 99
	again, _ := idx.Spans(m)
	assert.Equal(t, 5, again[0].Row, "Spans returns a copy")

	_, ok = idx.Spans(ObjectRef{"d", CategoryBlock, "none"})
	assert.False(t, ok)

	assert.Equal(t, []ObjectRef{m}, idx.Lookup(5, 8))
	assert.Empty(t, idx.Lookup(5, 9))

	r, ok := idx.Bounds(m)
	require.True(t, ok)
	assert.Equal(t, Rect{Top: 4, Left: 2, Bottom: 5, Right: 8}, r)
	assert.True(t, r.Encloses(Rect{Top: 4, Left: 4, Bottom: 4, Right: 5}))
	assert.False(t, r.Encloses(Rect{Top: 3, Left: 4, Bottom: 4, Right: 5}))

	entries := idx.Entries()
	require.Len(t, entries, 2)
	b, err := json.Marshal(entries[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref":"d:d/seq/participant/a","spans":[[1,3,3]]}`, string(b))
}
