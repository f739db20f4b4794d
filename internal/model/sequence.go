// Package model defines the sequence-diagram AST consumed by the renderer and
// the addressing types (ObjectRef, LineSpan, HighlightIndex) it produces.
//
// The AST is plain data. It carries json and yaml tags so diagram files can
// be decoded straight into it, but nothing here knows about files.
package model

// Participant is one lifeline owner.
type Participant struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DisplayName returns Name, falling back to ID.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Message is one arrow between two participants (or a self-loop).
// Order is the total order key; ties are broken by ID.
type Message struct {
	ID    string      `json:"id" yaml:"id"`
	From  string      `json:"from" yaml:"from"`
	To    string      `json:"to" yaml:"to"`
	Kind  MessageKind `json:"kind" yaml:"kind"`
	Text  string      `json:"text,omitempty" yaml:"text,omitempty"`
	Order int64       `json:"order" yaml:"order"`
}

// IsSelf reports whether sender and receiver are the same participant.
func (m Message) IsSelf() bool {
	return m.From == m.To
}

// Section is a labeled sub-range of a block's messages.
type Section struct {
	ID       string      `json:"id" yaml:"id"`
	Kind     SectionKind `json:"kind" yaml:"kind"`
	Header   string      `json:"header,omitempty" yaml:"header,omitempty"`
	Messages []string    `json:"messages" yaml:"messages"`
}

// Block is a nested control-flow frame.
type Block struct {
	ID       string    `json:"id" yaml:"id"`
	Kind     BlockKind `json:"kind" yaml:"kind"`
	Header   string    `json:"header,omitempty" yaml:"header,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
	Blocks   []Block   `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// Sequence is a complete sequence diagram.
type Sequence struct {
	DiagramID    string        `json:"diagram_id,omitempty" yaml:"diagram_id,omitempty"`
	Participants []Participant `json:"participants" yaml:"participants"`
	Messages     []Message     `json:"messages" yaml:"messages"`
	Blocks       []Block       `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// ParticipantRef returns the ObjectRef of a participant of this diagram.
func (s *Sequence) ParticipantRef(id string) ObjectRef {
	return ObjectRef{Diagram: s.DiagramID, Category: CategoryParticipant, Object: id}
}

func (s *Sequence) MessageRef(id string) ObjectRef {
	return ObjectRef{Diagram: s.DiagramID, Category: CategoryMessage, Object: id}
}

func (s *Sequence) BlockRef(id string) ObjectRef {
	return ObjectRef{Diagram: s.DiagramID, Category: CategoryBlock, Object: id}
}

func (s *Sequence) SectionRef(id string) ObjectRef {
	return ObjectRef{Diagram: s.DiagramID, Category: CategorySection, Object: id}
}

// WalkBlocks visits every block depth-first, parents before children.
// depth is 0 for top-level blocks.
func (s *Sequence) WalkBlocks(fn func(b *Block, depth int)) {
	var walk func(bs []Block, depth int)
	walk = func(bs []Block, depth int) {
		for i := range bs {
			fn(&bs[i], depth)
			walk(bs[i].Blocks, depth+1)
		}
	}
	walk(s.Blocks, 0)
}
