package model

import (
	"fmt"
	"strings"
)

// MessageKind classifies a sequence message.
type MessageKind int

const (
	MessageSync MessageKind = iota
	MessageAsync
	MessageReturn
)

func (k MessageKind) String() string {
	switch k {
	case MessageSync:
		return "sync"
	case MessageAsync:
		return "async"
	case MessageReturn:
		return "return"
	}
	return "?"
}

// MarshalText implements encoding.TextMarshaler.
func (k MessageKind) MarshalText() ([]byte, error) {
	switch k {
	case MessageSync, MessageAsync, MessageReturn:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown message kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MessageKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "sync", "":
		*k = MessageSync
	case "async":
		*k = MessageAsync
	case "return":
		*k = MessageReturn
	default:
		return fmt.Errorf("unknown message kind %q (valid: sync, async, return)", string(b))
	}
	return nil
}

// BlockKind is the closed set of control-flow frames.
type BlockKind int

const (
	BlockAlt BlockKind = iota
	BlockOpt
	BlockLoop
	BlockPar
)

func (k BlockKind) String() string {
	switch k {
	case BlockAlt:
		return "alt"
	case BlockOpt:
		return "opt"
	case BlockLoop:
		return "loop"
	case BlockPar:
		return "par"
	}
	return "?"
}

// Label is the frame caption drawn on the block's top edge.
func (k BlockKind) Label() string {
	return strings.ToUpper(k.String())
}

// MarshalText implements encoding.TextMarshaler.
func (k BlockKind) MarshalText() ([]byte, error) {
	switch k {
	case BlockAlt, BlockOpt, BlockLoop, BlockPar:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown block kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BlockKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "alt":
		*k = BlockAlt
	case "opt":
		*k = BlockOpt
	case "loop":
		*k = BlockLoop
	case "par":
		*k = BlockPar
	default:
		return fmt.Errorf("unknown block kind %q (valid: alt, opt, loop, par)", string(b))
	}
	return nil
}

// SectionKind distinguishes the first section of a block from its splits.
type SectionKind int

const (
	SectionMain SectionKind = iota
	SectionElse
	SectionAnd
)

func (k SectionKind) String() string {
	switch k {
	case SectionMain:
		return "main"
	case SectionElse:
		return "else"
	case SectionAnd:
		return "and"
	}
	return "?"
}

// Label is the caption drawn on a separator line. MAIN sections have none.
func (k SectionKind) Label() string {
	switch k {
	case SectionMain:
		return ""
	case SectionElse:
		return "ELSE"
	case SectionAnd:
		return "AND"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (k SectionKind) MarshalText() ([]byte, error) {
	switch k {
	case SectionMain, SectionElse, SectionAnd:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown section kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SectionKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "main", "":
		*k = SectionMain
	case "else":
		*k = SectionElse
	case "and":
		*k = SectionAnd
	default:
		return fmt.Errorf("unknown section kind %q (valid: main, else, and)", string(b))
	}
	return nil
}

// Direction is the horizontal heading of a drawn arrow.
type Direction int

const (
	Right Direction = iota
	Left
)

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	}
	return "?"
}
