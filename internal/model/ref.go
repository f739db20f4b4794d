package model

import (
	"fmt"
	"strings"
)

// Category paths of addressable objects.
const (
	CategoryParticipant = "seq/participant"
	CategoryMessage     = "seq/message"
	CategoryBlock       = "seq/block"
	CategorySection     = "seq/section"
	CategoryNode        = "flow/node"
	CategoryEdge        = "flow/edge"
)

// ObjectRef is the globally unique address of one semantic diagram element.
// Its textual form is d:<diagram>/<category>/<object>.
type ObjectRef struct {
	Diagram  string
	Category string
	Object   string
}

func (r ObjectRef) String() string {
	return "d:" + r.Diagram + "/" + r.Category + "/" + r.Object
}

// MarshalText implements encoding.TextMarshaler.
func (r ObjectRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ObjectRef) UnmarshalText(b []byte) error {
	ref, err := ParseObjectRef(string(b))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ParseObjectRef parses the textual form. The diagram id ends at the first
// slash and the object id starts after the last one, so category paths may
// contain slashes but ids may not.
func ParseObjectRef(s string) (ObjectRef, error) {
	rest, ok := strings.CutPrefix(s, "d:")
	if !ok {
		return ObjectRef{}, fmt.Errorf("object ref %q: missing d: prefix", s)
	}
	diagram, rest, ok := strings.Cut(rest, "/")
	if !ok || diagram == "" {
		return ObjectRef{}, fmt.Errorf("object ref %q: missing diagram id", s)
	}
	i := strings.LastIndex(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return ObjectRef{}, fmt.Errorf("object ref %q: want d:<diagram>/<category>/<object>", s)
	}
	return ObjectRef{Diagram: diagram, Category: rest[:i], Object: rest[i+1:]}, nil
}
