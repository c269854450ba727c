package schema

import "github.com/agentic-research/assetwalk/api"

// FieldDescriptor is a resolved field: its owning type plus the declaration.
type FieldDescriptor struct {
	Owner string
	api.FieldDef
}

// ValueKind is the variant tag of a Value.
type ValueKind int

const (
	Scalar ValueKind = iota
	Aggregate
	Reference
	Soft
	Sequence
)

func (k ValueKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Aggregate:
		return "aggregate"
	case Reference:
		return "reference"
	case Soft:
		return "soft"
	case Sequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is one field occurrence extracted from an object.
//
// For Aggregate and Reference, Type is the type to decompose with and
// Fields the nested document (nil when absent). For Soft, Ref holds the raw
// stored identifier. For Sequence, Elems holds the element values in order.
// Mismatch names the Go type of a stored value whose shape does not fit the
// field kind; such a value is read as null.
type Value struct {
	Kind     ValueKind
	Type     string
	Fields   map[string]any
	Ref      string
	Elems    []Value
	Mismatch string
}

// IsNil reports whether the value is an absent aggregate or reference.
func (v Value) IsNil() bool {
	return (v.Kind == Aggregate || v.Kind == Reference) && v.Fields == nil
}
