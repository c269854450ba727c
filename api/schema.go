package api

// Schema declares the asset types the validator knows how to decompose.
// It is the type registry consulted when walking an asset's fields.
type Schema struct {
	// Version of the assetwalk schema.
	Version string `json:"version" yaml:"version"`
	// TypeKey names the document key holding an object's runtime type.
	// A value starting with "$." or "$[" is evaluated as a JSONPath.
	TypeKey string `json:"type_key,omitempty" yaml:"type_key,omitempty"`
	// Types declared by this schema.
	Types []TypeDef `json:"types" yaml:"types"`
}

// TypeDef describes one asset or struct type.
type TypeDef struct {
	// Name of the type, matched against runtime type names.
	Name string `json:"name" yaml:"name"`
	// Extends names a parent type whose fields come first.
	Extends string `json:"extends,omitempty" yaml:"extends,omitempty"`
	// Fields in declared order.
	Fields []FieldDef `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldDef describes a single field of a type.
type FieldDef struct {
	// Name of the field, matched against document keys.
	Name string `json:"name" yaml:"name"`
	// Kind selects how the field's value is interpreted.
	Kind FieldKind `json:"kind" yaml:"kind"`
	// Type is the declared type for struct and object fields.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Elem describes array elements. Only used when Kind is array.
	Elem *FieldDef `json:"elem,omitempty" yaml:"elem,omitempty"`
}

// FieldKind enumerates the value shapes a field can hold.
type FieldKind string

const (
	KindScalar FieldKind = "scalar" // strings, numbers, booleans
	KindStruct FieldKind = "struct" // inline aggregate, no identity of its own
	KindObject FieldKind = "object" // direct reference to an embedded object
	KindSoft   FieldKind = "soft"   // identifier that must be loaded separately
	KindArray  FieldKind = "array"  // ordered sequence of Elem
)

// DefaultTypeKey is used when a schema leaves TypeKey empty.
const DefaultTypeKey = "$type"
