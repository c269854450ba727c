package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agentic-research/assetwalk/api"
	"github.com/hashicorp/go-multierror"
	"github.com/ohler55/ojg/jp"
)

// ErrUnknownType is returned by FieldsOf for a type the schema never declared.
var ErrUnknownType = errors.New("unknown type")

// Registry answers field and value questions about the types of a schema.
// It is read-only after construction.
type Registry struct {
	typeKey  string
	typePath jp.Expr
	types    map[string]api.TypeDef
	fields   map[string][]FieldDescriptor
}

// NewRegistry validates s and resolves inheritance. Every problem found is
// reported, not only the first.
func NewRegistry(s *api.Schema) (*Registry, error) {
	if s == nil {
		return nil, errors.New("nil schema")
	}
	r := &Registry{
		typeKey: s.TypeKey,
		types:   make(map[string]api.TypeDef, len(s.Types)),
		fields:  make(map[string][]FieldDescriptor, len(s.Types)),
	}
	if r.typeKey == "" {
		r.typeKey = api.DefaultTypeKey
	}

	var result *multierror.Error
	if strings.HasPrefix(r.typeKey, "$.") || strings.HasPrefix(r.typeKey, "$[") {
		x, err := jp.ParseString(r.typeKey)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid type_key jsonpath '%s': %w", r.typeKey, err))
		}
		r.typePath = x
	}

	for _, t := range s.Types {
		if t.Name == "" {
			result = multierror.Append(result, errors.New("type with empty name"))
			continue
		}
		if _, dup := r.types[t.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("type %s declared twice", t.Name))
			continue
		}
		r.types[t.Name] = t
	}

	for _, t := range s.Types {
		if t.Name == "" {
			continue
		}
		for _, f := range t.Fields {
			if err := r.checkField(t.Name, f); err != nil {
				result = multierror.Append(result, err)
			}
		}
		fields, err := r.resolve(t.Name, nil)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		seen := make(map[string]bool, len(fields))
		for _, fd := range fields {
			if seen[fd.Name] {
				result = multierror.Append(result, fmt.Errorf("type %s: field %s declared twice", t.Name, fd.Name))
			}
			seen[fd.Name] = true
		}
		r.fields[t.Name] = fields
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return r, nil
}

// resolve returns inherited fields first, then the type's own.
func (r *Registry) resolve(name string, chain []string) ([]FieldDescriptor, error) {
	for _, c := range chain {
		if c == name {
			return nil, fmt.Errorf("type %s: cyclic extends %s", chain[0], strings.Join(append(chain, name), " -> "))
		}
	}
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("type %s: extends %w %s", chain[len(chain)-1], ErrUnknownType, name)
	}
	var out []FieldDescriptor
	if t.Extends != "" {
		parent, err := r.resolve(t.Extends, append(chain, name))
		if err != nil {
			return nil, err
		}
		out = append(out, parent...)
	}
	for _, f := range t.Fields {
		out = append(out, FieldDescriptor{Owner: name, FieldDef: f})
	}
	return out, nil
}

func (r *Registry) checkField(owner string, f api.FieldDef) error {
	if f.Name == "" {
		return fmt.Errorf("type %s: field with empty name", owner)
	}
	switch f.Kind {
	case api.KindScalar, api.KindSoft:
		return nil
	case api.KindStruct:
		if _, ok := r.types[f.Type]; !ok {
			return fmt.Errorf("type %s: field %s: struct %w '%s'", owner, f.Name, ErrUnknownType, f.Type)
		}
	case api.KindObject:
		// The declared type is only a fallback for objects missing a type key.
		if f.Type != "" {
			if _, ok := r.types[f.Type]; !ok {
				return fmt.Errorf("type %s: field %s: object %w '%s'", owner, f.Name, ErrUnknownType, f.Type)
			}
		}
	case api.KindArray:
		if f.Elem == nil {
			return fmt.Errorf("type %s: field %s: array without elem", owner, f.Name)
		}
		elem := *f.Elem
		if elem.Name == "" {
			elem.Name = f.Name
		}
		return r.checkField(owner, elem)
	default:
		return fmt.Errorf("type %s: field %s: unknown kind '%s'", owner, f.Name, f.Kind)
	}
	return nil
}

// Has reports whether name is a declared type.
func (r *Registry) Has(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Types returns the declared type names, sorted.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldsOf returns the ordered fields of a type, inherited fields first.
func (r *Registry) FieldsOf(name string) ([]FieldDescriptor, error) {
	fields, ok := r.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return fields, nil
}

// TypeOf extracts the runtime type name from a decoded document.
func (r *Registry) TypeOf(doc map[string]any) string {
	if doc == nil {
		return ""
	}
	var v any
	if r.typePath != nil {
		v = r.typePath.First(doc)
	} else {
		v = doc[r.typeKey]
	}
	s, _ := v.(string)
	return s
}

// ValueOf extracts the value of fd from an object's decoded fields.
func (r *Registry) ValueOf(values map[string]any, fd FieldDescriptor) Value {
	return r.convert(values[fd.Name], fd.FieldDef)
}

func (r *Registry) convert(raw any, def api.FieldDef) Value {
	switch def.Kind {
	case api.KindStruct:
		m, ok := raw.(map[string]any)
		v := Value{Kind: Aggregate, Type: def.Type, Fields: m}
		if !ok && raw != nil {
			v.Mismatch = fmt.Sprintf("%T", raw)
		}
		return v
	case api.KindObject:
		m, ok := raw.(map[string]any)
		typ := r.TypeOf(m)
		if typ == "" {
			typ = def.Type
		}
		v := Value{Kind: Reference, Type: typ, Fields: m}
		if !ok && raw != nil {
			v.Mismatch = fmt.Sprintf("%T", raw)
		}
		return v
	case api.KindSoft:
		ref, ok := softPath(raw)
		v := Value{Kind: Soft, Ref: ref}
		if !ok && raw != nil {
			v.Mismatch = fmt.Sprintf("%T", raw)
		}
		return v
	case api.KindArray:
		v := Value{Kind: Sequence}
		if def.Elem == nil || raw == nil {
			return v
		}
		list, ok := raw.([]any)
		if !ok {
			// a lone element, e.g. an HCL block written once
			list = []any{raw}
		}
		v.Elems = make([]Value, 0, len(list))
		for _, e := range list {
			v.Elems = append(v.Elems, r.convert(e, *def.Elem))
		}
		return v
	default:
		return Value{Kind: Scalar}
	}
}

// softPath accepts a bare identifier or a soft object path struct.
// ok is false when raw has neither shape.
func softPath(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case map[string]any:
		for _, k := range []string{"path", "asset_path", "AssetPathName"} {
			if s, ok := v[k].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}
