package walk

import (
	"context"

	"github.com/agentic-research/assetwalk/internal/asset"
	"github.com/agentic-research/assetwalk/internal/schema"
)

// decompose walks every field of an object in declared order and returns
// true when nothing beneath it failed. Failures never stop the walk of
// sibling fields.
func (w *Walker) decompose(ctx context.Context, path Path, typ string, values map[string]any, depth int) bool {
	if values == nil {
		return true
	}
	fields, err := w.provider.FieldsOf(typ)
	if err != nil {
		if !w.unknown[typ] {
			w.unknown[typ] = true
			w.log.Warn("No fields known for type", "type", typ, "path", path.String(), "error", err)
		}
		return true
	}

	ok := true
	for _, fd := range fields {
		fieldPath := path.Append(PathNode{Type: typ, Field: fd.Name})
		ok = w.dispatch(ctx, fieldPath, w.provider.ValueOf(values, fd), depth) && ok
	}
	return ok
}

// dispatch handles one field occurrence. Array elements share the field's path.
func (w *Walker) dispatch(ctx context.Context, path Path, v schema.Value, depth int) bool {
	if v.Mismatch != "" {
		w.log.Warn("Field value does not match its kind", "kind", v.Kind, "got", v.Mismatch, "path", path.String())
	}
	switch v.Kind {
	case schema.Sequence:
		ok := true
		for _, e := range v.Elems {
			ok = w.dispatch(ctx, path, e, depth) && ok
		}
		return ok

	case schema.Aggregate, schema.Reference:
		if v.IsNil() {
			return true
		}
		return w.descend(ctx, path, "", v.Type, v.Fields, depth)

	case schema.Soft:
		id := asset.Normalize(v.Ref)
		if id.IsZero() {
			return true
		}
		obj, ok := w.resolve(ctx, path, id, depth+1)
		if obj == nil {
			return ok
		}
		return w.descend(ctx, path, obj.ID, obj.Type, obj.Values, depth+1) && ok

	default:
		return true
	}
}

// descend runs the guard chain and, unless blocked, walks the target.
// A blocked target counts as satisfied.
func (w *Walker) descend(ctx context.Context, path Path, id asset.Identifier, typ string, values map[string]any, depth int) bool {
	if name, blocked := w.guards.Block(Target{Type: typ, Path: path, Depth: depth}); blocked {
		w.result.Blocked++
		w.log.Debug("Skipping descent", "guard", name, "asset", id, "type", typ, "depth", depth, "path", path.String())
		w.record(Event{ID: id, Type: typ, Path: path.String(), Depth: depth, Outcome: OutcomeBlocked, Guard: name})
		return true
	}
	return w.decompose(ctx, path, typ, values, depth)
}
