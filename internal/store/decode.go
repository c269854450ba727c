package store

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

func decodeJSON(data []byte) (map[string]any, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	return asDocument(v)
}

func decodeYAML(data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return asDocument(normalizeYAML(v))
}

func asDocument(v any) (map[string]any, error) {
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level is %T, want object", v)
	}
	return doc, nil
}

// normalizeYAML rewrites non-string keyed mappings (e.g. numeric keys) so the
// whole tree uses map[string]any like the other decoders.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	default:
		return v
	}
}
