package schema

import (
	"fmt"
	"os"

	"github.com/agentic-research/assetwalk/api"
	"gopkg.in/yaml.v3"
)

// Parse decodes a schema document. JSON is accepted as the YAML subset it is.
func Parse(data []byte) (*api.Schema, error) {
	var s api.Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &s, nil
}

// LoadFile reads, parses and validates the schema at path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r, err := NewRegistry(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
