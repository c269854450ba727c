package walk

import (
	"errors"
	"strings"
)

// Config holds the traversal limits.
type Config struct {
	// LimitTypes never get walked into when referenced, and cap the
	// indirection fan-out below them at LimitNumber.
	LimitTypes []string
	// LimitNumber is the indirection depth blocked beneath a LimitTypes ancestor.
	LimitNumber int
}

// Validate rejects configurations the walker cannot honor.
func (c Config) Validate() error {
	if c.LimitNumber < 0 {
		return errors.New("limit number must not be negative")
	}
	for _, t := range c.LimitTypes {
		if strings.TrimSpace(t) == "" {
			return errors.New("limit type must not be empty")
		}
	}
	return nil
}

func (c Config) limitedTypes() map[string]bool {
	m := make(map[string]bool, len(c.LimitTypes))
	for _, t := range c.LimitTypes {
		m[strings.TrimSpace(t)] = true
	}
	return m
}
