package walk

// Target is a resolved reference the walker is about to descend into.
type Target struct {
	// Type is the runtime type of the referenced object.
	Type string
	// Path ends with the node of the field holding the reference.
	Path Path
	// Depth is the indirection depth the target would be walked at.
	Depth int
}

// Guard decides whether descent into a target must be blocked.
type Guard struct {
	Name  string
	Block func(t Target) bool
}

// Guards is an ordered chain; the first blocking guard wins.
type Guards []Guard

// Block returns the name of the first guard blocking t.
func (g Guards) Block(t Target) (name string, blocked bool) {
	for _, guard := range g {
		if guard.Block(t) {
			return guard.Name, true
		}
	}
	return "", false
}

// TypeExclusion blocks any target whose runtime type is limited.
func TypeExclusion(limited map[string]bool) Guard {
	return Guard{
		Name: "type-exclusion",
		Block: func(t Target) bool {
			return limited[t.Type]
		},
	}
}

// StructuralRepetition blocks a target when the (type, field) pair holding
// it already occurs earlier in the path. Types that embed a field of their
// own type would otherwise recurse without bound.
func StructuralRepetition() Guard {
	return Guard{
		Name: "structural-repetition",
		Block: func(t Target) bool {
			last, ok := t.Path.Last()
			return ok && t.Path.Parent().Contains(last)
		},
	}
}

// DepthRestriction blocks a target at exactly the given indirection depth
// once the path has passed through a limited type.
func DepthRestriction(limited map[string]bool, depth int) Guard {
	return Guard{
		Name: "depth-restriction",
		Block: func(t Target) bool {
			return t.Depth == depth && t.Path.ContainsType(limited)
		},
	}
}

// DefaultGuards returns the standard chain for cfg: type exclusion,
// structural repetition, then depth restriction.
func DefaultGuards(cfg Config) Guards {
	limited := cfg.limitedTypes()
	return Guards{
		TypeExclusion(limited),
		StructuralRepetition(),
		DepthRestriction(limited, cfg.LimitNumber),
	}
}
