package walk

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/assetwalk/internal/asset"
)

// Visited records the assets already validated during one run.
// Identifiers are interned to dense ids kept in a roaring bitmap.
type Visited struct {
	ids  map[asset.Identifier]uint32
	seen *roaring.Bitmap
}

func NewVisited() *Visited {
	return &Visited{
		ids:  make(map[asset.Identifier]uint32),
		seen: roaring.New(),
	}
}

// ShouldSkip returns false the first time id is offered and marks it
// visited; every later call for the same id returns true.
func (v *Visited) ShouldSkip(id asset.Identifier) bool {
	n, ok := v.ids[id]
	if !ok {
		n = uint32(len(v.ids))
		v.ids[id] = n
	}
	return !v.seen.CheckedAdd(n)
}

// Len returns the number of visited assets.
func (v *Visited) Len() int {
	return int(v.seen.GetCardinality())
}
