package walk

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func TestProperty_LoadsAtMostOnce(t *testing.T) {
	reg := testRegistry(t)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		l := newMemLoader()
		missing := false
		for i := 0; i < n; i++ {
			targets := rapid.SliceOfN(rapid.IntRange(0, n+1), 0, 4).Draw(t, fmt.Sprintf("refs%d", i))
			refs := make([]any, len(targets))
			for j, k := range targets {
				if k >= n {
					missing = true
					refs[j] = fmt.Sprintf("/Game/Missing%d", k)
				} else {
					refs[j] = fmt.Sprintf("/Game/Asset%d", k)
				}
			}
			l.add(fmt.Sprintf("/Game/Asset%d", i), "Node", map[string]any{"refs": refs})
		}
		roots := rapid.SliceOfN(rapid.IntRange(0, n-1), 1, 6).Draw(t, "roots")
		var rootIDs []string
		for _, r := range roots {
			rootIDs = append(rootIDs, fmt.Sprintf("/Game/Asset%d", r))
		}

		w := New(Config{}, reg, l)
		failed := w.Run(context.Background(), ids(rootIDs...))
		res := w.Result()

		for id, count := range l.loads {
			if count > 1 {
				t.Fatalf("%s loaded %d times", id, count)
			}
		}
		if res.Loaded != len(l.loads) {
			t.Fatalf("loaded counter %d, distinct loads %d", res.Loaded, len(l.loads))
		}
		if w.Visited().Len() != len(l.loads) {
			t.Fatalf("visited %d, distinct loads %d", w.Visited().Len(), len(l.loads))
		}
		if !missing && failed {
			t.Fatalf("run failed without any dangling reference")
		}
		if failed != (res.Dangling > 0) {
			t.Fatalf("failed=%v but %d dangling references", failed, res.Dangling)
		}
	})
}

func TestProperty_SelfEmbeddingStopsAfterOneLevel(t *testing.T) {
	reg := testRegistry(t)

	rapid.Check(t, func(t *rapid.T) {
		levels := rapid.IntRange(1, 20).Draw(t, "levels")
		missingAt := rapid.IntRange(1, levels).Draw(t, "missingAt")

		l := newMemLoader()
		var data map[string]any
		for lvl := levels; lvl >= 1; lvl-- {
			ref := fmt.Sprintf("/Game/Level%d", lvl)
			if lvl == missingAt {
				ref = "/Game/Missing"
			} else {
				l.add(ref, "Node", nil)
			}
			next := map[string]any{"ref": ref}
			if data != nil {
				next["inner"] = data
			}
			data = next
		}
		l.add("/Game/Root", "Node", map[string]any{"data": data})

		w := New(Config{}, reg, l)
		failed := w.Run(context.Background(), ids("/Game/Root"))

		// Data.inner is walked once below Node.data; deeper levels are never inspected.
		if want := missingAt <= 2; failed != want {
			t.Fatalf("levels=%d missingAt=%d: failed=%v, want %v", levels, missingAt, failed, want)
		}
		if levels > 2 && w.Result().Blocked != 1 {
			t.Fatalf("levels=%d: blocked %d, want 1", levels, w.Result().Blocked)
		}
	})
}

func TestProperty_AppendIsolation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.Custom(func(t *rapid.T) PathNode {
			return PathNode{
				Type:  rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, "type"),
				Field: rapid.SampledFrom([]string{"x", "y"}).Draw(t, "field"),
			}
		})
		prefix := rapid.SliceOf(gen).Draw(t, "prefix")
		var p Path
		for _, n := range prefix {
			p = p.Append(n)
		}
		na, nb := gen.Draw(t, "a"), gen.Draw(t, "b")
		a := p.Append(na)
		b := p.Append(nb)
		if last, _ := a.Last(); last != na {
			t.Fatalf("appending %v to a sibling overwrote %v", nb, na)
		}
		if a.Parent().String() != p.String() || b.Parent().String() != p.String() {
			t.Fatalf("sibling append changed shared prefix: %s / %s / %s", p, a, b)
		}
		if p.Len() != len(prefix) {
			t.Fatalf("prefix length %d, want %d", p.Len(), len(prefix))
		}
	})
}
