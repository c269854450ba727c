package walk

import (
	"context"
	"time"

	"github.com/agentic-research/assetwalk/internal/asset"
)

// Run validates every root asset and everything reachable from it.
// It returns true when any root or reachable reference failed. A failure
// never aborts the run; remaining roots are still validated. Cancelling
// ctx stops the run before the next root and fails it.
func (w *Walker) Run(ctx context.Context, ids []asset.Identifier) (failed bool) {
	ok := true
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			w.log.Warn("Run cancelled", "remaining", len(ids)-i, "error", err)
			return true
		}
		w.result.Roots++
		obj, loaded := w.resolve(ctx, Path{}, id, 0)
		ok = loaded && ok
		if obj != nil {
			ok = w.decompose(ctx, Path{}, obj.Type, obj.Values, 0) && ok
		}
	}
	return !ok
}

// RunValidation validates ids with a fresh Walker and reports overall failure.
func RunValidation(ctx context.Context, ids []asset.Identifier, cfg Config, provider Provider, loader Loader, opts ...Option) (failed bool) {
	return New(cfg, provider, loader, opts...).Run(ctx, ids)
}

// resolve checks that id exists and loads it unless it was already
// validated. It returns the loaded object only for a fresh, successful
// load; a memoized id yields (nil, true).
func (w *Walker) resolve(ctx context.Context, path Path, id asset.Identifier, depth int) (*asset.Object, bool) {
	display := path.String()
	if !w.loader.Exists(id) {
		w.result.Dangling++
		w.log.Error("Asset does not exist", "asset", id, "depth", depth, "path", display)
		w.record(Event{ID: id, Path: display, Depth: depth, Outcome: OutcomeDangling, Message: "asset does not exist"})
		return nil, false
	}
	if w.visited.ShouldSkip(id) {
		w.result.Memoized++
		w.log.Debug("Already validated", "asset", id, "path", display)
		w.record(Event{ID: id, Path: display, Depth: depth, Outcome: OutcomeMemoized})
		return nil, true
	}

	w.log.Info("Validating", "asset", id, "depth", depth, "path", display)
	start := time.Now()
	obj, err := w.loader.Load(ctx, id)
	elapsed := time.Since(start)
	if err != nil {
		w.result.LoadFailed++
		w.log.Error("Load failed", "asset", id, "path", display, "error", err)
		w.record(Event{ID: id, Path: display, Depth: depth, Outcome: OutcomeLoadFailed, Message: err.Error(), Duration: elapsed})
		return nil, false
	}

	w.result.Loaded++
	w.log.Info("Load complete", "asset", id, "type", obj.Type, "duration", elapsed)
	w.record(Event{ID: id, Type: obj.Type, Path: display, Depth: depth, Outcome: OutcomeLoaded, Duration: elapsed})
	return obj, true
}
