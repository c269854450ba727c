package walk

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/agentic-research/assetwalk/internal/asset"
	"github.com/agentic-research/assetwalk/internal/schema"
)

// Provider exposes the fields of types and the values of fields.
type Provider interface {
	FieldsOf(typeName string) ([]schema.FieldDescriptor, error)
	ValueOf(values map[string]any, fd schema.FieldDescriptor) schema.Value
}

// Loader materializes assets. Load must report missing or corrupt assets
// as errors and may be called again for an identifier it already served.
type Loader interface {
	Exists(id asset.Identifier) bool
	Load(ctx context.Context, id asset.Identifier) (*asset.Object, error)
}

// Outcome classifies a recorded event.
type Outcome string

const (
	OutcomeLoaded     Outcome = "loaded"
	OutcomeLoadFailed Outcome = "load_failed"
	OutcomeDangling   Outcome = "dangling"
	OutcomeMemoized   Outcome = "memoized"
	OutcomeBlocked    Outcome = "blocked"
)

// Failed reports whether the outcome fails the run.
func (o Outcome) Failed() bool {
	return o == OutcomeLoadFailed || o == OutcomeDangling
}

// Event describes one reference decision taken during a run.
type Event struct {
	ID       asset.Identifier
	Type     string
	Path     string
	Depth    int
	Outcome  Outcome
	Guard    string
	Message  string
	Duration time.Duration
}

// Recorder receives every event of a run, in traversal order.
type Recorder interface {
	Record(ev Event)
}

// Result counts what a run did.
type Result struct {
	Roots      int
	Loaded     int
	LoadFailed int
	Dangling   int
	Memoized   int
	Blocked    int
}

// Failures returns the number of failed references, roots included.
func (r Result) Failures() int { return r.LoadFailed + r.Dangling }

// Walker validates asset graphs. A Walker owns its visited registry, so
// one instance corresponds to one run; it is not safe for concurrent use.
type Walker struct {
	cfg      Config
	provider Provider
	loader   Loader
	guards   Guards
	visited  *Visited
	recorder Recorder
	log      *slog.Logger
	unknown  map[string]bool
	result   Result
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) { w.log = l }
}

// WithRecorder sends every event to r.
func WithRecorder(r Recorder) Option {
	return func(w *Walker) { w.recorder = r }
}

func New(cfg Config, provider Provider, loader Loader, opts ...Option) *Walker {
	w := &Walker{
		cfg:      cfg,
		provider: provider,
		loader:   loader,
		guards:   DefaultGuards(cfg),
		visited:  NewVisited(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		unknown:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Result returns the counters accumulated so far.
func (w *Walker) Result() Result { return w.result }

// Visited returns the registry of assets validated so far.
func (w *Walker) Visited() *Visited { return w.visited }

func (w *Walker) record(ev Event) {
	if w.recorder != nil {
		w.recorder.Record(ev)
	}
}
