package report

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/agentic-research/assetwalk/internal/walk"
	_ "modernc.org/sqlite"
)

// Writer persists the events of one validation run into SQLite.
// It implements walk.Recorder.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtEvent *sql.Stmt
	runID     int64
	seq       int
	batchSize int
	count     int
	err       error
	mu        sync.Mutex
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	limit_types TEXT NOT NULL DEFAULT '',
	limit_number INTEGER NOT NULL DEFAULT 0,
	roots INTEGER NOT NULL DEFAULT 0,
	loaded INTEGER NOT NULL DEFAULT 0,
	load_failed INTEGER NOT NULL DEFAULT 0,
	dangling INTEGER NOT NULL DEFAULT 0,
	memoized INTEGER NOT NULL DEFAULT 0,
	blocked INTEGER NOT NULL DEFAULT 0,
	failed INTEGER
);

CREATE TABLE IF NOT EXISTS events (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	seq INTEGER NOT NULL,
	asset TEXT NOT NULL,
	type TEXT,
	path TEXT NOT NULL,
	depth INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	guard TEXT,
	message TEXT,
	duration_ns INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, seq)
) WITHOUT ROWID;
`

// NewWriter opens (or creates) the report database at dbPath and starts a
// new run row for cfg.
func NewWriter(dbPath string, cfg walk.Config) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	res, err := db.Exec(`INSERT INTO runs (started_at, limit_types, limit_number) VALUES (?, ?, ?)`,
		time.Now().UnixNano(), strings.Join(cfg.LimitTypes, ","), cfg.LimitNumber)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run id: %w", err)
	}

	w := &Writer{db: db, runID: runID, batchSize: 5000}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// RunID identifies the run row this writer fills.
func (w *Writer) RunID() int64 { return w.runID }

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtEvent, err = w.tx.Prepare(`
		INSERT INTO events (run_id, seq, asset, type, path, depth, outcome, guard, message, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

func (w *Writer) commitTx() error {
	if w.stmtEvent != nil {
		_ = w.stmtEvent.Close()
		w.stmtEvent = nil
	}
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	return err
}

// Record stores ev. Write errors are kept and returned by Finish; after
// the first one, further events are dropped.
func (w *Writer) Record(ev walk.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return
	}
	if w.tx == nil {
		if err := w.beginTx(); err != nil {
			w.err = fmt.Errorf("begin events: %w", err)
			return
		}
	}
	w.seq++
	_, err := w.stmtEvent.Exec(
		w.runID,
		w.seq,
		ev.ID.String(),
		nullable(ev.Type),
		ev.Path,
		ev.Depth,
		string(ev.Outcome),
		nullable(ev.Guard),
		nullable(ev.Message),
		ev.Duration.Nanoseconds(),
	)
	if err != nil {
		w.err = fmt.Errorf("insert event %d: %w", w.seq, err)
		log.Printf("ERROR report: %v", w.err)
		return
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			w.err = fmt.Errorf("commit events: %w", err)
			return
		}
		if err := w.beginTx(); err != nil {
			w.err = fmt.Errorf("begin events: %w", err)
			return
		}
		w.count = 0
	}
}

// Finish commits pending events and stores the counters of the run.
func (w *Writer) Finish(res walk.Result, failed bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil && w.err == nil {
		w.err = fmt.Errorf("commit events: %w", err)
	}
	_, err := w.db.Exec(`
		UPDATE runs SET finished_at = ?, roots = ?, loaded = ?, load_failed = ?,
			dangling = ?, memoized = ?, blocked = ?, failed = ?
		WHERE id = ?
	`, time.Now().UnixNano(), res.Roots, res.Loaded, res.LoadFailed,
		res.Dangling, res.Memoized, res.Blocked, failed, w.runID)
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("update run %d: %w", w.runID, err)
	}
	return w.err
}

// Close commits anything pending and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	if _, err := w.db.Exec(`CREATE INDEX IF NOT EXISTS idx_events_outcome ON events(run_id, outcome)`); err != nil {
		log.Printf("WARN report: index creation failed: %v", err)
	}
	return w.db.Close()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ walk.Recorder = (*Writer)(nil)
