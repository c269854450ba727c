package report

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentic-research/assetwalk/internal/walk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWriter_RecordsRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := NewWriter(dbPath, walk.Config{LimitTypes: []string{"Level", "World"}, LimitNumber: 2})
	require.NoError(t, err)

	w.Record(walk.Event{ID: "/Game/A", Type: "Node", Outcome: walk.OutcomeLoaded, Duration: 3 * time.Millisecond})
	w.Record(walk.Event{ID: "/Game/B", Path: ">[Node][next]", Depth: 1, Outcome: walk.OutcomeDangling, Message: "asset does not exist"})
	w.Record(walk.Event{ID: "/Game/C", Path: ">[Node][inline]", Outcome: walk.OutcomeBlocked, Guard: "type-exclusion"})

	require.NoError(t, w.Finish(walk.Result{Roots: 1, Loaded: 1, Dangling: 1, Blocked: 1}, true))
	require.NoError(t, w.Close())

	db := openDB(t, dbPath)

	var limitTypes string
	var limitNumber, roots, loaded, dangling, blocked int
	var failed bool
	err = db.QueryRow(`SELECT limit_types, limit_number, roots, loaded, dangling, blocked, failed FROM runs WHERE id = ?`, w.RunID()).
		Scan(&limitTypes, &limitNumber, &roots, &loaded, &dangling, &blocked, &failed)
	require.NoError(t, err)
	assert.Equal(t, "Level,World", limitTypes)
	assert.Equal(t, 2, limitNumber)
	assert.Equal(t, 1, roots)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, dangling)
	assert.Equal(t, 1, blocked)
	assert.True(t, failed)

	rows, err := db.Query(`SELECT asset, path, depth, outcome, guard, message, duration_ns FROM events WHERE run_id = ? ORDER BY seq`, w.RunID())
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	type row struct {
		asset, path, outcome string
		depth                int
		guard, message       sql.NullString
		duration             int64
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.asset, &r.path, &r.depth, &r.outcome, &r.guard, &r.message, &r.duration))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 3)

	assert.Equal(t, "/Game/A", got[0].asset)
	assert.Equal(t, "", got[0].path)
	assert.Equal(t, int64(3*time.Millisecond), got[0].duration)
	assert.False(t, got[0].guard.Valid)

	assert.Equal(t, "dangling", got[1].outcome)
	assert.Equal(t, 1, got[1].depth)
	assert.Equal(t, "asset does not exist", got[1].message.String)

	assert.Equal(t, "blocked", got[2].outcome)
	assert.Equal(t, "type-exclusion", got[2].guard.String)
}

func TestWriter_RunsAccumulate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	for i := 0; i < 2; i++ {
		w, err := NewWriter(dbPath, walk.Config{})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), w.RunID())
		w.Record(walk.Event{ID: "/Game/A", Outcome: walk.OutcomeLoaded})
		require.NoError(t, w.Finish(walk.Result{Roots: 1, Loaded: 1}, false))
		require.NoError(t, w.Close())
	}

	db := openDB(t, dbPath)
	var runs, events int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events))
	assert.Equal(t, 2, runs)
	assert.Equal(t, 2, events)
}

func TestWriter_BatchCommit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := NewWriter(dbPath, walk.Config{})
	require.NoError(t, err)
	w.batchSize = 2
	for i := 0; i < 5; i++ {
		w.Record(walk.Event{ID: "/Game/A", Outcome: walk.OutcomeMemoized})
	}
	require.NoError(t, w.Finish(walk.Result{Roots: 5, Memoized: 5}, false))
	require.NoError(t, w.Close())

	var events int
	require.NoError(t, openDB(t, dbPath).QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events))
	assert.Equal(t, 5, events)
}

func TestNewWriter_BadPath(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "report.db"), walk.Config{})
	require.Error(t, err)
}

func TestStreamEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")

	w, err := NewWriter(dbPath, walk.Config{})
	require.NoError(t, err)
	w.Record(walk.Event{ID: "/Game/A", Type: "Node", Outcome: walk.OutcomeLoaded, Duration: time.Second})
	w.Record(walk.Event{ID: "/Game/B", Path: ">[Node][next]", Depth: 1, Outcome: walk.OutcomeDangling, Message: "asset does not exist"})
	w.Record(walk.Event{ID: "/Game/C", Depth: 1, Outcome: walk.OutcomeLoadFailed, Message: "corrupt"})
	require.NoError(t, w.Finish(walk.Result{Roots: 1, Loaded: 1, Dangling: 1, LoadFailed: 1}, true))
	require.NoError(t, w.Close())

	run, err := LatestRun(dbPath, 0)
	require.NoError(t, err)
	assert.Equal(t, w.RunID(), run.ID)
	assert.True(t, run.Finished)
	assert.True(t, run.Failed)
	assert.Equal(t, 2, run.Result.Failures())

	var all []walk.Event
	require.NoError(t, StreamEvents(dbPath, run.ID, nil, func(ev walk.Event) error {
		all = append(all, ev)
		return nil
	}))
	require.Len(t, all, 3)
	assert.Equal(t, walk.Event{ID: "/Game/A", Type: "Node", Outcome: walk.OutcomeLoaded, Duration: time.Second}, all[0])

	var failures []walk.Event
	require.NoError(t, StreamEvents(dbPath, run.ID, []walk.Outcome{walk.OutcomeDangling, walk.OutcomeLoadFailed}, func(ev walk.Event) error {
		failures = append(failures, ev)
		return nil
	}))
	require.Len(t, failures, 2)
	assert.Equal(t, ">[Node][next]", failures[0].Path)
	assert.Equal(t, "corrupt", failures[1].Message)

	_, err = LatestRun(dbPath, 99)
	assert.ErrorIs(t, err, ErrNoRuns)
	_, err = LatestRun(filepath.Join(t.TempDir(), "none.db"), 0)
	assert.Error(t, err)
}
