package report

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/agentic-research/assetwalk/internal/asset"
	"github.com/agentic-research/assetwalk/internal/walk"
	_ "modernc.org/sqlite"
)

// ErrNoRuns is returned when a report database holds no run.
var ErrNoRuns = errors.New("report has no runs")

// Run is one row of the runs table.
type Run struct {
	ID          int64
	StartedAt   time.Time
	LimitTypes  string
	LimitNumber int
	Result      walk.Result
	Finished    bool
	Failed      bool
}

func openReport(dbPath string) (*sql.DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	return db, nil
}

// LatestRun returns the most recent run, or the run with id when id > 0.
func LatestRun(dbPath string, id int64) (*Run, error) {
	db, err := openReport(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	query := `SELECT id, started_at, limit_types, limit_number, roots, loaded, load_failed,
		dangling, memoized, blocked, failed FROM runs`
	var args []any
	if id > 0 {
		query += ` WHERE id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY id DESC LIMIT 1`

	var r Run
	var started int64
	var failed sql.NullBool
	err = db.QueryRow(query, args...).Scan(&r.ID, &started, &r.LimitTypes, &r.LimitNumber,
		&r.Result.Roots, &r.Result.Loaded, &r.Result.LoadFailed, &r.Result.Dangling,
		&r.Result.Memoized, &r.Result.Blocked, &failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	r.StartedAt = time.Unix(0, started)
	r.Finished = failed.Valid
	r.Failed = failed.Bool
	return &r, nil
}

// StreamEvents calls fn for each event of a run in recorded order. When
// outcomes is non-empty only those outcomes are streamed.
func StreamEvents(dbPath string, runID int64, outcomes []walk.Outcome, fn func(ev walk.Event) error) error {
	db, err := openReport(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT asset, type, path, depth, outcome, guard, message, duration_ns
		FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keep := make(map[walk.Outcome]bool, len(outcomes))
	for _, o := range outcomes {
		keep[o] = true
	}
	for rows.Next() {
		var id, path, outcome string
		var typ, guard, message sql.NullString
		var depth int
		var duration int64
		if err := rows.Scan(&id, &typ, &path, &depth, &outcome, &guard, &message, &duration); err != nil {
			return fmt.Errorf("scan event: %w", err)
		}
		ev := walk.Event{
			ID:       asset.Identifier(id),
			Type:     typ.String,
			Path:     path,
			Depth:    depth,
			Outcome:  walk.Outcome(outcome),
			Guard:    guard.String,
			Message:  message.String,
			Duration: time.Duration(duration),
		}
		if len(keep) > 0 && !keep[ev.Outcome] {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return rows.Err()
}
