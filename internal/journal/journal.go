// Package journal records what each migration run did. It is an append-only
// audit trail: nothing in gxcopy reads it back to decide what to do.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lherron/gxcopy/internal/db"
)

// Kind is the type of a recorded action
type Kind string

const (
	KindCreateFolder Kind = "create_folder"
	KindMove         Kind = "move"
	KindMoveFailed   Kind = "move_failed"
	KindCopy         Kind = "copy"
	KindMultifile    Kind = "copy_multifile"
)

// Run status values
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// fixed width so timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Run is one migrate invocation
type Run struct {
	ID             string     `json:"id" yaml:"id"`
	SourceFolderID string     `json:"source_folder_id" yaml:"source_folder_id"`
	DestinationID  string     `json:"destination_id,omitempty" yaml:"destination_id,omitempty"`
	DryRun         bool       `json:"dry_run" yaml:"dry_run"`
	Status         string     `json:"status" yaml:"status"`
	Error          string     `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Action is one placement or folder creation performed during a run.
// Identity is empty when the admin identity performed it.
type Action struct {
	ID                  int64     `json:"id" yaml:"id"`
	RunID               string    `json:"run_id" yaml:"run_id"`
	Kind                Kind      `json:"kind" yaml:"kind"`
	SourceID            string    `json:"source_id" yaml:"source_id"`
	SourceName          string    `json:"source_name" yaml:"source_name"`
	DestinationParentID string    `json:"destination_parent_id" yaml:"destination_parent_id"`
	ResultID            string    `json:"result_id,omitempty" yaml:"result_id,omitempty"`
	Identity            string    `json:"identity,omitempty" yaml:"identity,omitempty"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
}

// Recorder receives actions as they happen
type Recorder interface {
	Record(ctx context.Context, a Action) error
}

// Nop discards every action
type Nop struct{}

func (Nop) Record(context.Context, Action) error { return nil }

// Journal stores runs and actions in sqlite
type Journal struct {
	db *db.DB
}

// Open opens (creating if needed) the journal at path and brings its schema
// up to date.
func Open(path string) (*Journal, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return &Journal{db: database}, nil
}

// Path returns the journal file path
func (j *Journal) Path() string {
	return j.db.Path()
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}

// StartRun inserts a running run and returns its id
func (j *Journal) StartRun(ctx context.Context, sourceFolderID string, dryRun bool) (string, error) {
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_folder_id, dry_run, started_at)
		VALUES (?, ?, ?, ?)
	`, id, sourceFolderID, dryRun, formatTime(time.Now()))
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// Record appends an action to its run
func (j *Journal) Record(ctx context.Context, a Action) error {
	if a.RunID == "" {
		return fmt.Errorf("action %s for %s has no run id", a.Kind, a.SourceID)
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO actions (run_id, kind, source_id, source_name, destination_parent_id, result_id, identity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.RunID, string(a.Kind), a.SourceID, a.SourceName, a.DestinationParentID,
		nullString(a.ResultID), nullString(a.Identity), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to record %s of %s: %w", a.Kind, a.SourceID, err)
	}
	return nil
}

// ForRun returns a Recorder that stamps every action with runID
func (j *Journal) ForRun(runID string) Recorder {
	return &runRecorder{journal: j, runID: runID}
}

type runRecorder struct {
	journal *Journal
	runID   string
}

func (r *runRecorder) Record(ctx context.Context, a Action) error {
	a.RunID = r.runID
	return r.journal.Record(ctx, a)
}

// FinishRun marks a run as succeeded, or failed when runErr is non-nil
func (j *Journal) FinishRun(ctx context.Context, runID, destinationID string, runErr error) error {
	status := StatusSucceeded
	var errText sql.NullString
	if runErr != nil {
		status = StatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, destination_id = ?, finished_at = ?
		WHERE id = ?
	`, status, errText, nullString(destinationID), formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// Runs lists the most recent runs, newest first. limit <= 0 means all.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, source_folder_id, destination_id, dry_run, status, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r             Run
			dest, errText sql.NullString
			started       string
			finished      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.SourceFolderID, &dest, &r.DryRun, &r.Status, &errText, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.DestinationID = dest.String
		r.Error = errText.String
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if finished.Valid {
			ft, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			r.FinishedAt = &ft
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Actions lists the actions of a run in the order they were recorded
func (j *Journal) Actions(ctx context.Context, runID string) ([]Action, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, run_id, kind, source_id, source_name, destination_parent_id, result_id, identity, created_at
		FROM actions WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			a                Action
			kind, created    string
			result, identity sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.RunID, &kind, &a.SourceID, &a.SourceName, &a.DestinationParentID, &result, &identity, &created); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		a.Kind = Kind(kind)
		a.ResultID = result.String
		a.Identity = identity.String
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid journal timestamp %q: %w", s, err)
	}
	return t, nil
}
