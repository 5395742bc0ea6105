// Package journal records every status transition the user requested, with
// the server's answer, in a local SQLite file.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Journal struct {
	readDB  *sql.DB
	writeDB *sql.DB
	now     func() time.Time
}

func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	j := &Journal{writeDB: writeDB, now: time.Now}
	if err := j.init(); err != nil {
		j.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists; mode=ro cannot create the file.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	j.readDB = readDB
	return j, nil
}

func (j *Journal) init() error {
	_, err := j.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS transitions (
			id           TEXT PRIMARY KEY,
			entity       TEXT NOT NULL,
			item_id      TEXT NOT NULL,
			status       TEXT NOT NULL,
			outcome      TEXT NOT NULL,
			error        TEXT NOT NULL DEFAULT '',
			requested_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_requested ON transitions(requested_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transitions_item ON transitions(entity, item_id);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	var errs []error
	if j.readDB != nil {
		errs = append(errs, j.readDB.Close())
	}
	if j.writeDB != nil {
		errs = append(errs, j.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Record stores e, filling in the id and timestamp when they are empty.
func (j *Journal) Record(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RequestedAt.IsZero() {
		e.RequestedAt = j.now().UTC()
	}
	_, err := j.writeDB.Exec(`
		INSERT INTO transitions (id, entity, item_id, status, outcome, error, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Entity, e.ItemID, e.Status, e.Outcome, e.Error, e.RequestedAt)
	if err != nil {
		return e, fmt.Errorf("recording transition %s/%s: %w", e.Entity, e.ItemID, err)
	}
	return e, nil
}

// Track wraps a transition function so every call is recorded. Recording
// failures are reported through onErr and never change the call's result.
func (j *Journal) Track(entity string, fn func(ctx context.Context, id, status string) error, onErr func(error)) func(ctx context.Context, id, status string) error {
	return func(ctx context.Context, id, status string) error {
		callErr := fn(ctx, id, status)
		e := Entry{Entity: entity, ItemID: id, Status: status, Outcome: OutcomeAccepted}
		if callErr != nil {
			e.Outcome = OutcomeRejected
			e.Error = callErr.Error()
		}
		if _, err := j.Record(e); err != nil && onErr != nil {
			onErr(err)
		}
		return callErr
	}
}

func (j *Journal) Recent(opts QueryOpts) ([]Entry, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Entity != "" {
		where = append(where, "entity = ?")
		args = append(args, opts.Entity)
	}
	if opts.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, opts.Outcome)
	}
	if !opts.Since.IsZero() {
		where = append(where, "requested_at >= ?")
		args = append(args, opts.Since.UTC())
	}

	query := "SELECT id, entity, item_id, status, outcome, error, requested_at FROM transitions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY requested_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := j.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Entity, &e.ItemID, &e.Status, &e.Outcome, &e.Error, &e.RequestedAt); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than retention and reclaims disk space.
func (j *Journal) Prune(retention time.Duration) (int64, error) {
	cutoff := j.now().Add(-retention).UTC()
	res, err := j.writeDB.Exec("DELETE FROM transitions WHERE requested_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning transitions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		if _, err := j.writeDB.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

// Stats returns the entry count and the size of the database file.
func (j *Journal) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := j.readDB.QueryRow("SELECT COUNT(*) FROM transitions").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting transitions: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}
