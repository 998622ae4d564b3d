package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// JournalEntry is one applied change.
type JournalEntry struct {
	ID      string         `json:"id"`
	At      time.Time      `json:"at"`
	Op      string         `json:"op"`
	TaskIDs []string       `json:"taskIds"`
	Payload map[string]any `json:"payload,omitempty"`
}

type journalRow struct {
	ID          string `db:"entry_id"`
	AtUnixMs    int64  `db:"at_unixms"`
	Op          string `db:"op"`
	TaskIDsJSON string `db:"task_ids_json"`
	PayloadJSON string `db:"payload_json"`
}

// Journal is an append-only SQLite log of writes made through the vault.
type Journal struct {
	db  *sqlx.DB
	now func() time.Time
}

// JournalPath is where the journal lives for a config dir.
func JournalPath(configDir string) string {
	return filepath.Join(configDir, "journal.sqlite")
}

// OpenJournal opens (or creates) the journal at path. ":memory:" gives a
// private in-memory journal.
func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal %s: %w", p, err)
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS journal (
			entry_id TEXT PRIMARY KEY,
			at_unixms INTEGER NOT NULL,
			op TEXT NOT NULL,
			task_ids_json TEXT NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS journal_at ON journal(at_unixms);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrating journal: %w", err)
		}
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Record appends an entry. It satisfies Recorder.
func (j *Journal) Record(ctx context.Context, op string, ids []string, payload map[string]any) error {
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling journal payload: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO journal (entry_id, at_unixms, op, task_ids_json, payload_json)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), j.now().UnixMilli(), op, string(idsJSON), string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("appending journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []journalRow
	err := j.db.SelectContext(ctx, &rows, `
		SELECT entry_id, at_unixms, op, task_ids_json, payload_json
		FROM journal
		ORDER BY at_unixms DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	out := make([]JournalEntry, 0, len(rows))
	for _, r := range rows {
		e := JournalEntry{ID: r.ID, At: time.UnixMilli(r.AtUnixMs), Op: r.Op}
		if err := json.Unmarshal([]byte(r.TaskIDsJSON), &e.TaskIDs); err != nil {
			return nil, fmt.Errorf("unmarshaling task ids of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.PayloadJSON), &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling payload of %s: %w", r.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}
