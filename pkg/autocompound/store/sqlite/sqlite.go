package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; queue in the pool rather than fail with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL DEFAULT '',
	config TEXT NOT NULL,
	compounds TEXT NOT NULL,
	thresholds TEXT NOT NULL,
	drops TEXT NOT NULL,
	trace TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint, started_at DESC);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

const runColumns = `id, started_at, source, fingerprint, config, compounds, thresholds, drops, trace`

// SaveRun inserts a run; an existing ID is reported as a duplicate.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.RunRecord) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without ID", internalerr.ErrInvalidInput)
	}

	cfgJSON, err := json.Marshal(r.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	compoundsJSON, err := json.Marshal(nonNil(r.Compounds))
	if err != nil {
		return fmt.Errorf("encode compounds: %w", err)
	}
	thresholdsJSON, err := json.Marshal(r.Thresholds)
	if err != nil {
		return fmt.Errorf("encode thresholds: %w", err)
	}
	dropsJSON, err := json.Marshal(r.Drops)
	if err != nil {
		return fmt.Errorf("encode drops: %w", err)
	}
	traceJSON, err := json.Marshal(r.Trace)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO runs (`+runColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`,
		r.ID, r.StartedAt.UnixNano(), r.Source, r.Fingerprint,
		string(cfgJSON), string(compoundsJSON), string(thresholdsJSON), string(dropsJSON), string(traceJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: run %s", internalerr.ErrDuplicate, r.ID)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunRecord{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	return r, err
}

// ListRuns returns runs newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+runColumns+` FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestByFingerprint returns the newest run over a corpus.
func (s *sqliteStore) LatestByFingerprint(ctx context.Context, fingerprint string) (store.RunRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+runColumns+` FROM runs
WHERE fingerprint = ?
ORDER BY started_at DESC, id DESC
LIMIT 1`, fingerprint)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunRecord{}, false, nil
	}
	if err != nil {
		return store.RunRecord{}, false, err
	}
	return r, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.RunRecord, error) {
	var (
		r                                 store.RunRecord
		startedAt                         int64
		cfgJSON, compoundsJSON, traceJSON string
		thresholdsJSON, dropsJSON         string
	)
	if err := sc.Scan(&r.ID, &startedAt, &r.Source, &r.Fingerprint,
		&cfgJSON, &compoundsJSON, &thresholdsJSON, &dropsJSON, &traceJSON); err != nil {
		return store.RunRecord{}, err
	}
	r.StartedAt = time.Unix(0, startedAt).UTC()

	for _, field := range []struct {
		name string
		data string
		dst  any
	}{
		{"config", cfgJSON, &r.Config},
		{"compounds", compoundsJSON, &r.Compounds},
		{"thresholds", thresholdsJSON, &r.Thresholds},
		{"drops", dropsJSON, &r.Drops},
		{"trace", traceJSON, &r.Trace},
	} {
		if err := json.Unmarshal([]byte(field.data), field.dst); err != nil {
			return store.RunRecord{}, fmt.Errorf("decode run %s %s: %w", r.ID, field.name, err)
		}
	}
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
