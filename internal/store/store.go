// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urben88/MindFlex/internal/model"
	"github.com/urben88/MindFlex/internal/progress"

	_ "modernc.org/sqlite" // SQLite driver.
)

var _ progress.Backend = (*Store)(nil)

// ProgressKey is the record key of the progress snapshot.
const ProgressKey = "mindflex.progress"

// Store wraps SQLite access for progress data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			activity TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			max_level INTEGER NOT NULL,
			duration_s REAL NOT NULL,
			played_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_activity_played ON results(activity, played_at_ms);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadProgress returns the stored snapshot record, or nil if there is none.
func (s *Store) LoadProgress(ctx context.Context) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, ProgressKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return value, nil
}

// SaveProgress replaces the snapshot record and, when appended is set, logs
// the result in the same transaction.
func (s *Store) SaveProgress(ctx context.Context, data []byte, appended *model.Result) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		ProgressKey, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}

	if appended != nil {
		r := appended
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results (session_id, activity, difficulty, score, accuracy, max_level, duration_s, played_at_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.SessionID,
			string(r.ActivityID),
			string(r.Difficulty),
			r.Score,
			r.Accuracy,
			r.MaxLevel,
			r.DurationSeconds,
			r.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to log result: %w", err)
		}
	}

	return tx.Commit()
}

// EraseProgress deletes the snapshot record and the result log atomically.
func (s *Store) EraseProgress(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, ProgressKey); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return err
	}
	return tx.Commit()
}

// ResultFilter narrows ListResults.
type ResultFilter struct {
	Activity model.ActivityID
	Since    *time.Time
	// Last keeps only the most recent results when > 0.
	Last int
}

// ListResults returns logged results, oldest first.
func (s *Store) ListResults(ctx context.Context, f ResultFilter) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Activity != "" {
		clauses = append(clauses, "activity = ?")
		args = append(args, string(f.Activity))
	}
	if f.Since != nil {
		clauses = append(clauses, "played_at_ms >= ?")
		args = append(args, f.Since.UnixMilli())
	}
	limit := ""
	if f.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, f.Last)
	}
	query := fmt.Sprintf(`SELECT session_id, activity, difficulty, score, accuracy, max_level, duration_s, played_at_ms
		FROM (
			SELECT * FROM results
			WHERE %s
			ORDER BY played_at_ms DESC, id DESC
			%s
		)
		ORDER BY played_at_ms ASC, id ASC`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		var r model.Result
		var activity, tier string
		if err := rows.Scan(&r.SessionID, &activity, &tier, &r.Score, &r.Accuracy, &r.MaxLevel, &r.DurationSeconds, &r.Timestamp); err != nil {
			return nil, err
		}
		r.ActivityID = model.ActivityID(activity)
		r.Difficulty = model.Tier(tier)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
