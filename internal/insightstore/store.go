// Package insightstore persists extracted insights in a local SQLite file so
// unchanged documents are not re-read across runs.
package insightstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flarebyte/nebula/internal/insight"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS insights (
	key        TEXT PRIMARY KEY,
	highlights TEXT NOT NULL,
	caption    TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store implements insight.Store on top of SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ insight.Store = (*Store)(nil)

// Open creates the database file and its parent directory when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("insight store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open insight store: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("insight store pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("insight store schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, key string) (*insight.Insight, bool, error) {
	var highlights, caption string
	err := s.db.QueryRowContext(ctx,
		`SELECT highlights, caption FROM insights WHERE key = ?`, key).Scan(&highlights, &caption)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var hl []string
	if err := json.Unmarshal([]byte(highlights), &hl); err != nil {
		return nil, false, fmt.Errorf("decode highlights for %s: %w", key, err)
	}
	return insight.New(hl, caption), true, nil
}

func (s *Store) Put(ctx context.Context, key string, in *insight.Insight) error {
	if in == nil {
		in = insight.New(nil, "")
	}
	hl, err := json.Marshal(in.Highlights)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO insights (key, highlights, caption, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET highlights = excluded.highlights,
		   caption = excluded.caption, updated_at = excluded.updated_at`,
		key, string(hl), in.Caption, s.now().UTC().Format(stampLayout))
	return err
}

// Prune deletes entries not refreshed since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM insights WHERE updated_at < ?`, before.UTC().Format(stampLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
