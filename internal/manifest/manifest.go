// Package manifest records generated test cases in a SQLite database so
// that interrupted runs can resume where they stopped and operators can
// audit what a corpus contains.
package manifest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SchemaVersion is the current manifest schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS cases (
    grp        TEXT    NOT NULL,
    idx        INTEGER NOT NULL,
    path       TEXT    NOT NULL,
    seed       INTEGER NOT NULL,
    sheets     INTEGER NOT NULL,
    queries    INTEGER NOT NULL,
    sha256     TEXT    NOT NULL,
    created_at TEXT    NOT NULL,
    PRIMARY KEY (grp, idx)
);

CREATE TABLE IF NOT EXISTS schema_meta (
    version INTEGER NOT NULL
);
`

// Case is one recorded test case.
type Case struct {
	Group     string
	Index     int
	Path      string
	Seed      uint64
	Sheets    int
	Queries   int
	SHA256    string
	CreatedAt time.Time
}

// GroupStat summarizes one group's recorded cases.
type GroupStat struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// Store is a SQLite-backed manifest. It is safe for concurrent use
// within one process; SQLite itself is kept to a single writer.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// Open opens (or creates) the manifest database at dir/manifest.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	dbPath := filepath.Join(dir, "manifest.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_meta`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, SchemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// Record upserts a case. Re-recording the same (group, index) slot, as
// happens when a slot is regenerated, replaces the previous row.
func (s *Store) Record(ctx context.Context, c Case) error {
	if c.Group == "" {
		return fmt.Errorf("case group is required")
	}
	if c.Index < 0 {
		return fmt.Errorf("case index must be non-negative, got %d", c.Index)
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (grp, idx, path, seed, sheets, queries, sha256, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (grp, idx) DO UPDATE SET
			path = excluded.path,
			seed = excluded.seed,
			sheets = excluded.sheets,
			queries = excluded.queries,
			sha256 = excluded.sha256,
			created_at = excluded.created_at`,
		c.Group, c.Index, c.Path, int64(c.Seed), c.Sheets, c.Queries, c.SHA256,
		createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record case %s/%d: %w", c.Group, c.Index, err)
	}
	return nil
}

// Count returns how many cases are recorded for group.
func (s *Store) Count(ctx context.Context, group string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cases WHERE grp = ?`, group).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cases for %s: %w", group, err)
	}
	return count, nil
}

// List returns the recorded cases for group, ordered by index.
func (s *Store) List(ctx context.Context, group string) ([]Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT grp, idx, path, seed, sheets, queries, sha256, created_at
		FROM cases WHERE grp = ? ORDER BY idx`, group)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases for %s: %w", group, err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		var c Case
		var seed int64
		var createdAt string
		if err := rows.Scan(&c.Group, &c.Index, &c.Path, &seed, &c.Sheets,
			&c.Queries, &c.SHA256, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		c.Seed = uint64(seed)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			c.CreatedAt = ts
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// GroupStats returns per-group case counts, ordered by group name.
func (s *Store) GroupStats(ctx context.Context) ([]GroupStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT grp, COUNT(*) FROM cases GROUP BY grp ORDER BY grp`)
	if err != nil {
		return nil, fmt.Errorf("failed to query group stats: %w", err)
	}
	defer rows.Close()

	var stats []GroupStat
	for rows.Next() {
		var gs GroupStat
		if err := rows.Scan(&gs.Group, &gs.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group stat: %w", err)
		}
		stats = append(stats, gs)
	}
	return stats, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// HashFile returns the hex SHA-256 of the file at path, for recording
// alongside a generated case.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
