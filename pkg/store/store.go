// Package store is the persistent-state layer (C10): a single embedded
// relational database with WAL enabled, holding files, classifications,
// cover pages, similarity groups, rules, custom extensions/categories, and
// the apply/undo audit trail. The similarity rebuild, a rule delete with
// its re-parenting, and each scan stage's commit batch run inside one
// *sql.Tx. An apply or undo pass is not one transaction: the batch row,
// its final counts, and undo's per-file log updates are separate writes.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
)

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates the data directory if needed, opens the sqlite file with
// WAL journaling, and ensures the schema exists.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite tolerates exactly one writer; keep the pool small so writer
	// serialization happens inside sqlite rather than producing
	// "database is locked" errors under our own concurrent callers.
	db.SetMaxOpenConns(4)

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	filename TEXT NOT NULL,
	extension TEXT,
	created_at DATETIME,
	modified_at DATETIME,
	size INTEGER,
	extracted_text_summary TEXT
);

CREATE TABLE IF NOT EXISTS classifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL REFERENCES files(id),
	scan_id TEXT NOT NULL,
	category TEXT,
	tag TEXT,
	tier_used INTEGER NOT NULL,
	confidence_score REAL NOT NULL,
	is_manual INTEGER NOT NULL DEFAULT 0,
	classified_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classifications_file_scan ON classifications(file_id, scan_id);
CREATE INDEX IF NOT EXISTS idx_classifications_manual ON classifications(file_id, is_manual);

CREATE TABLE IF NOT EXISTS cover_pages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL UNIQUE REFERENCES files(id),
	cover_text TEXT,
	embedding TEXT,
	detected_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cover_similarity_groups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id TEXT NOT NULL,
	file_id INTEGER NOT NULL REFERENCES files(id),
	similarity_score REAL NOT NULL,
	auto_tag TEXT
);
CREATE INDEX IF NOT EXISTS idx_similarity_group ON cover_similarity_groups(group_id);

CREATE TABLE IF NOT EXISTS rules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	priority INTEGER NOT NULL,
	type TEXT NOT NULL,
	value TEXT NOT NULL,
	folder_name TEXT NOT NULL,
	parent_id INTEGER REFERENCES rules(id),
	UNIQUE(type, value)
);

CREATE TABLE IF NOT EXISTS custom_extensions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	extension TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS custom_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	keywords_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS action_batches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action_log_id TEXT NOT NULL UNIQUE,
	folder_path TEXT NOT NULL,
	scan_id TEXT NOT NULL,
	moved INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	conflict_resolution TEXT NOT NULL,
	executed_at DATETIME NOT NULL,
	is_undone INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS action_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action_log_id TEXT NOT NULL,
	action_type TEXT NOT NULL,
	source_path TEXT NOT NULL,
	destination_path TEXT,
	executed_at DATETIME NOT NULL,
	is_undone INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_action_logs_batch ON action_logs(action_log_id);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying handle for packages (scan, apply) that need
// to compose several store calls inside one transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}
