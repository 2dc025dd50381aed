package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Run is one analysed program.
type Run struct {
	ID           string
	Path         string
	OK           bool
	ErrorKind    string
	ErrorMessage string
	ErrorLine    int
	SymbolCount  int
	Duration     time.Duration
	CheckedAt    time.Time
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores run, assigning an ID and timestamp when they are unset.
func (s *Store) Save(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CheckedAt.IsZero() {
		run.CheckedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
INSERT INTO runs (id, path, ok, error_kind, error_message, error_line, symbol_count, duration_ns, checked_at_utc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Path,
		boolToInt(run.OK),
		run.ErrorKind,
		run.ErrorMessage,
		run.ErrorLine,
		run.SymbolCount,
		int64(run.Duration),
		run.CheckedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return run, fmt.Errorf("save run for %q: %w", run.Path, err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
SELECT id, path, ok, error_kind, error_message, error_line, symbol_count, duration_ns, checked_at_utc
FROM runs
ORDER BY checked_at_utc DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			ok       int
			duration int64
			ts       string
		)
		if err := rows.Scan(&run.ID, &run.Path, &ok, &run.ErrorKind, &run.ErrorMessage, &run.ErrorLine, &run.SymbolCount, &duration, &ts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.OK = ok != 0
		run.Duration = time.Duration(duration)
		run.CheckedAt, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", ts, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
