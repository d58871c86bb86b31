package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Record is one executed coin operation. Dry runs are not journaled.
type Record struct {
	RecordID  string `json:"record_id"`
	Operation string `json:"operation"`
	CoinType  string `json:"coin_type"`
	Network   string `json:"network"`
	Digest    string `json:"digest,omitempty"`
	GasUsed   string `json:"gas_used,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Store persists operation records across CLI invocations. A file lock
// serializes writers since several processes may share one journal.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS operations (
			record_id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			coin_type TEXT NOT NULL,
			success INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_operations_created ON operations(operation, created_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init journal schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Append(rec Record) error {
	if strings.TrimSpace(rec.RecordID) == "" {
		return fmt.Errorf("append record: missing record id")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock journal: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock journal: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	createdUnix := time.Now().UTC().Unix()
	if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
		createdUnix = t.UTC().Unix()
	}
	success := 0
	if rec.Success {
		success = 1
	}
	_, err = s.db.Exec(`
		INSERT INTO operations (record_id, operation, coin_type, success, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			operation=excluded.operation,
			coin_type=excluded.coin_type,
			success=excluded.success,
			payload=excluded.payload
	`, rec.RecordID, rec.Operation, rec.CoinType, success, createdUnix, payload)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (s *Store) List(operation string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(operation) == "" {
		rows, err = s.db.Query("SELECT payload FROM operations ORDER BY created_at DESC LIMIT ?", limit)
	} else {
		rows, err = s.db.Query("SELECT payload FROM operations WHERE operation = ? ORDER BY created_at DESC LIMIT ?", operation, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode record payload: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return records, nil
}
