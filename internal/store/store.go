package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the bridge's audit trail and the registry of sessions
// created through it.
type Store interface {
	Initialize() error
	Close() error

	LogAudit(entry AuditEntry) error
	RecentAudit(limit int) ([]AuditEntry, error)

	RecordSession(kasmID, image string) error
	MarkDestroyed(kasmID string) error
	ListSessions(includeDestroyed bool) ([]SessionRecord, error)
}

// AuditEntry is one audited tool invocation or security decision.
type AuditEntry struct {
	ID        int64
	Timestamp time.Time
	Tool      string
	KasmID    string
	Argument  string
	Allowed   bool
	Violation string
	Message   string
}

// SessionRecord is a session created through this bridge.
type SessionRecord struct {
	KasmID      string
	Image       string
	CreatedAt   time.Time
	DestroyedAt sql.NullTime
}

// SQLiteStore implements Store on SQLite
type SQLiteStore struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and returns a
// connected store.
func Open(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Initialize sets up database tables
func (s *SQLiteStore) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		tool TEXT NOT NULL,
		kasm_id TEXT NOT NULL,
		argument TEXT NOT NULL,
		allowed BOOLEAN NOT NULL,
		violation TEXT,
		message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_kasm ON audit_log(kasm_id);

	CREATE TABLE IF NOT EXISTS sessions (
		kasm_id TEXT PRIMARY KEY,
		image TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		destroyed_at DATETIME
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LogAudit appends an audit entry.
func (s *SQLiteStore) LogAudit(entry AuditEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO audit_log (timestamp, tool, kasm_id, argument, allowed, violation, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts, entry.Tool, entry.KasmID, entry.Argument, entry.Allowed, entry.Violation, entry.Message)
	return err
}

// RecentAudit returns the most recent audit entries, newest first.
func (s *SQLiteStore) RecentAudit(limit int) ([]AuditEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, tool, kasm_id, argument, allowed, violation, message
		FROM audit_log
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Tool, &e.KasmID, &e.Argument, &e.Allowed, &e.Violation, &e.Message); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordSession registers a session created through the bridge.
func (s *SQLiteStore) RecordSession(kasmID, image string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions (kasm_id, image, created_at, destroyed_at)
		VALUES (?, ?, ?, NULL)`,
		kasmID, image, time.Now())
	return err
}

// MarkDestroyed stamps a session as destroyed. Unknown sessions are a no-op;
// the bridge may be asked to destroy sessions it did not create.
func (s *SQLiteStore) MarkDestroyed(kasmID string) error {
	_, err := s.db.Exec(`UPDATE sessions SET destroyed_at = ? WHERE kasm_id = ?`, time.Now(), kasmID)
	return err
}

// ListSessions returns sessions created through the bridge, newest first.
func (s *SQLiteStore) ListSessions(includeDestroyed bool) ([]SessionRecord, error) {
	query := `SELECT kasm_id, image, created_at, destroyed_at FROM sessions`
	if !includeDestroyed {
		query += ` WHERE destroyed_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.KasmID, &r.Image, &r.CreatedAt, &r.DestroyedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
