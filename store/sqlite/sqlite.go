/*
Package sqlite provides SQLite-backed persistence for clients and
quotation snapshots.

QUOTES ARE IMMUTABLE:
  A saved quotation is a frozen snapshot of what the buyer was shown.
  There is no UPDATE path; a revised quotation is a new row. This keeps
  the record auditable: the document a client received can always be
  reproduced exactly.

SNAPSHOT STORAGE:
  The plan rows, pricing and add-ons are stored as one JSON blob. The
  store does not interpret it; the quote package owns the schema.

WAL MODE:
  SQLite is opened with WAL for better read concurrency and crash
  recovery. Use ":memory:" for tests.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/quotation-engine/quote"
)

// Store implements client and quote persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		document_id TEXT,
		created_at TEXT NOT NULL
	);

	-- Immutable quotation snapshots. No UPDATE path by design.
	CREATE TABLE IF NOT EXISTS quotes (
		serial_id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id TEXT,
		advisor_id INTEGER,
		unit_id TEXT,
		snapshot TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (client_id) REFERENCES clients(id)
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_client ON quotes(client_id);
	CREATE INDEX IF NOT EXISTS idx_quotes_created ON quotes(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CLIENTS
// =============================================================================

// Client is a buyer record referenced by quotations.
type Client struct {
	ID         string
	FullName   string
	Email      string
	Phone      string
	DocumentID string
	CreatedAt  time.Time
}

// SaveClient inserts or replaces a client record.
func (s *Store) SaveClient(ctx context.Context, c Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO clients (id, full_name, email, phone, document_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.FullName, c.Email, c.Phone, c.DocumentID, c.CreatedAt.Format(time.RFC3339))
	return err
}

// GetClient returns a client by id, or nil when absent.
func (s *Store) GetClient(ctx context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, document_id, created_at
		FROM clients WHERE id = ?`, id)

	var c Client
	var createdAt string
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.DocumentID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// ListClients returns all clients ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, email, phone, document_id, created_at
		FROM clients ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		var createdAt string
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.DocumentID, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// =============================================================================
// QUOTES
// =============================================================================

// QuoteRecord is a persisted quotation row.
type QuoteRecord struct {
	SerialID  int64
	ClientID  string
	AdvisorID int64
	UnitID    string
	Snapshot  quote.Snapshot
	CreatedAt time.Time
}

// SaveQuote persists a finalized snapshot and returns its serial id.
func (s *Store) SaveQuote(ctx context.Context, snap *quote.Snapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (client_id, advisor_id, unit_id, snapshot, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		snap.ClientID, snap.AdvisorID, snap.UnitID, string(blob),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetQuote returns a quote by serial id, or nil when absent.
func (s *Store) GetQuote(ctx context.Context, serialID int64) (*QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT serial_id, client_id, advisor_id, unit_id, snapshot, created_at
		FROM quotes WHERE serial_id = ?`, serialID)

	rec, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListQuotes returns all quotes, most recent first.
func (s *Store) ListQuotes(ctx context.Context) ([]QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT serial_id, client_id, advisor_id, unit_id, snapshot, created_at
		FROM quotes ORDER BY serial_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuoteRecord
	for rows.Next() {
		rec, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (*QuoteRecord, error) {
	var rec QuoteRecord
	var blob, createdAt string
	if err := row.Scan(&rec.SerialID, &rec.ClientID, &rec.AdvisorID, &rec.UnitID, &blob, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("corrupt snapshot for quote %d: %w", rec.SerialID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}
