package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"opnskin/internal/steam/inventory"
)

// SQLite implements Store on a single SQLite file. WAL mode keeps concurrent
// reads cheap; writes serialize through one connection.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLite opens (and if needed creates) the cache database at path.
func NewSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite supports a single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func createSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS inventory_cache (
		steam_id   TEXT NOT NULL,
		game_id    TEXT NOT NULL,
		currency   TEXT NOT NULL,
		items_json TEXT NOT NULL,
		raw_json   TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (steam_id, game_id, currency)
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_cache_updated ON inventory_cache(updated_at);
	`
	_, err := db.Exec(query)
	return err
}

// Read returns the cached row for the key triple, or nil when none exists.
func (s *SQLite) Read(ctx context.Context, steamID, gameID, currency string) (*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const query = `SELECT items_json, raw_json, updated_at FROM inventory_cache
		WHERE steam_id = ? AND game_id = ? AND currency = ?`

	var itemsJSON, rawJSON string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, query, steamID, gameID, currency).Scan(&itemsJSON, &rawJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}

	row := &Row{SteamID: steamID, GameID: gameID, Currency: currency, UpdatedAt: updatedAt}
	if err := json.Unmarshal([]byte(itemsJSON), &row.Items); err != nil {
		return nil, fmt.Errorf("store: decode items: %w", err)
	}
	row.Raw = json.RawMessage(rawJSON)
	return row, nil
}

// Write replaces the row for the key triple in one statement. The upsert is
// atomic: a crash can never leave the key without a row the way a
// delete-then-insert would.
func (s *SQLite) Write(ctx context.Context, steamID, gameID, currency string, items []inventory.Item, raw json.RawMessage) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("store: encode items: %w", err)
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	const query = `
		INSERT INTO inventory_cache (steam_id, game_id, currency, items_json, raw_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(steam_id, game_id, currency) DO UPDATE SET
			items_json = excluded.items_json,
			raw_json   = excluded.raw_json,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, steamID, gameID, currency, string(itemsJSON), string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	return nil
}

// Prune deletes rows not refreshed within keep. Returns rows removed.
func (s *SQLite) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM inventory_cache WHERE updated_at < ?`, time.Now().UTC().Add(-keep))
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error { return s.db.Close() }
