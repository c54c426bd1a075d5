// Package remote translates entity collections to and from the remote
// document store, one physical collection per entity kind, keyed by the
// entity id. The store is an embedded libSQL/SQLite database holding
// one JSON document per row.
//
// Upserts merge fields into any existing document (json_patch), so a
// partial-field write never erases fields absent from the payload. This
// single-document merge is distinct from the multi-record reconciliation
// in the merge package.
package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mvaghela/bizbook/internal/model"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DefaultFetchLimit bounds collection reads when the caller passes a
// non-positive limit.
const DefaultFetchLimit = 100

// Gateway wraps the document store connection.
type Gateway struct {
	conn *sql.DB
	path string
}

// Open connects to the document store at the given path, creating the
// database and its collections if needed. An empty path means the
// remote store is not configured and surfaces as ErrUnavailable.
//
// The caller must Close the gateway when done.
func Open(path string) (*Gateway, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no database path configured", ErrUnavailable)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to open database: %w", err))
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, classify(fmt.Errorf("failed to ping database: %w", err))
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	g := &Gateway{conn: conn, path: path}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = g.Close()
		return nil, classify(fmt.Errorf("failed to enable WAL mode: %w", err))
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = g.Close()
		return nil, classify(fmt.Errorf("failed to set busy timeout: %w", err))
	}

	if err := g.initSchema(context.Background()); err != nil {
		_ = g.Close()
		return nil, err
	}
	return g, nil
}

// Path returns the database file path.
func (g *Gateway) Path() string { return g.path }

// Close closes the connection after a WAL checkpoint.
func (g *Gateway) Close() error {
	if g.conn == nil {
		return nil
	}
	if _, err := g.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	err := g.conn.Close()
	g.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// initSchema creates one table per collection plus the profile
// singleton table. Idempotent.
func (g *Gateway) initSchema(ctx context.Context) error {
	for _, kind := range model.Kinds {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)`, kind.Collection())
		if _, err := g.conn.ExecContext(ctx, stmt); err != nil {
			return classify(fmt.Errorf("failed to create collection %s: %w", kind.Collection(), err))
		}
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	)`, model.ProfileCollection)
	if _, err := g.conn.ExecContext(ctx, stmt); err != nil {
		return classify(fmt.Errorf("failed to create profile collection: %w", err))
	}
	return nil
}

// fetchDocs reads up to limit documents from a collection, ordered by
// id descending, and decodes them. An empty collection yields an empty
// slice, never an error. Collection names come from the closed Kind
// set, never from user input.
func fetchDocs[T any](ctx context.Context, g *Gateway, collection string, limit int) ([]T, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	query := fmt.Sprintf("SELECT doc FROM %s ORDER BY id DESC LIMIT ?", collection)
	rows, err := g.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query %s: %w", collection, err))
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		var rec T
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("error iterating %s: %w", collection, err))
	}
	return out, nil
}

// Sales fetches up to limit sales, newest ids first.
func (g *Gateway) Sales(ctx context.Context, limit int) ([]model.Sale, error) {
	return fetchDocs[model.Sale](ctx, g, model.KindSale.Collection(), limit)
}

// Customers fetches up to limit customers, newest ids first.
func (g *Gateway) Customers(ctx context.Context, limit int) ([]model.Customer, error) {
	return fetchDocs[model.Customer](ctx, g, model.KindCustomer.Collection(), limit)
}

// Vehicles fetches up to limit vehicles, newest ids first.
func (g *Gateway) Vehicles(ctx context.Context, limit int) ([]model.Vehicle, error) {
	return fetchDocs[model.Vehicle](ctx, g, model.KindVehicle.Collection(), limit)
}

// Expenses fetches up to limit expenses, newest ids first.
func (g *Gateway) Expenses(ctx context.Context, limit int) ([]model.Expense, error) {
	return fetchDocs[model.Expense](ctx, g, model.KindExpense.Collection(), limit)
}

// Reminders fetches up to limit reminders, newest ids first.
func (g *Gateway) Reminders(ctx context.Context, limit int) ([]model.Reminder, error) {
	return fetchDocs[model.Reminder](ctx, g, model.KindReminder.Collection(), limit)
}

const upsertQuery = `
INSERT INTO %s (id, doc) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET doc = json_patch(doc, excluded.doc)
`

// Upsert writes the record's document at its id, merging fields into
// any existing document rather than replacing it wholesale.
func (g *Gateway) Upsert(ctx context.Context, kind model.Kind, id string, record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", kind, err)
	}
	query := fmt.Sprintf(upsertQuery, kind.Collection())
	if _, err := g.conn.ExecContext(ctx, query, id, string(doc)); err != nil {
		return classify(fmt.Errorf("failed to upsert %s/%s: %w", kind, id, err))
	}
	return nil
}

// Remove deletes the document with the given id; no-op if absent.
func (g *Gateway) Remove(ctx context.Context, kind model.Kind, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", kind.Collection())
	if _, err := g.conn.ExecContext(ctx, query, id); err != nil {
		return classify(fmt.Errorf("failed to delete %s/%s: %w", kind, id, err))
	}
	return nil
}

// ExistingIDs returns the set of document ids present in a collection,
// bounded by limit (DefaultFetchLimit when non-positive). The import
// coordinator uses this for its missing-id check; the read is not
// atomic with any subsequent write.
func (g *Gateway) ExistingIDs(ctx context.Context, kind model.Kind, limit int) (map[string]bool, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	query := fmt.Sprintf("SELECT id FROM %s ORDER BY id DESC LIMIT ?", kind.Collection())
	rows, err := g.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query %s ids: %w", kind, err))
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", kind, err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("error iterating %s ids: %w", kind, err))
	}
	return ids, nil
}

// Count returns the number of documents in a collection.
func (g *Gateway) Count(ctx context.Context, kind model.Kind) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", kind.Collection())
	if err := g.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, classify(fmt.Errorf("failed to count %s: %w", kind, err))
	}
	return count, nil
}

// FetchProfile reads the singleton profile document. Returns nil with
// no error when no profile has been saved.
func (g *Gateway) FetchProfile(ctx context.Context) (*model.Profile, error) {
	query := fmt.Sprintf("SELECT doc FROM %s WHERE key = ?", model.ProfileCollection)
	var doc string
	err := g.conn.QueryRowContext(ctx, query, model.ProfileKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to fetch profile: %w", err))
	}

	var profile model.Profile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile writes the singleton profile document, merging fields
// into any existing document.
func (g *Gateway) SaveProfile(ctx context.Context, profile *model.Profile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	query := fmt.Sprintf(`
	INSERT INTO %s (key, doc) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET doc = json_patch(doc, excluded.doc)
	`, model.ProfileCollection)
	if _, err := g.conn.ExecContext(ctx, query, model.ProfileKey, string(doc)); err != nil {
		return classify(fmt.Errorf("failed to save profile: %w", err))
	}
	return nil
}
