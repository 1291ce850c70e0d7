// Package catalog stores suggestion items in a local sqlite database.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/f3rmion/tagcalc/internal/tag"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id       TEXT PRIMARY KEY,
	category TEXT NOT NULL DEFAULT '',
	name     TEXT NOT NULL,
	value    REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS items_name ON items (name COLLATE NOCASE);
`

// Store is a sqlite-backed item catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the catalog at path.
// The special path ":memory:" opens a private in-memory catalog.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts items, replacing any with the same ID. Items without an ID
// get a fresh UUID. It returns the number of items written.
func (s *Store) Upsert(ctx context.Context, items []tag.Item) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, category, name, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET category = excluded.category, name = excluded.name, value = excluded.value`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, id, it.Category, it.Name, it.Value); err != nil {
			return 0, fmt.Errorf("writing item %q: %w", it.Name, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing items: %w", err)
	}
	return n, nil
}

// Search returns items whose name contains name, ignoring case, ordered by
// name. An empty name matches everything. limit <= 0 means no limit.
func (s *Store) Search(ctx context.Context, name string, limit int) ([]tag.Item, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, name, value FROM items
		WHERE ?1 = '' OR instr(lower(name), lower(?1)) > 0
		ORDER BY name COLLATE NOCASE, id
		LIMIT ?2`, strings.TrimSpace(name), limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// All returns every item ordered by name.
func (s *Store) All(ctx context.Context) ([]tag.Item, error) {
	return s.Search(ctx, "", 0)
}

// Count returns the number of items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Delete removes the item with id. It reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item %q: %w", id, err)
	}
	return n > 0, nil
}

func scanItems(rows *sql.Rows) ([]tag.Item, error) {
	items := []tag.Item{}
	for rows.Next() {
		var it tag.Item
		if err := rows.Scan(&it.ID, &it.Category, &it.Name, &it.Value); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	return items, nil
}

// LoadYAML reads items from a YAML file of the form
//
//	items:
//	  - {category: number, id: "1", name: one, value: 1}
func LoadYAML(path string) ([]tag.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var doc struct {
		Items []tag.Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	return doc.Items, nil
}
