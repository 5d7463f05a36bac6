package sqlitecatalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vk/behaviorgo/internal/catalog"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/jsonconfig"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trees (
	name       TEXT PRIMARY KEY,
	definition TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store is a catalog.Catalog backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	parser *jsonconfig.Parser
	now    func() time.Time
}

var _ catalog.Catalog = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", dbPath, err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode on %s: %w", dbPath, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema in %s: %w", dbPath, err)
	}

	ctxlog.FromContext(ctx).Debug("Catalog opened.", "path", dbPath)
	return &Store{db: db, path: dbPath, parser: jsonconfig.NewParser(), now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put implements catalog.Catalog.
func (s *Store) Put(ctx context.Context, name string, doc map[string]any) error {
	if err := catalog.ValidateName(name); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("cannot store nil document for tree %q", name)
	}

	data, err := jsonconfig.Marshal(config.Normalize(doc).(map[string]any))
	if err != nil {
		return fmt.Errorf("encode tree %q: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trees (name, definition, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET definition = excluded.definition, updated_at = excluded.updated_at`,
		name, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store tree %q: %w", name, err)
	}

	ctxlog.FromContext(ctx).Debug("Tree stored in catalog.", "tree", name, "bytes", len(data))
	return nil
}

// Get implements catalog.Catalog.
func (s *Store) Get(ctx context.Context, name string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT definition FROM trees WHERE name = ?", name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrTreeNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load tree %q: %w", name, err)
	}

	doc, err := s.parser.Parse(ctx, s.path+"#"+name, []byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode stored tree %q: %w", name, err)
	}
	return doc, nil
}

// List implements catalog.Catalog.
func (s *Store) List(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, updated_at FROM trees ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var (
			name string
			ms   int64
		)
		if err := rows.Scan(&name, &ms); err != nil {
			return nil, fmt.Errorf("scan tree row: %w", err)
		}
		entries = append(entries, catalog.Entry{Name: name, UpdatedAt: time.UnixMilli(ms).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	return entries, nil
}

// Delete implements catalog.Catalog.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trees WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete tree %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tree %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrTreeNotFound, name)
	}
	return nil
}
