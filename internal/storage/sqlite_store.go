package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"go-live-preview/internal/model"
	"go-live-preview/pkg/fsutils"
)

// SQLiteStore implements EntityStorage on a SQLite database.
// Field definitions come from the content type store so loaded entities
// always carry every field their type declares, in declaration order.
type SQLiteStore struct {
	conn  *sql.DB
	types ContentTypeStore
}

// NewSQLiteStore opens (or creates) the SQLite file at dbPath and runs migrations.
func NewSQLiteStore(dbPath string, types ContentTypeStore) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := fsutils.CreateDir(filepath.Dir(dbPath)); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn, types: types}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS node_field_items (
			node_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			field_name TEXT NOT NULL,
			delta INTEGER NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			target_id INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (node_id, field_name, delta)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Load retrieves a node with its referenced entities loaded one level deep.
func (s *SQLiteStore) Load(ctx context.Context, id int64) (*model.Entity, error) {
	e, err := s.loadShallow(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, f := range e.Fields {
		if !f.Definition.IsEntityReference() {
			continue
		}
		for i := range f.Items {
			if f.Items[i].TargetID == 0 {
				continue
			}
			target, err := s.loadShallow(ctx, f.Items[i].TargetID)
			if errors.Is(err, ErrNotFound) {
				// Dangling reference: keep the ID, leave the entity unset.
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load reference %d of node %d: %w", f.Items[i].TargetID, id, err)
			}
			f.Items[i].Entity = target
		}
	}
	return e, nil
}

// LoadMultiple retrieves several nodes in the order given, skipping missing IDs.
func (s *SQLiteStore) LoadMultiple(ctx context.Context, ids []int64) ([]*model.Entity, error) {
	entities := make([]*model.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// List returns every stored node ordered by ID, without references loaded.
func (s *SQLiteStore) List(ctx context.Context) ([]*model.Entity, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM nodes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	entities := make([]*model.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.loadShallow(ctx, id)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (s *SQLiteStore) loadShallow(ctx context.Context, id int64) (*model.Entity, error) {
	e := &model.Entity{}
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, type, title, created_at, updated_at FROM nodes WHERE id = ?`, id,
	).Scan(&e.ID, &e.Type, &e.Title, &e.CreatedAt, &e.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get node %d: %w", id, err)
	}

	ct, ok := s.types.ContentType(e.Type)
	if !ok {
		return nil, fmt.Errorf("node %d has unknown content type %q", id, e.Type)
	}
	for _, def := range ct.Fields {
		e.Fields = append(e.Fields, &model.Field{Definition: def})
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT field_name, value, target_id FROM node_field_items WHERE node_id = ? ORDER BY field_name, delta`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get field items of node %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var item model.FieldItem
		if err := rows.Scan(&name, &item.Value, &item.TargetID); err != nil {
			return nil, err
		}
		// Items of fields the type no longer declares are ignored.
		if f := e.Field(name); f != nil {
			f.Items = append(f.Items, item)
		}
	}
	return e, rows.Err()
}

// Save inserts or updates a node and replaces all of its field items.
func (s *SQLiteStore) Save(ctx context.Context, e *model.Entity) error {
	if e.Type == "" {
		return fmt.Errorf("node type cannot be empty")
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.LastUpdated = now

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if e.IsNew() {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (type, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			e.Type, e.Title, e.CreatedAt, e.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("insert node: %w", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert node id: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, type, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET type = excluded.type, title = excluded.title, updated_at = excluded.updated_at`,
			e.ID, e.Type, e.Title, e.CreatedAt, e.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("upsert node %d: %w", e.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_field_items WHERE node_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear field items of node %d: %w", e.ID, err)
	}
	for _, f := range e.Fields {
		for delta, item := range f.Items {
			targetID := item.TargetID
			if targetID == 0 && item.Entity != nil {
				targetID = item.Entity.ID
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO node_field_items (node_id, field_name, delta, value, target_id) VALUES (?, ?, ?, ?, ?)`,
				e.ID, f.Name(), delta, item.Value, targetID,
			)
			if err != nil {
				return fmt.Errorf("insert item %s[%d] of node %d: %w", f.Name(), delta, e.ID, err)
			}
		}
	}
	return tx.Commit()
}

// ParseEntityID parses a node ID from a path or form value.
func ParseEntityID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid node id %q", raw)
	}
	return id, nil
}
