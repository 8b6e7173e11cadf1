// Package docstore is a small schemaless document store over sqlite. Each
// document belongs to a named collection and carries a free-form JSON field
// set plus a server-assigned id and creation timestamp. Collections can be
// watched: every write is followed by a fresh full snapshot pushed to all
// watchers of the affected collection.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FieldCreatedAt is the ordering sentinel for the server-assigned creation
// timestamp, which lives in its own column rather than the JSON field set.
const FieldCreatedAt = "timestamp"

type Document struct {
	ID         string
	Collection string
	Fields     map[string]any
	CreatedAt  time.Time
}

type Store struct {
	db *sqlx.DB

	mu       sync.Mutex
	watchers map[string]map[string]*Subscription
}

func New(db *sqlx.DB) *Store {
	return &Store{
		db:       db,
		watchers: make(map[string]map[string]*Subscription),
	}
}

// Insert adds a new document with a store-assigned id and creation timestamp
// and notifies watchers of the collection.
func (s *Store) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents(id, collection, fields, created_at) VALUES(?,?,?,?)`,
		id, collection, string(raw), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	s.broadcast(collection)
	return id, nil
}

// Put writes a document under a caller-chosen id, replacing the field set if
// the id already exists. Used for fixed-path documents such as secrets.
func (s *Store) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents(id, collection, fields, created_at) VALUES(?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET fields=excluded.fields`,
		id, collection, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	s.broadcast(collection)
	return nil
}

// List returns every document in the collection ordered by the given field,
// newest first. FieldCreatedAt orders by the server creation timestamp; any
// other name orders by that key inside the JSON field set.
func (s *Store) List(ctx context.Context, collection, orderField string) ([]Document, error) {
	order := "created_at"
	if orderField != FieldCreatedAt && orderField != "" {
		order = fmt.Sprintf("json_extract(fields, '$.%s')", orderField)
	}
	q := `SELECT id, fields, created_at FROM documents WHERE collection = ? ORDER BY ` +
		order + ` DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc Document
			raw string
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc.Collection = collection
		if err := json.Unmarshal([]byte(raw), &doc.Fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetDocument fetches a single document by "collection/id" path.
func (s *Store) GetDocument(ctx context.Context, path string) (map[string]any, error) {
	collection, id, ok := strings.Cut(path, "/")
	if !ok || collection == "" || id == "" {
		return nil, fmt.Errorf("%w: bad path %q", ErrNotFound, path)
	}
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fields, nil
}
