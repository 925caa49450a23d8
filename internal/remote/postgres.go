// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Postgres keeps every collection in the single JSONB "documents" table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps a migrated PostgreSQL pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// GetCollection returns documents in insertion order.
func (p *Postgres) GetCollection(ctx context.Context, collection string) ([]Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", collection, err)
	}
	return scanRecords(rows)
}

func (p *Postgres) Query(ctx context.Context, collection, field, value, orderBy string) ([]Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1 AND data->>($2::text) = $3
		ORDER BY data->>($4::text) DESC, id
	`, collection, field, value, orderBy)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return scanRecords(rows)
}

// GetDocument returns false with a nil error when the document doesn't exist.
func (p *Postgres) GetDocument(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(data), true, nil
}

func (p *Postgres) SetDocument(ctx context.Context, collection, id string, data any) error {
	raw, err := Encode(data)
	if err != nil {
		return err
	}
	if err := upsert(ctx, p.db, collection, id, raw); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) AddDocument(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := p.SetDocument(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// ReplaceCollection swaps the collection contents inside one transaction.
func (p *Postgres) ReplaceCollection(ctx context.Context, collection string, records []Record) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", collection, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("replace %s: record without id", collection)
		}
		if err := insertAt(ctx, tx, collection, r.ID, r.Data, i); err != nil {
			return fmt.Errorf("insert %s/%s: %w", collection, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", collection, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, collection, id string, raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, id, string(raw))
	return err
}

// insertAt writes the seq-th record of a replace. NOW() is fixed for the
// transaction, so created_at is offset by seq microseconds to keep the
// given order in GetCollection.
func insertAt(ctx context.Context, db execer, collection, id string, raw json.RawMessage, seq int) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at)
		VALUES ($1, $2, $3::jsonb, NOW() + $4::double precision * INTERVAL '1 microsecond')
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, id, string(raw), seq)
	return err
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var data []byte
		if err := rows.Scan(&r.ID, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		r.Data = json.RawMessage(data)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
