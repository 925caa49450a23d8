// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package remote is the optional document database the site mirrors its
// records to. A nil Store means no remote is configured; callers treat that
// the same as a remote that is unreachable.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"devfolio/internal/database"
)

// Collection names.
const (
	CollectionSettings = "site_settings"
	CollectionSkills   = "skills"
	CollectionPosts    = "blog_posts"
	CollectionComments = "comments"
)

// Record is one document of a collection.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Store is a document database with collections of JSON documents.
type Store interface {
	// GetCollection returns every document in the collection.
	GetCollection(ctx context.Context, collection string) ([]Record, error)
	// Query returns the documents whose top-level field equals value,
	// ordered by orderBy descending.
	Query(ctx context.Context, collection, field, value, orderBy string) ([]Record, error)
	// GetDocument returns the document data and whether it exists.
	GetDocument(ctx context.Context, collection, id string) (json.RawMessage, bool, error)
	// SetDocument creates or replaces a document.
	SetDocument(ctx context.Context, collection, id string, data any) error
	// AddDocument inserts a document under a generated id.
	AddDocument(ctx context.Context, collection string, data any) (string, error)
	// DeleteDocument removes a document. Deleting a missing id is not an error.
	DeleteDocument(ctx context.Context, collection, id string) error
	// ReplaceCollection deletes every document of the collection and inserts
	// records, all or nothing.
	ReplaceCollection(ctx context.Context, collection string, records []Record) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver         string // "postgres", "mongo", "memory" or "" for none
	PostgresDSN    string
	MongoURI       string
	MongoDatabase  string
	ConnectTimeout time.Duration
}

// Open connects the configured backend. It returns nil, nil when no driver
// is selected.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	switch opts.Driver {
	case "":
		return nil, nil
	case "memory":
		slog.Info("remote store: in-memory")
		return NewMemory(), nil
	case "postgres":
		db, err := database.Connect(opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgres(db), nil
	case "mongo":
		client, err := database.ConnectMongo(ctx, opts.MongoURI, opts.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		return NewMongo(client, opts.MongoDatabase), nil
	default:
		return nil, fmt.Errorf("unknown remote driver %q", opts.Driver)
	}
}

// Encode turns a document value into JSON. RawMessage values pass through.
func Encode(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}
