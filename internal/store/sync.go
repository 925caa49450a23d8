// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists the site's records local-first: every write lands
// in the local store, then is mirrored to the remote document store when
// one is configured and the caller is signed in. Reads prefer the remote
// store and fall back to the local copy. Remote failures are logged and
// reported in SaveResult, never returned as errors.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devfolio/internal/localstore"
	"devfolio/internal/metrics"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

// DefaultRemoteTimeout bounds every remote call when Options.Timeout is zero.
const DefaultRemoteTimeout = 5 * time.Second

var (
	// ErrValidation wraps every rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when updating a record that doesn't exist.
	ErrNotFound = errors.New("record not found")
	// ErrRemoteUnavailable marks a remote call that timed out.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// ValidationError carries a message fit to show the user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Source names where a load was answered from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
)

// SaveResult describes what a write reached.
type SaveResult struct {
	Local         bool  `json:"local"`
	Remote        bool  `json:"remote"`
	RemoteSkipped bool  `json:"remoteSkipped"`
	LocalErr      error `json:"-"`
	RemoteErr     error `json:"-"`
}

// RemoteError is the remote failure message, or "".
func (r SaveResult) RemoteError() string {
	if r.RemoteErr == nil {
		return ""
	}
	return r.RemoteErr.Error()
}

// Options configures every store.
type Options struct {
	Remote  remote.Store // nil when no remote is configured
	Timeout time.Duration
	Now     func() time.Time
}

// mirror is the local/remote pair shared by one record kind.
type mirror struct {
	kind    string
	local   *localstore.Store
	remote  remote.Store
	timeout time.Duration
	now     func() time.Time
}

func newMirror(kind string, local *localstore.Store, opts Options) *mirror {
	m := &mirror{
		kind:    kind,
		local:   local,
		remote:  opts.Remote,
		timeout: opts.Timeout,
		now:     opts.Now,
	}
	if m.timeout <= 0 {
		m.timeout = DefaultRemoteTimeout
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// call runs fn against the remote store under the remote timeout.
func (m *mirror) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrRemoteUnavailable, m.timeout, err)
	}
	return err
}

// save writes value under key locally, then runs the remote half.
func (m *mirror) save(ctx context.Context, op, key string, value any, user *models.User, authRequired bool, remoteWrite func(ctx context.Context) error) SaveResult {
	res := SaveResult{Local: true}
	if err := m.local.Set(key, value); err != nil {
		slog.Warn("local write failed", "kind", m.kind, "op", op, "error", err)
		res.Local = false
		res.LocalErr = err
	}
	m.mirrorWrite(ctx, op, user, authRequired, remoteWrite, &res)
	return res
}

// mirrorWrite attempts the remote write when a remote exists and, for
// authRequired writes, a user is signed in.
func (m *mirror) mirrorWrite(ctx context.Context, op string, user *models.User, authRequired bool, remoteWrite func(ctx context.Context) error, res *SaveResult) {
	result := metrics.ResultRemote
	switch {
	case m.remote == nil:
		result = metrics.ResultLocalOnly
	case authRequired && user == nil:
		res.RemoteSkipped = true
		result = metrics.ResultRemoteSkipped
		slog.Info("remote write skipped: not signed in", "kind", m.kind, "op", op)
	default:
		if err := m.call(ctx, remoteWrite); err != nil {
			res.RemoteErr = err
			result = metrics.ResultRemoteFailed
			slog.Warn("remote write failed, kept local copy", "kind", m.kind, "op", op, "error", err)
		} else {
			res.Remote = true
		}
	}
	metrics.SyncWrites.WithLabelValues(m.kind, op, result).Inc()
}

func (m *mirror) loaded(src Source) {
	metrics.SyncLoads.WithLabelValues(m.kind, string(src)).Inc()
}

// collection is a local list mirrored to a remote collection one document
// per item.
type collection[T any] struct {
	*mirror
	key   string
	name  string
	getID func(T) string
	setID func(*T, string)
}

// localItems returns the local list, empty when missing or corrupt.
func (c *collection[T]) localItems() []T {
	var items []T
	if !c.local.Get(c.key, &items) {
		return []T{}
	}
	return items
}

// fetch reads the whole remote collection. Documents that fail to decode
// are skipped.
func (c *collection[T]) fetch(ctx context.Context) ([]T, error) {
	var recs []remote.Record
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		recs, err = c.remote.GetCollection(ctx, c.name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.decode(recs), nil
}

func (c *collection[T]) decode(recs []remote.Record) []T {
	items := make([]T, 0, len(recs))
	for _, r := range recs {
		var item T
		if err := json.Unmarshal(r.Data, &item); err != nil {
			slog.Warn("skipping undecodable remote document", "collection", c.name, "id", r.ID, "error", err)
			continue
		}
		c.setID(&item, r.ID)
		items = append(items, item)
	}
	return items
}

func (c *collection[T]) records(items []T) ([]remote.Record, error) {
	recs := make([]remote.Record, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.name, err)
		}
		recs = append(recs, remote.Record{ID: c.getID(item), Data: raw})
	}
	return recs, nil
}

func (c *collection[T]) index(items []T, id string) int {
	for i, item := range items {
		if c.getID(item) == id {
			return i
		}
	}
	return -1
}

// replaceAll stores items locally and replaces the remote collection.
func (c *collection[T]) replaceAll(ctx context.Context, items []T, user *models.User) SaveResult {
	return c.save(ctx, "replace", c.key, items, user, true, func(ctx context.Context) error {
		recs, err := c.records(items)
		if err != nil {
			return err
		}
		return c.remote.ReplaceCollection(ctx, c.name, recs)
	})
}

// upsert stores items locally and writes item as a single document.
func (c *collection[T]) upsert(ctx context.Context, op string, items []T, item T, user *models.User) SaveResult {
	return c.save(ctx, op, c.key, items, user, true, func(ctx context.Context) error {
		return c.remote.SetDocument(ctx, c.name, c.getID(item), item)
	})
}

// remove drops id from the local list and deletes the remote document. A
// missing id is a no-op with nothing written.
func (c *collection[T]) remove(ctx context.Context, id string, user *models.User) SaveResult {
	items := c.localItems()
	i := c.index(items, id)
	if i < 0 {
		return SaveResult{}
	}
	items = append(items[:i:i], items[i+1:]...)
	return c.save(ctx, "delete", c.key, items, user, true, func(ctx context.Context) error {
		return c.remote.DeleteDocument(ctx, c.name, id)
	})
}
