// store_test.go provides shared helpers for the store tests: an in-memory
// local store, a ticking clock and remote stores that fail or hang.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

var admin = &models.User{UID: "u1", DisplayName: "Site Owner", Email: "owner@example.com"}

func newLocal(t *testing.T) *localstore.Store {
	t.Helper()
	l, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func opts(r remote.Store) Options {
	return Options{Remote: r, Timeout: 200 * time.Millisecond, Now: tickingClock()}
}

var errBoom = errors.New("network unreachable")

// failingRemote fails every call.
type failingRemote struct{}

func (failingRemote) GetCollection(context.Context, string) ([]remote.Record, error) {
	return nil, errBoom
}
func (failingRemote) Query(context.Context, string, string, string, string) ([]remote.Record, error) {
	return nil, errBoom
}
func (failingRemote) GetDocument(context.Context, string, string) (json.RawMessage, bool, error) {
	return nil, false, errBoom
}
func (failingRemote) SetDocument(context.Context, string, string, any) error { return errBoom }
func (failingRemote) AddDocument(context.Context, string, any) (string, error) {
	return "", errBoom
}
func (failingRemote) DeleteDocument(context.Context, string, string) error { return errBoom }
func (failingRemote) ReplaceCollection(context.Context, string, []remote.Record) error {
	return errBoom
}
func (failingRemote) Close() error { return nil }

// hangingRemote blocks every call until its context ends.
type hangingRemote struct{ failingRemote }

func (hangingRemote) GetCollection(ctx context.Context, _ string) ([]remote.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (hangingRemote) SetDocument(ctx context.Context, _, _ string, _ any) error {
	<-ctx.Done()
	return ctx.Err()
}

func remoteIDs(t *testing.T, r remote.Store, collection string) []string {
	t.Helper()
	recs, err := r.GetCollection(context.Background(), collection)
	if err != nil {
		t.Fatalf("GetCollection(%s): %v", collection, err)
	}
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.ID
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func str(s string) *string { return &s }
