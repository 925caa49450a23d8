package remote

import (
	"context"
	"encoding/json"
	"testing"
)

type doc struct {
	PostID    string `json:"postId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
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

// runStoreContract exercises the behaviour every backend must share. The
// collection names carry a suffix so runs against a shared server don't
// collide.
func runStoreContract(t *testing.T, s Store, suffix string) {
	ctx := context.Background()
	skills := "skills" + suffix
	comments := "comments" + suffix

	t.Run("set and get document", func(t *testing.T) {
		if err := s.SetDocument(ctx, skills, "a", map[string]string{"name": "Go"}); err != nil {
			t.Fatalf("SetDocument: %v", err)
		}
		data, ok, err := s.GetDocument(ctx, skills, "a")
		if err != nil || !ok {
			t.Fatalf("GetDocument: ok=%v err=%v", ok, err)
		}
		var got map[string]string
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got["name"] != "Go" {
			t.Errorf("name = %q, want Go", got["name"])
		}

		// Upsert replaces.
		if err := s.SetDocument(ctx, skills, "a", map[string]string{"name": "Golang"}); err != nil {
			t.Fatalf("SetDocument again: %v", err)
		}
		data, _, _ = s.GetDocument(ctx, skills, "a")
		got = nil
		_ = json.Unmarshal(data, &got)
		if got["name"] != "Golang" {
			t.Errorf("after upsert name = %q", got["name"])
		}
	})

	t.Run("missing document", func(t *testing.T) {
		_, ok, err := s.GetDocument(ctx, skills, "missing")
		if err != nil {
			t.Fatalf("GetDocument: %v", err)
		}
		if ok {
			t.Error("missing document reported as present")
		}
		if err := s.DeleteDocument(ctx, skills, "missing"); err != nil {
			t.Errorf("DeleteDocument missing: %v", err)
		}
	})

	t.Run("replace collection drops old entries", func(t *testing.T) {
		if err := s.SetDocument(ctx, skills, "old", map[string]string{"name": "Perl"}); err != nil {
			t.Fatalf("SetDocument: %v", err)
		}
		recs := []Record{
			{ID: "s1", Data: raw(t, map[string]string{"name": "S1"})},
			{ID: "s2", Data: raw(t, map[string]string{"name": "S2"})},
		}
		if err := s.ReplaceCollection(ctx, skills, recs); err != nil {
			t.Fatalf("ReplaceCollection: %v", err)
		}
		got, err := s.GetCollection(ctx, skills)
		if err != nil {
			t.Fatalf("GetCollection: %v", err)
		}
		if !equalIDs(ids(got), []string{"s1", "s2"}) {
			t.Errorf("collection ids = %v, want [s1 s2]", ids(got))
		}
	})

	t.Run("replace with record lacking id fails whole", func(t *testing.T) {
		err := s.ReplaceCollection(ctx, skills, []Record{{ID: "x", Data: raw(t, map[string]string{})}, {Data: raw(t, map[string]string{})}})
		if err == nil {
			t.Fatal("expected error for record without id")
		}
		got, _ := s.GetCollection(ctx, skills)
		if !equalIDs(ids(got), []string{"s1", "s2"}) {
			t.Errorf("collection changed by failed replace: %v", ids(got))
		}
	})

	t.Run("replace collection keeps the given order", func(t *testing.T) {
		ordered := "ordered" + suffix
		want := []string{"zeta", "alpha", "mid", "beta"}
		recs := make([]Record, len(want))
		for i, id := range want {
			recs[i] = Record{ID: id, Data: raw(t, map[string]string{"name": id})}
		}
		if err := s.ReplaceCollection(ctx, ordered, recs); err != nil {
			t.Fatalf("ReplaceCollection: %v", err)
		}
		got, err := s.GetCollection(ctx, ordered)
		if err != nil {
			t.Fatalf("GetCollection: %v", err)
		}
		if !equalIDs(ids(got), want) {
			t.Errorf("collection ids = %v, want %v", ids(got), want)
		}
	})

	t.Run("query filters and orders newest first", func(t *testing.T) {
		add := func(d doc) string {
			id, err := s.AddDocument(ctx, comments, d)
			if err != nil {
				t.Fatalf("AddDocument: %v", err)
			}
			if id == "" {
				t.Fatal("AddDocument returned empty id")
			}
			return id
		}
		first := add(doc{PostID: "p1", Content: "first", CreatedAt: "2025-01-01T00:00:00.000Z"})
		third := add(doc{PostID: "p1", Content: "third", CreatedAt: "2025-01-03T00:00:00.000Z"})
		add(doc{PostID: "p2", Content: "other", CreatedAt: "2025-01-02T00:00:00.000Z"})

		got, err := s.Query(ctx, comments, "postId", "p1", "createdAt")
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if !equalIDs(ids(got), []string{third, first}) {
			t.Errorf("query ids = %v, want [%s %s]", ids(got), third, first)
		}
	})

	t.Run("delete document", func(t *testing.T) {
		if err := s.DeleteDocument(ctx, skills, "s1"); err != nil {
			t.Fatalf("DeleteDocument: %v", err)
		}
		got, _ := s.GetCollection(ctx, skills)
		if !equalIDs(ids(got), []string{"s2"}) {
			t.Errorf("after delete ids = %v", ids(got))
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemory(), "")
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.SetDocument(ctx, "c", "1", json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	data, _, _ := m.GetDocument(ctx, "c", "1")
	data[2] = 'b'
	again, _, _ := m.GetDocument(ctx, "c", "1")
	if string(again) != `{"a":1}` {
		t.Errorf("stored document mutated through returned slice: %s", again)
	}
}

func TestOpenNoDriver(t *testing.T) {
	s, err := Open(context.Background(), Options{})
	if err != nil || s != nil {
		t.Errorf("Open() = %v, %v; want nil, nil", s, err)
	}
	if _, err := Open(context.Background(), Options{Driver: "firebase"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
