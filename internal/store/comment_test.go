package store

import (
	"context"
	"errors"
	"testing"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

func TestCommentsScopedAndNewestFirst(t *testing.T) {
	for _, tc := range []struct {
		name string
		rem  remote.Store
	}{
		{"local only", nil},
		{"with remote", remote.NewMemory()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := NewCommentStore(newLocal(t), opts(tc.rem))

			for _, c := range []struct{ post, text string }{
				{"p1", "first"}, {"p2", "elsewhere"}, {"p1", "second"}, {"p1", "third"},
			} {
				if _, _, err := s.Post(ctx, c.post, c.text, nil); err != nil {
					t.Fatalf("Post: %v", err)
				}
			}

			got, _ := s.Load(ctx, "p1")
			if len(got) != 3 {
				t.Fatalf("p1 comments = %d, want 3", len(got))
			}
			for i, want := range []string{"third", "second", "first"} {
				if got[i].Content != want {
					t.Errorf("comment %d = %q, want %q", i, got[i].Content, want)
				}
				if got[i].PostID != "p1" {
					t.Errorf("comment %d belongs to %q", i, got[i].PostID)
				}
			}

			other, _ := s.Load(ctx, "p2")
			if len(other) != 1 || other[0].Content != "elsewhere" {
				t.Errorf("p2 comments = %+v", other)
			}
		})
	}
}

func TestCommentAuthor(t *testing.T) {
	ctx := context.Background()
	s := NewCommentStore(newLocal(t), opts(nil))

	anon, _, _ := s.Post(ctx, "p1", "hi", nil)
	if anon.AuthorName != "Anonymous" || anon.AuthorID != nil {
		t.Errorf("anonymous comment = %+v", anon)
	}
	named, _, _ := s.Post(ctx, "p1", "hello", admin)
	if named.AuthorName != "Site Owner" || named.AuthorID == nil || *named.AuthorID != "u1" {
		t.Errorf("signed-in comment = %+v", named)
	}
}

func TestCommentAnonymousReachesRemote(t *testing.T) {
	ctx := context.Background()
	rem := remote.NewMemory()
	local := newLocal(t)
	s := NewCommentStore(local, opts(rem))

	c, res, err := s.Post(ctx, "p1", "visitor here", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !res.Local || !res.Remote || res.RemoteSkipped {
		t.Errorf("SaveResult = %+v, want local and remote", res)
	}
	if c.ID == "" {
		t.Error("remote id not recorded")
	}
	var stored []models.Comment
	local.Get(localstore.CommentsKey("p1"), &stored)
	if len(stored) != 1 || stored[0].ID != c.ID {
		t.Errorf("local copy = %+v", stored)
	}
}

func TestCommentRemoteFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	s := NewCommentStore(newLocal(t), opts(failingRemote{}))

	_, res, err := s.Post(ctx, "p1", "kept", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !res.Local || res.RemoteErr == nil {
		t.Errorf("SaveResult = %+v", res)
	}
	got, src := s.Load(ctx, "p1")
	if src != SourceLocal || len(got) != 1 || got[0].Content != "kept" {
		t.Errorf("Load = %+v from %s", got, src)
	}
}

func TestCommentValidation(t *testing.T) {
	s := NewCommentStore(newLocal(t), opts(nil))
	if _, _, err := s.Post(context.Background(), "p1", "   ", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty comment err = %v", err)
	}
	if _, _, err := s.Post(context.Background(), "", "text", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("missing post err = %v", err)
	}
}
