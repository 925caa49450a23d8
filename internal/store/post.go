// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

// PostStore persists blog posts.
type PostStore struct {
	c *collection[models.BlogPost]
}

// NewPostStore returns a PostStore over the given local store.
func NewPostStore(local *localstore.Store, opts Options) *PostStore {
	return &PostStore{c: &collection[models.BlogPost]{
		mirror: newMirror("posts", local, opts),
		key:    localstore.KeyPosts,
		name:   remote.CollectionPosts,
		getID:  func(p models.BlogPost) string { return p.ID },
		setID:  func(p *models.BlogPost, id string) { p.ID = id },
	}}
}

// Load returns all posts, newest first. A remote collection with posts is
// authoritative and mirrored locally; an empty or unreadable one falls
// back to the local list.
func (s *PostStore) Load(ctx context.Context) ([]models.BlogPost, Source) {
	posts, src := s.load(ctx)
	models.SortPostsNewest(posts)
	s.c.loaded(src)
	return posts, src
}

func (s *PostStore) load(ctx context.Context) ([]models.BlogPost, Source) {
	if s.c.remote == nil {
		return s.c.localItems(), SourceLocal
	}

	posts, err := s.c.fetch(ctx)
	switch {
	case err != nil:
		slog.Warn("remote posts read failed, using local copy", "error", err)
	case len(posts) == 0:
		slog.Debug("remote has no posts, using local copy")
	default:
		if err := s.c.local.Set(s.c.key, posts); err != nil {
			slog.Warn("mirror posts locally failed", "error", err)
		}
		return posts, SourceRemote
	}
	return s.c.localItems(), SourceLocal
}

// Get returns the post with id from the remote store, else the local list.
// It returns nil when neither has it.
func (s *PostStore) Get(ctx context.Context, id string) (*models.BlogPost, Source) {
	if s.c.remote != nil {
		var data json.RawMessage
		var ok bool
		err := s.c.call(ctx, func(ctx context.Context) error {
			var err error
			data, ok, err = s.c.remote.GetDocument(ctx, s.c.name, id)
			return err
		})
		switch {
		case err != nil:
			slog.Warn("remote post read failed, using local copy", "id", id, "error", err)
		case ok:
			var p models.BlogPost
			if err := json.Unmarshal(data, &p); err == nil {
				p.ID = id
				return &p, SourceRemote
			}
			slog.Warn("remote post undecodable, using local copy", "id", id)
		}
	}

	items := s.c.localItems()
	if i := s.c.index(items, id); i >= 0 {
		return &items[i], SourceLocal
	}
	return nil, SourceDefault
}

// Create stores a new post under a fresh id stamped with the current time.
func (s *PostStore) Create(ctx context.Context, p models.BlogPost, user *models.User) (models.BlogPost, SaveResult, error) {
	p = normalizePost(p)
	if err := validatePost(p); err != nil {
		return models.BlogPost{}, SaveResult{}, err
	}
	now := s.c.now()
	p.ID = models.NewPostID(now)
	p.CreatedAt = models.Timestamp(now)

	items := append([]models.BlogPost{p}, s.c.localItems()...)
	return p, s.c.upsert(ctx, "create", items, p, user), nil
}

// Update replaces the title, content, excerpt and image of an existing
// post. Its id and createdAt are kept.
func (s *PostStore) Update(ctx context.Context, p models.BlogPost, user *models.User) (models.BlogPost, SaveResult, error) {
	p = normalizePost(p)
	if err := validatePost(p); err != nil {
		return models.BlogPost{}, SaveResult{}, err
	}

	existing, _ := s.Get(ctx, p.ID)
	if existing == nil {
		return models.BlogPost{}, SaveResult{}, ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt

	items := s.c.localItems()
	if i := s.c.index(items, p.ID); i >= 0 {
		items[i] = p
	} else {
		items = append(items, p)
	}
	return p, s.c.upsert(ctx, "update", items, p, user), nil
}

// Delete removes the post with id. Unknown ids are a no-op.
func (s *PostStore) Delete(ctx context.Context, id string, user *models.User) SaveResult {
	return s.c.remove(ctx, id, user)
}

// ReplaceAll stores posts as the whole collection. Posts already stored
// keep their createdAt. New posts are given an id when missing, and the
// current time unless they carry a createdAt in models.TimeLayout.
func (s *PostStore) ReplaceAll(ctx context.Context, posts []models.BlogPost, user *models.User) ([]models.BlogPost, SaveResult, error) {
	if err := uniqueIDs(posts, func(p models.BlogPost) string { return p.ID }); err != nil {
		return nil, SaveResult{}, err
	}
	for _, p := range posts {
		if err := validatePost(normalizePost(p)); err != nil {
			return nil, SaveResult{}, err
		}
	}

	current, _ := s.load(ctx)
	created := make(map[string]string, len(current))
	for _, p := range current {
		created[p.ID] = p.CreatedAt
	}

	now := s.c.now()
	out := make([]models.BlogPost, len(posts))
	for i, p := range posts {
		p = normalizePost(p)
		if stored, ok := created[p.ID]; ok && p.ID != "" {
			p.CreatedAt = stored
		} else if p.CreatedAt == "" {
			p.CreatedAt = models.Timestamp(now)
		} else if !models.ValidTimestamp(p.CreatedAt) {
			return nil, SaveResult{}, invalid("Post %q has an invalid createdAt.", p.Title)
		}
		if p.ID == "" {
			p.ID = models.NewPostID(now)
		}
		out[i] = p
	}
	models.SortPostsNewest(out)
	return out, s.c.replaceAll(ctx, out, user), nil
}

func normalizePost(p models.BlogPost) models.BlogPost {
	p.Title = strings.TrimSpace(p.Title)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	p.Image = strings.TrimSpace(p.Image)
	return p
}
