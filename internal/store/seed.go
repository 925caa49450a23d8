package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
)

// Seed fills an empty local store with sample skills for the home page and
// the skills page, plus a welcome post, so a fresh development checkout has
// something to show. It writes without a user, so nothing reaches the
// remote store. Existing content is left alone.
func Seed(ctx context.Context, local *localstore.Store, skills, pageSkills *SkillStore, posts *PostStore) error {
	var existing []json.RawMessage
	if local.Get(localstore.KeySkills, &existing) || local.Get(localstore.KeySkillsPage, &existing) ||
		local.Get(localstore.KeyPosts, &existing) {
		slog.Info("local store already has content, skipping seed")
		return nil
	}

	sample := []models.Skill{
		{Name: "Go", Desc: "HTTP services, CLIs and background workers."},
		{Name: "PostgreSQL", Desc: "Schema design, JSONB and query tuning."},
		{Name: "Docker", Desc: "Container images and compose setups for local development."},
	}
	for _, st := range []*SkillStore{skills, pageSkills} {
		for _, sk := range sample {
			if _, _, err := st.Add(ctx, sk, nil); err != nil {
				return fmt.Errorf("seed skill %q: %w", sk.Name, err)
			}
		}
	}

	welcome := models.BlogPost{
		Title:   "Hello, world",
		Excerpt: "The first post on this site.",
		Content: "Welcome to the blog.\n\nPosts are written in **Markdown** or plain HTML. " +
			"Sign in and use the admin API to replace this one.",
	}
	if _, _, err := posts.Create(ctx, welcome, nil); err != nil {
		return fmt.Errorf("seed post: %w", err)
	}

	slog.Info("local store seeded with sample content", "skills", len(sample), "posts", 1)
	return nil
}
