package store

import (
	"context"
	"testing"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

func TestSeedFillsEmptyStoreOnce(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	rem := remote.NewMemory()
	skills := NewSkillStore(local, localstore.KeySkills, opts(rem))
	pageSkills := NewSkillStore(local, localstore.KeySkillsPage, opts(rem))
	posts := NewPostStore(local, opts(rem))

	if err := Seed(ctx, local, skills, pageSkills, posts); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var gotSkills []models.Skill
	if !local.Get(localstore.KeySkills, &gotSkills) || len(gotSkills) != 3 {
		t.Fatalf("seeded skills = %+v", gotSkills)
	}
	var gotPageSkills []models.Skill
	if !local.Get(localstore.KeySkillsPage, &gotPageSkills) || len(gotPageSkills) != 3 {
		t.Fatalf("seeded skills page = %+v", gotPageSkills)
	}
	var gotPosts []models.BlogPost
	if !local.Get(localstore.KeyPosts, &gotPosts) || len(gotPosts) != 1 {
		t.Fatalf("seeded posts = %+v", gotPosts)
	}

	// Anonymous writes never reach the remote.
	if recs, _ := rem.GetCollection(ctx, remote.CollectionSkills); len(recs) != 0 {
		t.Errorf("remote skills = %d, want 0", len(recs))
	}

	// A second run leaves the store alone.
	if err := Seed(ctx, local, skills, pageSkills, posts); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	local.Get(localstore.KeySkills, &gotSkills)
	if len(gotSkills) != 3 {
		t.Errorf("skills after second seed = %d, want 3", len(gotSkills))
	}
}

func TestSeedSkipsExistingPosts(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	skills := NewSkillStore(local, localstore.KeySkills, opts(nil))
	pageSkills := NewSkillStore(local, localstore.KeySkillsPage, opts(nil))
	posts := NewPostStore(local, opts(nil))

	if _, _, err := posts.Create(ctx, models.BlogPost{Title: "Mine", Content: "Body"}, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Seed(ctx, local, skills, pageSkills, posts); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var gotSkills []models.Skill
	if local.Get(localstore.KeySkills, &gotSkills) {
		t.Errorf("skills seeded over existing content: %+v", gotSkills)
	}
}
