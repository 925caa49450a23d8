package store

import (
	"context"
	"log/slog"
	"strings"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

// SkillStore persists a skills list. The admin list and the skills page
// keep separate local keys over the same remote collection.
type SkillStore struct {
	c *collection[models.Skill]
}

// NewSkillStore returns a SkillStore keeping its local copy under key
// (localstore.KeySkills or localstore.KeySkillsPage).
func NewSkillStore(local *localstore.Store, key string, opts Options) *SkillStore {
	return &SkillStore{c: &collection[models.Skill]{
		mirror: newMirror("skills", local, opts),
		key:    key,
		name:   remote.CollectionSkills,
		getID:  func(s models.Skill) string { return s.ID },
		setID:  func(s *models.Skill, id string) { s.ID = id },
	}}
}

// Load returns the remote skills when readable (mirroring them locally),
// else the local list.
func (s *SkillStore) Load(ctx context.Context) ([]models.Skill, Source) {
	if s.c.remote != nil {
		skills, err := s.c.fetch(ctx)
		if err == nil {
			if err := s.c.local.Set(s.c.key, skills); err != nil {
				slog.Warn("mirror skills locally failed", "error", err)
			}
			s.c.loaded(SourceRemote)
			return skills, SourceRemote
		}
		slog.Warn("remote skills read failed, using local copy", "error", err)
	}
	s.c.loaded(SourceLocal)
	return s.c.localItems(), SourceLocal
}

// ReplaceAll stores skills as the whole collection. Skills without an id
// get one.
func (s *SkillStore) ReplaceAll(ctx context.Context, skills []models.Skill, user *models.User) ([]models.Skill, SaveResult, error) {
	if err := uniqueIDs(skills, func(sk models.Skill) string { return sk.ID }); err != nil {
		return nil, SaveResult{}, err
	}
	out := make([]models.Skill, len(skills))
	for i, sk := range skills {
		sk = normalizeSkill(sk)
		if err := validateSkill(sk); err != nil {
			return nil, SaveResult{}, err
		}
		if sk.ID == "" {
			sk.ID = models.NewSkillID(s.c.now())
		}
		out[i] = sk
	}
	return out, s.c.replaceAll(ctx, out, user), nil
}

// Add appends a new skill under a fresh id.
func (s *SkillStore) Add(ctx context.Context, sk models.Skill, user *models.User) (models.Skill, SaveResult, error) {
	sk = normalizeSkill(sk)
	if err := validateSkill(sk); err != nil {
		return models.Skill{}, SaveResult{}, err
	}
	sk.ID = models.NewSkillID(s.c.now())

	items := append(s.c.localItems(), sk)
	return sk, s.c.upsert(ctx, "add", items, sk, user), nil
}

// Update replaces the stored skill with the same id.
func (s *SkillStore) Update(ctx context.Context, sk models.Skill, user *models.User) (models.Skill, SaveResult, error) {
	sk = normalizeSkill(sk)
	if err := validateSkill(sk); err != nil {
		return models.Skill{}, SaveResult{}, err
	}

	items := s.c.localItems()
	i := s.c.index(items, sk.ID)
	if i < 0 {
		return models.Skill{}, SaveResult{}, ErrNotFound
	}
	items[i] = sk
	return sk, s.c.upsert(ctx, "update", items, sk, user), nil
}

// Delete removes the skill with id. Unknown ids are a no-op.
func (s *SkillStore) Delete(ctx context.Context, id string, user *models.User) SaveResult {
	return s.c.remove(ctx, id, user)
}

func normalizeSkill(sk models.Skill) models.Skill {
	sk.Name = strings.TrimSpace(sk.Name)
	sk.Desc = strings.TrimSpace(sk.Desc)
	sk.Image = strings.TrimSpace(sk.Image)
	return sk
}
