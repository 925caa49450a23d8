package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

// ProfileStore persists the site profile singleton.
type ProfileStore struct {
	m *mirror
}

// NewProfileStore returns a ProfileStore over the given local store.
func NewProfileStore(local *localstore.Store, opts Options) *ProfileStore {
	return &ProfileStore{m: newMirror("profile", local, opts)}
}

// Load returns the remote profile when it can be read (mirroring it
// locally), else the local copy, else the default profile.
func (s *ProfileStore) Load(ctx context.Context) (models.SiteProfile, Source) {
	if s.m.remote != nil {
		var data json.RawMessage
		var ok bool
		err := s.m.call(ctx, func(ctx context.Context) error {
			var err error
			data, ok, err = s.m.remote.GetDocument(ctx, remote.CollectionSettings, models.ProfileID)
			return err
		})
		switch {
		case err != nil:
			slog.Warn("remote profile read failed, using local copy", "error", err)
		case ok:
			var p models.SiteProfile
			if err := json.Unmarshal(data, &p); err != nil {
				slog.Warn("remote profile undecodable, using local copy", "error", err)
				break
			}
			if err := s.m.local.Set(localstore.KeyProfile, p); err != nil {
				slog.Warn("mirror profile locally failed", "error", err)
			}
			s.m.loaded(SourceRemote)
			return p, SourceRemote
		}
	}

	var p models.SiteProfile
	if s.m.local.Get(localstore.KeyProfile, &p) {
		s.m.loaded(SourceLocal)
		return p, SourceLocal
	}
	s.m.loaded(SourceDefault)
	return models.DefaultProfile(), SourceDefault
}

// Save merges patch over the current profile and stores the result.
func (s *ProfileStore) Save(ctx context.Context, patch models.ProfilePatch, user *models.User) (models.SiteProfile, SaveResult, error) {
	if err := validateProfile(patch); err != nil {
		return models.SiteProfile{}, SaveResult{}, err
	}

	current, _ := s.Load(ctx)
	next := patch.Apply(current)

	res := s.m.save(ctx, "save", localstore.KeyProfile, next, user, true, func(ctx context.Context) error {
		return s.m.remote.SetDocument(ctx, remote.CollectionSettings, models.ProfileID, next)
	})
	return next, res, nil
}

// Reset forgets the local profile. The remote document is left alone, so a
// configured remote keeps serving it.
func (s *ProfileStore) Reset() error {
	return s.m.local.Remove(localstore.KeyProfile)
}
