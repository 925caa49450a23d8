package store

import (
	"context"
	"log/slog"
	"strings"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
	"devfolio/internal/remote"
)

// CommentStore persists the append-only comment list of each post.
type CommentStore struct {
	m *mirror
}

// NewCommentStore returns a CommentStore over the given local store.
func NewCommentStore(local *localstore.Store, opts Options) *CommentStore {
	return &CommentStore{m: newMirror("comments", local, opts)}
}

// Load returns the comments of postID, newest first. Remote results are
// mirrored into the post's local list.
func (s *CommentStore) Load(ctx context.Context, postID string) ([]models.Comment, Source) {
	key := localstore.CommentsKey(postID)

	if s.m.remote != nil {
		var recs []remote.Record
		err := s.m.call(ctx, func(ctx context.Context) error {
			var err error
			recs, err = s.m.remote.Query(ctx, remote.CollectionComments, "postId", postID, "createdAt")
			return err
		})
		if err == nil {
			c := &collection[models.Comment]{
				mirror: s.m,
				name:   remote.CollectionComments,
				setID:  func(c *models.Comment, id string) { c.ID = id },
			}
			comments := make([]models.Comment, 0, len(recs))
			for _, cm := range c.decode(recs) {
				if cm.PostID == postID {
					comments = append(comments, cm)
				}
			}
			models.SortCommentsNewest(comments)
			if err := s.m.local.Set(key, comments); err != nil {
				slog.Warn("mirror comments locally failed", "post_id", postID, "error", err)
			}
			s.m.loaded(SourceRemote)
			return comments, SourceRemote
		}
		slog.Warn("remote comments read failed, using local copy", "post_id", postID, "error", err)
	}

	var comments []models.Comment
	if !s.m.local.Get(key, &comments) {
		comments = []models.Comment{}
	}
	models.SortCommentsNewest(comments)
	s.m.loaded(SourceLocal)
	return comments, SourceLocal
}

// Post appends a comment by user (nil for anonymous visitors). It is always
// stored locally and added remotely when a remote is configured; comments
// don't need a signed-in user.
func (s *CommentStore) Post(ctx context.Context, postID, content string, user *models.User) (models.Comment, SaveResult, error) {
	postID = strings.TrimSpace(postID)
	content = strings.TrimSpace(content)
	if err := validateComment(postID, content); err != nil {
		return models.Comment{}, SaveResult{}, err
	}

	key := localstore.CommentsKey(postID)
	c := models.NewComment(postID, content, user, s.m.now())

	var list []models.Comment
	s.m.local.Get(key, &list)
	list = append(list, c)

	res := s.m.save(ctx, "post", key, list, user, false, func(ctx context.Context) error {
		id, err := s.m.remote.AddDocument(ctx, remote.CollectionComments, c)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	})

	// Record the remote id on the local copy so a later mirror replaces it
	// rather than duplicating it.
	if res.Remote && res.Local {
		list[len(list)-1] = c
		if err := s.m.local.Set(key, list); err != nil {
			slog.Warn("record comment id locally failed", "post_id", postID, "error", err)
		}
	}
	return c, res, nil
}
