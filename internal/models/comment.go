package models

import "time"

// Comment is an immutable reader comment on a blog post.
type Comment struct {
	ID         string  `json:"id,omitempty"`
	PostID     string  `json:"postId"`
	AuthorName string  `json:"authorName"`
	AuthorID   *string `json:"authorId"`
	Content    string  `json:"content"`
	CreatedAt  string  `json:"createdAt"`
}

// NewComment builds a comment by u (nil for anonymous) stamped with now.
func NewComment(postID, content string, u *User, now time.Time) Comment {
	c := Comment{
		PostID:     postID,
		AuthorName: u.AuthorName(),
		Content:    content,
		CreatedAt:  Timestamp(now),
	}
	if u != nil && u.UID != "" {
		uid := u.UID
		c.AuthorID = &uid
	}
	return c
}

// Created parses CreatedAt. Unparseable values yield the zero time.
func (c Comment) Created() time.Time {
	return parseTime(c.CreatedAt)
}
