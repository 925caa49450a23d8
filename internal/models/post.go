// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// excerptRunes is how much of the body a listing shows when a post has no
// excerpt of its own.
const excerptRunes = 120

// wordsPerMinute drives the read-time estimate.
const wordsPerMinute = 200

// BlogPost is a single blog entry. Content is HTML or Markdown source.
type BlogPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Excerpt   string `json:"excerpt,omitempty"`
	Image     string `json:"image,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// NewPostID returns an id of the form post_<unix ms>_<6 random chars>.
func NewPostID(now time.Time) string {
	return "post_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + RandomBase36(6)
}

// EffectiveExcerpt is the excerpt shown in listings: the post's own excerpt,
// or the start of its text followed by an ellipsis.
func (p BlogPost) EffectiveExcerpt() string {
	if e := strings.TrimSpace(p.Excerpt); e != "" {
		return e
	}
	text := []rune(PlainText(p.Content))
	if len(text) > excerptRunes {
		text = text[:excerptRunes]
	}
	return strings.TrimSpace(string(text)) + "..."
}

// ReadMinutes estimates reading time, never less than one minute.
func (p BlogPost) ReadMinutes() int {
	words := len(strings.Fields(PlainText(p.Content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Created parses CreatedAt. Unparseable values yield the zero time.
func (p BlogPost) Created() time.Time {
	return parseTime(p.CreatedAt)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainText strips markup tags and decodes entities.
func PlainText(s string) string {
	text := html.UnescapeString(tagPattern.ReplaceAllString(s, " "))
	return strings.Join(strings.Fields(text), " ")
}

// SortPostsNewest orders posts by CreatedAt, newest first.
func SortPostsNewest(posts []BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Created().After(posts[j].Created())
	})
}

// SortCommentsNewest orders comments by CreatedAt, newest first.
func SortCommentsNewest(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return parseTime(comments[i].CreatedAt).After(parseTime(comments[j].CreatedAt))
	})
}
