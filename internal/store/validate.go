package store

import (
	"strings"
	"unicode/utf8"

	"devfolio/internal/models"
)

// Validation limits for record fields.
const (
	maxTitleLen     = 300
	maxExcerptLen   = 500
	maxBodyLen      = 200_000
	maxSkillNameLen = 120
	maxSkillDescLen = 1_000
	maxCommentLen   = 2_000
	maxHeroLen      = 200
	maxProfileHTML  = 100_000
	maxURLLen       = 2_048
)

// validatePost checks a post and returns the first problem found.
func validatePost(p models.BlogPost) error {
	if p.Title == "" {
		return invalid("Title is required.")
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return invalid("Title is too long (max 300 characters).")
	}
	if strings.TrimSpace(p.Content) == "" {
		return invalid("Content is required.")
	}
	if utf8.RuneCountInString(p.Content) > maxBodyLen {
		return invalid("Content is too long (max 200,000 characters).")
	}
	if utf8.RuneCountInString(p.Excerpt) > maxExcerptLen {
		return invalid("Excerpt is too long (max 500 characters).")
	}
	if len(p.Image) > maxURLLen {
		return invalid("Image URL is too long.")
	}
	return nil
}

// validateSkill checks a skill and returns the first problem found.
func validateSkill(s models.Skill) error {
	if s.Name == "" {
		return invalid("Skill name is required.")
	}
	if utf8.RuneCountInString(s.Name) > maxSkillNameLen {
		return invalid("Skill name is too long (max 120 characters).")
	}
	if utf8.RuneCountInString(s.Desc) > maxSkillDescLen {
		return invalid("Skill description is too long (max 1,000 characters).")
	}
	if len(s.Image) > maxURLLen {
		return invalid("Image URL is too long.")
	}
	return nil
}

// validateProfile checks the supplied fields of a profile patch.
func validateProfile(p models.ProfilePatch) error {
	if p.Empty() {
		return invalid("Nothing to update.")
	}
	if p.HeroName != nil && utf8.RuneCountInString(*p.HeroName) > maxHeroLen {
		return invalid("Name is too long (max 200 characters).")
	}
	if p.HeroTitle != nil && utf8.RuneCountInString(*p.HeroTitle) > maxHeroLen {
		return invalid("Title is too long (max 200 characters).")
	}
	if p.AboutHTML != nil && utf8.RuneCountInString(*p.AboutHTML) > maxProfileHTML {
		return invalid("About section is too long (max 100,000 characters).")
	}
	if p.ProjectsHTML != nil && utf8.RuneCountInString(*p.ProjectsHTML) > maxProfileHTML {
		return invalid("Projects section is too long (max 100,000 characters).")
	}
	// Avatars may be data URIs, so only URLs are length checked.
	if p.Avatar != nil && !strings.HasPrefix(*p.Avatar, "data:") && len(*p.Avatar) > maxURLLen {
		return invalid("Avatar URL is too long.")
	}
	return nil
}

// uniqueIDs rejects a list that repeats a non-empty id.
func uniqueIDs[T any](items []T, id func(T) string) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		v := id(item)
		if v == "" {
			continue
		}
		if seen[v] {
			return invalid("Duplicate id %q.", v)
		}
		seen[v] = true
	}
	return nil
}

// validateComment checks a comment before it is stored.
func validateComment(postID, content string) error {
	if postID == "" {
		return invalid("Post is required.")
	}
	if content == "" {
		return invalid("Comment cannot be empty.")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return invalid("Comment is too long (max 2,000 characters).")
	}
	return nil
}
