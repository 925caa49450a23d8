package models

import (
	"strings"
	"time"
)

// Skill is one entry of the skills grid.
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
	Image string `json:"image"`
}

// NewSkillID returns an id of the form s_<base36 ms>_<4 random chars>.
func NewSkillID(now time.Time) string {
	return "s_" + base36(now.UnixMilli()) + "_" + RandomBase36(4)
}

// Matches reports whether q occurs in the skill's name or description,
// ignoring case. An empty query matches everything.
func (s Skill) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name+" "+s.Desc), q)
}
