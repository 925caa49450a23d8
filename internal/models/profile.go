// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// ProfileID is the fixed document id of the site profile singleton.
const ProfileID = "default"

// SiteProfile holds the editable parts of the home page. AboutHTML and
// ProjectsHTML are raw markup written by the site owner.
type SiteProfile struct {
	HeroName     string `json:"heroName"`
	HeroTitle    string `json:"heroTitle"`
	AboutHTML    string `json:"aboutHtml"`
	Avatar       string `json:"avatar"`
	ProjectsHTML string `json:"projectsHtml"`
}

// DefaultProfile is shown until the owner saves a profile.
func DefaultProfile() SiteProfile {
	return SiteProfile{
		HeroName:  "Your Name",
		HeroTitle: "Software Developer",
		AboutHTML: "<p>Tell visitors a little about yourself.</p>",
	}
}

// ProfilePatch is a partial profile update. A nil field was not supplied
// and keeps its stored value; a non-nil empty string clears the field.
type ProfilePatch struct {
	HeroName     *string `json:"heroName,omitempty"`
	HeroTitle    *string `json:"heroTitle,omitempty"`
	AboutHTML    *string `json:"aboutHtml,omitempty"`
	Avatar       *string `json:"avatar,omitempty"`
	ProjectsHTML *string `json:"projectsHtml,omitempty"`
}

// Empty reports whether the patch supplies no fields at all.
func (p ProfilePatch) Empty() bool {
	return p.HeroName == nil && p.HeroTitle == nil && p.AboutHTML == nil &&
		p.Avatar == nil && p.ProjectsHTML == nil
}

// Apply returns old with every supplied field of p overwritten.
func (p ProfilePatch) Apply(old SiteProfile) SiteProfile {
	out := old
	if p.HeroName != nil {
		out.HeroName = *p.HeroName
	}
	if p.HeroTitle != nil {
		out.HeroTitle = *p.HeroTitle
	}
	if p.AboutHTML != nil {
		out.AboutHTML = *p.AboutHTML
	}
	if p.Avatar != nil {
		out.Avatar = *p.Avatar
	}
	if p.ProjectsHTML != nil {
		out.ProjectsHTML = *p.ProjectsHTML
	}
	return out
}
