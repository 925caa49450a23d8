// Package models defines the records the site persists and the identity
// passed into every write.
package models

// User is the signed-in identity. A nil *User means an anonymous visitor.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// AuthorName is the name shown on comments: display name, then email,
// then "Anonymous" for nil or nameless users.
func (u *User) AuthorName() string {
	switch {
	case u == nil:
		return "Anonymous"
	case u.DisplayName != "":
		return u.DisplayName
	case u.Email != "":
		return u.Email
	default:
		return "Anonymous"
	}
}
