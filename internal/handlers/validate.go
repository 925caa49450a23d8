package handlers

import (
	"strings"
	"unicode/utf8"
)

// Request limits checked before anything reaches a store.
const (
	maxEmailLen    = 254
	maxPasswordLen = 256
	maxQueryLen    = 100
	totpCodeLen    = 6
)

// validateLogin checks the sign-in form and returns the first error found.
func validateLogin(email, password string) string {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "Email and password are required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen || !strings.Contains(email, "@") {
		return "Enter a valid email address."
	}
	if len(password) > maxPasswordLen {
		return "Invalid email or password."
	}
	return ""
}

// validateTOTPCode checks that code is six ASCII digits.
func validateTOTPCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) != totpCodeLen {
		return "Enter the 6-digit code from your authenticator app."
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return "Enter the 6-digit code from your authenticator app."
		}
	}
	return ""
}

// skillScope maps the ?scope= parameter to a skills collection name.
// Unknown values are rejected so a typo never writes to the wrong list.
func skillScope(raw string) (string, bool) {
	switch raw {
	case "", "home":
		return "home", true
	case "page":
		return "page", true
	default:
		return "", false
	}
}

// trimQuery bounds a search or focus parameter.
func trimQuery(q string) string {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) > maxQueryLen {
		q = string([]rune(q)[:maxQueryLen])
	}
	return q
}
