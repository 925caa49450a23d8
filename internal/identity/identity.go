// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity checks the site owner's credentials. The account itself
// comes from configuration; the TOTP secret enrolled on first sign-in is
// kept in the local store.
package identity

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"devfolio/internal/localstore"
	"devfolio/internal/models"
)

// ErrInvalidCredentials is returned for a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// keyTOTP holds the enrolled second factor.
const keyTOTP = "admin_totp"

// Issuer labels the account in authenticator apps.
const Issuer = "DevFolio"

// Account is the configured site owner.
type Account struct {
	Email        string
	PasswordHash string // bcrypt
	DisplayName  string
}

type totpState struct {
	Secret  string `json:"secret"`
	Enabled bool   `json:"enabled"`
}

// Directory authenticates the site owner.
type Directory struct {
	account    Account
	local      *localstore.Store
	require2FA bool
}

// NewDirectory returns a Directory for account. With require2FA, a login
// is only complete after a valid TOTP code.
func NewDirectory(account Account, local *localstore.Store, require2FA bool) *Directory {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return &Directory{account: account, local: local, require2FA: require2FA}
}

// Authenticate returns the user for a matching email and password.
func (d *Directory) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(d.account.Email)) == 1

	// Always run bcrypt so a wrong email costs as much as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword([]byte(d.account.PasswordHash), []byte(password))
	if !emailOK || pwErr != nil || d.account.Email == "" {
		return nil, ErrInvalidCredentials
	}
	return d.user(), nil
}

func (d *Directory) user() *models.User {
	return &models.User{
		UID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+d.account.Email)).String(),
		DisplayName: d.account.DisplayName,
		Email:       d.account.Email,
	}
}

// Requires2FA reports whether logins need a TOTP code.
func (d *Directory) Requires2FA() bool {
	return d.require2FA
}

// TOTPEnabled reports whether a second factor has been enrolled.
func (d *Directory) TOTPEnabled() bool {
	var st totpState
	return d.local.Get(keyTOTP, &st) && st.Enabled
}

// Enrollment is what the setup page shows.
type Enrollment struct {
	Secret string
	QRCode string // base64 PNG
}

// BeginEnrollment returns the pending secret, generating and storing one
// if none exists yet.
func (d *Directory) BeginEnrollment() (*Enrollment, error) {
	var st totpState
	if d.local.Get(keyTOTP, &st) && st.Secret != "" {
		return d.enrollment(st.Secret)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: d.account.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}
	if err := d.local.Set(keyTOTP, totpState{Secret: key.Secret()}); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}
	return d.enrollment(key.Secret())
}

func (d *Directory) enrollment(secret string) (*Enrollment, error) {
	key, err := otp.NewKeyFromURL(fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		Issuer, d.account.Email, secret, Issuer))
	if err != nil {
		return nil, fmt.Errorf("totp key: %w", err)
	}
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return &Enrollment{Secret: secret, QRCode: base64.StdEncoding.EncodeToString(png)}, nil
}

// VerifyTOTP checks code against the stored secret. The first valid code
// completes enrollment.
func (d *Directory) VerifyTOTP(code string) (bool, error) {
	var st totpState
	if !d.local.Get(keyTOTP, &st) || st.Secret == "" {
		return false, nil
	}
	if !totp.Validate(strings.TrimSpace(code), st.Secret) {
		return false, nil
	}
	if !st.Enabled {
		st.Enabled = true
		if err := d.local.Set(keyTOTP, st); err != nil {
			return false, fmt.Errorf("enable totp: %w", err)
		}
	}
	return true, nil
}

// ResetTOTP forgets the enrolled factor; the next login enrolls again.
func (d *Directory) ResetTOTP() error {
	return d.local.Remove(keyTOTP)
}
