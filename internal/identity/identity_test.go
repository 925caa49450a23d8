package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"devfolio/internal/localstore"
)

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	local, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return NewDirectory(Account{Email: "Owner@Example.com", PasswordHash: string(hash), DisplayName: "Owner"}, local, true)
}

func TestAuthenticate(t *testing.T) {
	d := newDirectory(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "owner@example.com", "s3cret", false},
		{"email case and spaces", "  OWNER@example.com ", "s3cret", false},
		{"wrong password", "owner@example.com", "nope", true},
		{"wrong email", "other@example.com", "s3cret", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := d.Authenticate(tt.email, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("err = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if u.Email != "owner@example.com" || u.DisplayName != "Owner" || u.UID == "" {
				t.Errorf("user = %+v", u)
			}
		})
	}

	a, _ := d.Authenticate("owner@example.com", "s3cret")
	b, _ := d.Authenticate("owner@example.com", "s3cret")
	if a.UID != b.UID {
		t.Error("UID not stable across logins")
	}
}

func TestTOTPEnrollment(t *testing.T) {
	d := newDirectory(t)

	if d.TOTPEnabled() {
		t.Fatal("fresh directory reports TOTP enabled")
	}
	if ok, _ := d.VerifyTOTP("123456"); ok {
		t.Fatal("verify succeeded without a secret")
	}

	enr, err := d.BeginEnrollment()
	if err != nil {
		t.Fatalf("BeginEnrollment: %v", err)
	}
	if enr.Secret == "" || enr.QRCode == "" {
		t.Fatalf("enrollment = %+v", enr)
	}

	again, err := d.BeginEnrollment()
	if err != nil || again.Secret != enr.Secret {
		t.Errorf("second BeginEnrollment changed secret: %v", err)
	}

	if ok, _ := d.VerifyTOTP("000000x"); ok {
		t.Error("garbage code accepted")
	}

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	ok, err := d.VerifyTOTP(code)
	if err != nil || !ok {
		t.Fatalf("VerifyTOTP valid code = %v, %v", ok, err)
	}
	if !d.TOTPEnabled() {
		t.Error("TOTP not enabled after first valid code")
	}

	if err := d.ResetTOTP(); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	if d.TOTPEnabled() {
		t.Error("TOTP still enabled after reset")
	}
}
