package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"devfolio/internal/identity"
	"devfolio/internal/middleware"
	"devfolio/internal/render"
	"devfolio/internal/session"
)

// Auth groups the sign-in handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	directory *identity.Directory
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, directory *identity.Directory) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		directory: directory,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in with 2FA complete.
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{Title: "Sign In"})
}

// LoginSubmit checks the credentials and starts a session. When a second
// factor is required the session stays incomplete until /login/2fa.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if msg := validateLogin(email, password); msg != "" {
		a.loginError(w, r, http.StatusUnprocessableEntity, email, msg)
		return
	}

	user, err := a.directory.Authenticate(email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		slog.Info("login rejected", "email", email)
		a.loginError(w, r, http.StatusUnauthorized, email, "Invalid email or password.")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		a.loginError(w, r, http.StatusInternalServerError, email, "An unexpected error occurred.")
		return
	}

	data := session.NewData(user)
	data.TwoFADone = !a.directory.Requires2FA()
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data.TwoFADone {
		slog.Info("owner signed in", "email", user.Email)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.TwoFactorPath, http.StatusSeeOther)
}

func (a *Auth) loginError(w http.ResponseWriter, r *http.Request, status int, email, msg string) {
	a.renderer.PageStatus(w, r, status, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Error": msg, "Email": email},
	})
}

// TwoFAPage shows the enrollment QR code the first time, and the plain
// code form once a factor is enrolled.
func (a *Auth) TwoFAPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.twoFAForm(w, r, http.StatusOK, "")
}

// TwoFASubmit checks the TOTP code and completes the session.
func (a *Auth) TwoFASubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	code := r.FormValue("code")
	if msg := validateTOTPCode(code); msg != "" {
		a.twoFAForm(w, r, http.StatusUnprocessableEntity, msg)
		return
	}

	ok, err := a.directory.VerifyTOTP(code)
	if err != nil {
		slog.Error("totp verify failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ok {
		a.twoFAForm(w, r, http.StatusUnauthorized, "Invalid code. Please try again.")
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("owner signed in", "email", sess.Email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Auth) twoFAForm(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	if a.directory.TOTPEnabled() {
		a.renderer.PageStatus(w, r, status, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": errMsg},
		})
		return
	}

	enroll, err := a.directory.BeginEnrollment()
	if err != nil {
		slog.Error("totp enrollment failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.PageStatus(w, r, status, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": enroll.QRCode,
			"Secret": enroll.Secret,
			"Error":  errMsg,
		},
	})
}

// TwoFAReset forgets the enrolled authenticator so the next sign-in
// enrolls a new one. The current session stays valid.
func (a *Auth) TwoFAReset(w http.ResponseWriter, r *http.Request) {
	if err := a.directory.ResetTOTP(); err != nil {
		slog.Error("totp reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not reset two-factor authentication.")
		return
	}
	slog.Info("totp reset", "user", middleware.UserFromCtx(r.Context()).Email)
	writeJSON(w, http.StatusOK, map[string]bool{"totpEnabled": false})
}

// Logout destroys the session and returns to the home page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
