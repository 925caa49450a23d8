// Package router sets up all HTTP routes and middleware chains for the
// site. It organizes routes into public, sign-in and admin API groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devfolio/internal/handlers"
	"devfolio/internal/middleware"
	"devfolio/internal/session"
	"devfolio/web"
)

// Handlers are the handler groups the routes dispatch to.
type Handlers struct {
	Public *handlers.Public
	Admin  *handlers.Admin
	Auth   *handlers.Auth
}

// Limiters throttle the endpoints anonymous visitors can hammer.
type Limiters struct {
	Login    *middleware.RateLimiter
	Comments *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. A nil gatherer disables /metrics.
func New(sessionStore *session.Store, h Handlers, lim Limiters, gatherer prometheus.Gatherer, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and metrics: no session, no CSRF.
	r.Get("/healthz", healthHandler)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))
		r.Use(middleware.LoadSession(sessionStore))

		r.NotFound(h.Public.NotFound)

		// Public pages.
		r.Get("/", h.Public.Home)
		r.Get("/skills", h.Public.Skills)
		r.Get("/blog", h.Public.Blog)
		r.Get("/blog/{id}", h.Public.Post)
		r.With(lim.Comments.Middleware).Post("/blog/{id}/comments", h.Public.CommentSubmit)

		// Sign-in flow.
		r.Get(middleware.LoginPath, h.Auth.LoginPage)
		r.With(lim.Login.Middleware).Post(middleware.LoginPath, h.Auth.LoginSubmit)
		r.Get(middleware.TwoFactorPath, h.Auth.TwoFAPage)
		r.With(lim.Login.Middleware).Post(middleware.TwoFactorPath, h.Auth.TwoFASubmit)
		r.Post("/logout", h.Auth.Logout)

		// Admin JSON API: signed in and past the second factor.
		r.Route("/admin/api", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.Admin.ProfileGet)
				r.Patch("/", h.Admin.ProfilePatch)
				r.Delete("/", h.Admin.ProfileReset)
				r.Post("/avatar", h.Admin.ProfileAvatar)
			})

			// ?scope=page selects the skills page list.
			r.Route("/skills", func(r chi.Router) {
				r.Get("/", h.Admin.SkillsList)
				r.Put("/", h.Admin.SkillsReplace)
				r.Post("/", h.Admin.SkillCreate)
				r.Put("/{id}", h.Admin.SkillUpdate)
				r.Delete("/{id}", h.Admin.SkillDelete)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.Admin.PostsList)
				r.Put("/", h.Admin.PostsReplace)
				r.Post("/", h.Admin.PostCreate)
				r.Get("/{id}", h.Admin.PostGet)
				r.Put("/{id}", h.Admin.PostUpdate)
				r.Delete("/{id}", h.Admin.PostDelete)
			})

			r.Post("/images", h.Admin.ImageUpload)
			r.Delete("/2fa", h.Auth.TwoFAReset)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
