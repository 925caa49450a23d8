// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests: an in-memory local store, an in-memory remote, miniredis for
// sessions and the page cache, and a chi router wired like production.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devfolio/internal/cache"
	"devfolio/internal/identity"
	"devfolio/internal/localstore"
	"devfolio/internal/middleware"
	"devfolio/internal/models"
	"devfolio/internal/remote"
	"devfolio/internal/render"
	"devfolio/internal/session"
	"devfolio/internal/storage"
	"devfolio/internal/store"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct horse battery staple"
)

var owner = &models.User{UID: "owner-1", DisplayName: "Site Owner", Email: ownerEmail}

// fakeUploader records uploads and can be told to fail.
type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeUploader) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

// tickingClock returns a clock that advances one second per call, so
// records created back to back sort deterministically.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// testEnv holds everything a handler test needs.
type testEnv struct {
	local     *localstore.Store
	remote    *remote.Memory
	redis     *miniredis.Miniredis
	stores    Stores
	pageCache *cache.PageCache
	sessions  *session.Store
	directory *identity.Directory
	uploader  *fakeUploader
	router    chi.Router
}

func newTestEnv(t *testing.T, require2FA bool) *testEnv {
	t.Helper()

	local, err := localstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	mem := remote.NewMemory()
	opts := store.Options{Remote: mem, Timeout: time.Second, Now: tickingClock()}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.MinCost)
	require.NoError(t, err)

	renderer, err := render.New()
	require.NoError(t, err)

	env := &testEnv{
		local:  local,
		remote: mem,
		redis:  mr,
		stores: Stores{
			Profile:    store.NewProfileStore(local, opts),
			Skills:     store.NewSkillStore(local, localstore.KeySkills, opts),
			PageSkills: store.NewSkillStore(local, localstore.KeySkillsPage, opts),
			Posts:      store.NewPostStore(local, opts),
			Comments:   store.NewCommentStore(local, opts),
		},
		pageCache: cache.NewPageCache(client, time.Minute),
		sessions:  session.NewStore(client, false),
		directory: identity.NewDirectory(identity.Account{
			Email:        ownerEmail,
			PasswordHash: string(hash),
			DisplayName:  "Site Owner",
		}, local, require2FA),
		uploader: &fakeUploader{},
	}

	public := NewPublic(renderer, env.stores, env.pageCache)
	admin := NewAdmin(env.stores, storage.NewImages(env.uploader), env.pageCache)
	auth := NewAuth(renderer, env.sessions, env.directory)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(env.sessions))
	r.NotFound(public.NotFound)
	r.Get("/", public.Home)
	r.Get("/skills", public.Skills)
	r.Get("/blog", public.Blog)
	r.Get("/blog/{id}", public.Post)
	r.Post("/blog/{id}/comments", public.CommentSubmit)
	r.Get("/login", auth.LoginPage)
	r.Post("/login", auth.LoginSubmit)
	r.Get("/login/2fa", auth.TwoFAPage)
	r.Post("/login/2fa", auth.TwoFASubmit)
	r.Post("/logout", auth.Logout)
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Get("/profile", admin.ProfileGet)
		r.Patch("/profile", admin.ProfilePatch)
		r.Delete("/profile", admin.ProfileReset)
		r.Post("/profile/avatar", admin.ProfileAvatar)
		r.Get("/skills", admin.SkillsList)
		r.Put("/skills", admin.SkillsReplace)
		r.Post("/skills", admin.SkillCreate)
		r.Put("/skills/{id}", admin.SkillUpdate)
		r.Delete("/skills/{id}", admin.SkillDelete)
		r.Get("/posts", admin.PostsList)
		r.Put("/posts", admin.PostsReplace)
		r.Post("/posts", admin.PostCreate)
		r.Get("/posts/{id}", admin.PostGet)
		r.Put("/posts/{id}", admin.PostUpdate)
		r.Delete("/posts/{id}", admin.PostDelete)
		r.Post("/images", admin.ImageUpload)
		r.Delete("/2fa", auth.TwoFAReset)
	})
	env.router = r

	return env
}

// signIn creates a completed owner session and returns its cookie.
func (e *testEnv) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	data := session.NewData(owner)
	data.TwoFADone = true
	_, err := e.sessions.Create(context.Background(), w, data)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// do sends a request through the router with optional cookies.
func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if strings.HasPrefix(target, "/admin/api/") {
		r.Header.Set("Accept", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

// doJSON sends a JSON body as the signed-in owner.
func (e *testEnv) doJSON(t *testing.T, cookie *http.Cookie, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	return e.do(t, method, target, rd, "application/json", cookie)
}

// apiResponse mirrors writeResponse and readResponse for decoding.
type apiResponse struct {
	Data         json.RawMessage `json:"data"`
	Source       string          `json:"source"`
	Sync         syncStatus      `json:"sync"`
	ImageDropped bool            `json:"imageDropped"`
	Notice       string          `json:"notice"`
	Error        string          `json:"error"`
}

func decodeAPI(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}
