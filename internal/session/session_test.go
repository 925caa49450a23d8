package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"devfolio/internal/models"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, true), mr
}

// requestWithCookies copies the cookies a handler set onto a new request.
func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionCreateAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	w := httptest.NewRecorder()

	user := &models.User{UID: "u1", DisplayName: "Owner", Email: "owner@example.com"}
	id, err := store.Create(ctx, w, NewData(user))
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.True(t, mr.Exists(keyPrefix+id))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)

	got, err := store.Get(ctx, requestWithCookies(w))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "owner@example.com", got.Email)
	require.False(t, got.TwoFADone)
	require.Nil(t, got.User(), "half-finished login must read as anonymous")
}

func TestSessionUpdateCompletesLogin(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	w := httptest.NewRecorder()

	_, err := store.Create(ctx, w, NewData(&models.User{UID: "u1", Email: "a@b.c"}))
	require.NoError(t, err)

	r := requestWithCookies(w)
	data, err := store.Get(ctx, r)
	require.NoError(t, err)

	data.TwoFADone = true
	require.NoError(t, store.Update(ctx, r, data))

	again, err := store.Get(ctx, r)
	require.NoError(t, err)
	u := again.User()
	require.NotNil(t, u)
	require.Equal(t, "u1", u.UID)
}

func TestSessionGetWithoutCookie(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.Get(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	w := httptest.NewRecorder()

	_, err := store.Create(ctx, w, NewData(&models.User{UID: "u1"}))
	require.NoError(t, err)

	mr.FastForward(DefaultTTL + 1)

	got, err := store.Get(ctx, requestWithCookies(w))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionDestroy(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	w := httptest.NewRecorder()

	id, err := store.Create(ctx, w, NewData(&models.User{UID: "u1"}))
	require.NoError(t, err)

	r := requestWithCookies(w)
	out := httptest.NewRecorder()
	require.NoError(t, store.Destroy(ctx, out, r))
	require.False(t, mr.Exists(keyPrefix+id))

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)
}
