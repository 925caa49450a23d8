// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// csrfHandler wraps a handler that echoes the context token.
func csrfHandler(secure bool) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(CSRFTokenFromCtx(r.Context())))
	}))
}

// issueCSRF performs a GET and returns the cookie the middleware sets.
func issueCSRF(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not set")
	return nil
}

func TestCSRFCookieAttributes(t *testing.T) {
	for _, secure := range []bool{true, false} {
		c := issueCSRF(t, csrfHandler(secure))
		require.Equal(t, secure, c.Secure)
		require.Equal(t, http.SameSiteStrictMode, c.SameSite)
		require.False(t, c.HttpOnly, "admin scripts read the token from the cookie")
		require.Len(t, c.Value, 2*csrfTokenLength)
	}
}

func TestCSRFTokenInContext(t *testing.T) {
	h := csrfHandler(false)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blog", nil))
	var issued string
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFCookieName {
			issued = c.Value
		}
	}
	require.NotEmpty(t, issued)
	require.Equal(t, issued, w.Body.String())
}

func TestCSRFKeepsExistingCookie(t *testing.T) {
	h := csrfHandler(false)
	c := issueCSRF(t, h)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(c)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Empty(t, w.Result().Cookies(), "no new cookie when one is present")
	require.Equal(t, c.Value, w.Body.String())
}

func TestCSRFSafeMethodsPass(t *testing.T) {
	h := csrfHandler(false)
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(method, "/admin/api/posts", nil))
		require.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestCSRFRejectsUnsafeMethods(t *testing.T) {
	h := csrfHandler(false)
	c := issueCSRF(t, h)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method+" without token", func(t *testing.T) {
			req := httptest.NewRequest(method, "/admin/api/posts/post_1", nil)
			req.AddCookie(c)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, http.StatusForbidden, w.Code)
		})
		t.Run(method+" wrong token", func(t *testing.T) {
			req := httptest.NewRequest(method, "/admin/api/posts/post_1", nil)
			req.AddCookie(c)
			req.Header.Set(CSRFHeaderName, strings.Repeat("0", 2*csrfTokenLength))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, http.StatusForbidden, w.Code)
		})
		t.Run(method+" header token", func(t *testing.T) {
			req := httptest.NewRequest(method, "/admin/api/posts/post_1", nil)
			req.AddCookie(c)
			req.Header.Set(CSRFHeaderName, c.Value)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestCSRFAcceptsFormField(t *testing.T) {
	h := csrfHandler(false)
	c := issueCSRF(t, h)

	form := url.Values{CSRFFormField: {c.Value}, "content": {"Nice post"}}
	req := httptest.NewRequest(http.MethodPost, "/blog/post_1/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(c)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFRejectsTokenWithoutCookie(t *testing.T) {
	h := csrfHandler(false)
	c := issueCSRF(t, h)

	// A fresh cookie is minted for a cookieless request, so a stale token
	// from elsewhere cannot match it.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(CSRFHeaderName, c.Value)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
