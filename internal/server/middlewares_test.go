package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"consumerwise/internal/auth"
	logpkg "consumerwise/internal/logger"
	"consumerwise/internal/model"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) Server {
	t.Helper()
	key, err := jwk.FromRaw([]byte("test-secret-key-0123456789abcdef"))
	require.NoError(t, err)
	return Server{
		Logger: logpkg.NewLogger(logpkg.LevelOff, io.Discard),
		Issuer: auth.Issuer{Key: key, TTL: time.Hour},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMwRejectsUnauthenticated(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	tests := []struct {
		name       string
		decorate   func(r *http.Request)
		wantStatus int
		wantHeader string
	}{
		{
			name:       "no token for API client",
			decorate:   func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "no token for browser redirects to sign-in",
			decorate: func(r *http.Request) {
				r.Header.Set("Accept", "text/html,application/xhtml+xml")
			},
			wantStatus: http.StatusSeeOther,
			wantHeader: "/signin",
		},
		{
			name: "garbage bearer token",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-token")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage session cookie",
			decorate: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session", Value: "not-a-token"})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			decorate: func(r *http.Request) {
				expired := auth.Issuer{Key: s.Issuer.Key, TTL: -time.Minute}
				token, _, _, err := expired.Issue("subject-1", model.RoleRetailer)
				require.NoError(t, err)
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
			tt.decorate(req)
			rec := httptest.NewRecorder()

			s.authMw(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantHeader != "" {
				assert.Equal(t, tt.wantHeader, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	newRequest := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/company", nil)
		sc := sessionContext{
			session: auth.Session{SubjectID: "subject-1", Role: role, TokenID: "token-1"},
		}
		return req.WithContext(setSessionContext(req.Context(), sc))
	}

	t.Run("matching role passes", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		s.adminOnly(okHandler()).ServeHTTP(rec, newRequest(model.RoleAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		s.adminOnly(okHandler()).ServeHTTP(rec, newRequest(model.RoleRetailer))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		s.retailerOnly(okHandler()).ServeHTTP(rec, newRequest(model.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing session context is an internal error", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/company", nil)
		s.adminOnly(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, tokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	assert.Equal(t, "cookie-token", tokenFromRequest(req))

	// The Authorization header wins over the cookie.
	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", tokenFromRequest(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "cookie-token", tokenFromRequest(req))
}

func TestMaxBytesMw(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	drain := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.Copy(io.Discard, r.Body); err != nil {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	post := func(h http.Handler, size int) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(make([]byte, size)))
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("json routes stay small", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusOK, post(s.maxBytesMw(drain), 1000))
		assert.Equal(t, http.StatusRequestEntityTooLarge, post(s.maxBytesMw(drain), 40000))
	})

	t.Run("uploads get a raised limit", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusOK, post(s.uploadMaxBytesMw(drain), 40000))
		assert.Equal(t, http.StatusOK, post(s.uploadMaxBytesMw(drain), 1<<20))
		assert.Equal(t, http.StatusRequestEntityTooLarge, post(s.uploadMaxBytesMw(drain), 11<<20))
	})
}

func TestLoggingMwRecoversFromPanic(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/item/list", nil)
	s.loggingMw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
