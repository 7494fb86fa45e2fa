package server

import (
	"net/http"
	"testing"

	"fleamart/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, _ := newTestServer(t)

	t.Run("creates an account", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
			"email":    "alice@example.com",
			"nickname": "alice",
			"password": "Sup3rsecret",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			User map[string]any `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "alice", body.User["nickname"])
		assert.Equal(t, "alice@example.com", body.User["email"])
		assert.NotContains(t, body.User, "password")
	})

	t.Run("rejects a duplicate nickname", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
			"email":    "alice2@example.com",
			"nickname": "alice",
			"password": "Sup3rsecret",
		}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects a weak password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
			"email":    "bob@example.com",
			"nickname": "bob",
			"password": "short",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestLogin(t *testing.T) {
	app, _ := newTestServer(t)

	resp := doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
		"email":    "carol@example.com",
		"nickname": "carol",
		"password": "Sup3rsecret",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	t.Run("sets httpOnly session cookies", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
			"nickname": "carol",
			"password": "Sup3rsecret",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		byName := map[string]*http.Cookie{}
		for _, cookie := range resp.Cookies() {
			byName[cookie.Name] = cookie
		}
		for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
			cookie, ok := byName[name]
			require.True(t, ok, "missing cookie %s", name)
			assert.NotEmpty(t, cookie.Value)
			assert.True(t, cookie.HttpOnly)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
			"nickname": "carol",
			"password": "Wr0ngpassword",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, resp.Cookies())
		_ = resp.Body.Close()
	})

	t.Run("rejects an unknown nickname", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
			"nickname": "nobody",
			"password": "Sup3rsecret",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestRefresh(t *testing.T) {
	app, _ := newTestServer(t)
	cookies := signup(t, app, "dave")

	t.Run("reissues both cookies", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/refresh", nil, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		names := map[string]bool{}
		for _, cookie := range resp.Cookies() {
			if cookie.Value != "" {
				names[cookie.Name] = true
			}
		}
		assert.True(t, names[middleware.AccessTokenCookie])
		assert.True(t, names[middleware.RefreshTokenCookie])
	})

	t.Run("fails without a refresh cookie", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/refresh", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fails with a garbage token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/refresh", nil, []*http.Cookie{
			{Name: middleware.RefreshTokenCookie, Value: "not-a-jwt"},
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestLogout(t *testing.T) {
	app, _ := newTestServer(t)
	cookies := signup(t, app, "erin")

	resp := doJSON(t, app, http.MethodPost, "/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		assert.Empty(t, cookie.Value, "cookie %s should be cleared", cookie.Name)
	}
}

func TestAuthRequiredMiddleware(t *testing.T) {
	app, _ := newTestServer(t)

	t.Run("rejects requests without a token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/profile", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/profile", nil, []*http.Cookie{
			{Name: middleware.AccessTokenCookie, Value: "bogus"},
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("accepts a fresh session", func(t *testing.T) {
		cookies := signup(t, app, "frank")
		resp := doJSON(t, app, http.MethodGet, "/users/profile", nil, cookies)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
