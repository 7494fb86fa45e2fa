package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	app, _ := newTestServer(t)
	cookies := signup(t, app, "grace")

	t.Run("returns the account", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/profile", nil, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			User map[string]any `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "grace", body.User["nickname"])
		assert.Equal(t, "grace@example.com", body.User["email"])
	})

	t.Run("updates nickname and image", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/users/profile", map[string]string{
			"nickname": "gracehopper",
			"image":    "http://localhost:8080/images/avatar.png",
		}, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			User map[string]any `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "gracehopper", body.User["nickname"])
		assert.Equal(t, "http://localhost:8080/images/avatar.png", body.User["image"])
	})

	t.Run("rejects a taken nickname", func(t *testing.T) {
		signup(t, app, "heidi")
		resp := doJSON(t, app, http.MethodPut, "/users/profile", map[string]string{
			"nickname": "heidi",
		}, cookies)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestChangePassword(t *testing.T) {
	app, _ := newTestServer(t)
	cookies := signup(t, app, "ivan")

	t.Run("rejects a wrong current password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/users/password", map[string]string{
			"currentPassword": "Wr0ngpassword",
			"newPassword":     "N3wsecretpass",
		}, cookies)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("changes the password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/users/password", map[string]string{
			"currentPassword": "Sup3rsecret",
			"newPassword":     "N3wsecretpass",
		}, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		// Old password no longer works, the new one does.
		resp = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
			"nickname": "ivan", "password": "Sup3rsecret",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
			"nickname": "ivan", "password": "N3wsecretpass",
		}, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestDeleteAccount(t *testing.T) {
	app, _ := newTestServer(t)
	cookies := signup(t, app, "judy")

	resp := doJSON(t, app, http.MethodDelete, "/users/delete", nil, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	t.Run("old session is rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/profile", nil, cookies)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("credentials no longer log in", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
			"nickname": "judy", "password": "Sup3rsecret",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestMyProductsAndLikes(t *testing.T) {
	app, _ := newTestServer(t)
	seller := signup(t, app, "kara")
	buyer := signup(t, app, "leo")

	product := createProduct(t, app, seller, "guitar", nil)
	article := createArticle(t, app, seller, "gear talk")

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/products/%d/like", product.ID), nil, buyer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/articles/%d/like", article.ID), nil, buyer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	t.Run("own listings", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/products", nil, seller)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var page struct {
			Data  []productBody `json:"data"`
			Total int64         `json:"total"`
		}
		decodeBody(t, resp, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "guitar", page.Data[0].Name)

		// The buyer owns nothing.
		resp = doJSON(t, app, http.MethodGet, "/users/products", nil, buyer)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &page)
		assert.Empty(t, page.Data)
	})

	t.Run("own articles", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/articles", nil, seller)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var page struct {
			Data  []articleBody `json:"data"`
			Total int64         `json:"total"`
		}
		decodeBody(t, resp, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "gear talk", page.Data[0].Title)

		// The buyer wrote nothing.
		resp = doJSON(t, app, http.MethodGet, "/users/articles", nil, buyer)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &page)
		assert.Empty(t, page.Data)
	})

	t.Run("liked products", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/likes/products", nil, buyer)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var page struct {
			Data []productBody `json:"data"`
		}
		decodeBody(t, resp, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "guitar", page.Data[0].Name)
		assert.True(t, page.Data[0].IsLiked)
	})

	t.Run("liked articles", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/users/likes/articles", nil, buyer)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var page struct {
			Data []articleBody `json:"data"`
		}
		decodeBody(t, resp, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "gear talk", page.Data[0].Title)
	})
}
