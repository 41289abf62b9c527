package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eclat-salon/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(tokens *jwt.Manager, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{AuthMiddleware(tokens)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.JSON(fiber.Map{"id": id, "admin": IsAdmin(c)})
	})
	app.Get("/private", handlers...)
	return app
}

func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Error
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewManager("access", "refresh", time.Minute, time.Hour)
	app := newAuthApp(tokens)

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Access token required", errorOf(t, resp))
	})

	t.Run("bearer header", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(7, "ana@example.com", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out struct {
			ID    uint `json:"id"`
			Admin bool `json:"admin"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, uint(7), out.ID)
		assert.False(t, out.Admin)
	})

	t.Run("cookie", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(7, "ana@example.com", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewManager("other", "other", time.Minute, time.Hour)
		token, err := other.GenerateAccessToken(7, "ana@example.com", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid access token", errorOf(t, resp))
	})

	t.Run("expired", func(t *testing.T) {
		stale := jwt.NewManager("access", "refresh", -time.Minute, time.Hour)
		token, err := stale.GenerateAccessToken(7, "ana@example.com", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Access token expired", errorOf(t, resp))
	})
}

func TestAdminOnly(t *testing.T) {
	tokens := jwt.NewManager("access", "refresh", time.Minute, time.Hour)
	app := newAuthApp(tokens, AdminOnly())

	cases := []struct {
		role string
		want int
	}{
		{"user", fiber.StatusForbidden},
		{"admin", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			token, err := tokens.GenerateAccessToken(1, "x@example.com", tc.role)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := jwt.NewManager("access", "refresh", time.Minute, time.Hour)
	app := fiber.New()
	app.Get("/", OptionalAuth(tokens), func(c *fiber.Ctx) error {
		_, ok := UserID(c)
		return c.JSON(fiber.Map{"authenticated": ok})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Authenticated)
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/catalog", CacheControl(time.Minute), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing", CacheControl(time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/slots", NoCacheHeaders(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, "public, max-age=60", resp.Header.Get(fiber.HeaderCacheControl))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get(fiber.HeaderCacheControl))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/slots", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get(fiber.HeaderCacheControl))
}
