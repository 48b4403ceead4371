package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/barengs/smp/pkg/auth"
	"github.com/barengs/smp/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	allowed map[string]bool
	err     error
	calls   int
}

func (s *stubChecker) CheckRolePermission(roleCode, key string) (bool, error) {
	s.calls++
	return s.allowed[roleCode+"|"+key], s.err
}

func newJWT() *auth.JWTManager {
	return auth.NewJWTManager(&config.JWTConfig{Secret: "test-secret", Issuer: "smp", Expire: 3600})
}

func newApp(jwt *auth.JWTManager, checker PermissionChecker) *fiber.App {
	app := fiber.New()
	app.Use(Recovery(), RequestID())
	app.Get("/me", JWTAuth(jwt), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"roleId": GetRoleID(c), "roleCode": GetRoleCode(c), "userId": GetUserID(c)})
	})
	app.Put("/assign", JWTAuth(jwt), RequirePermission(checker, "admin", "system:role:assign"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })
	return app
}

func bearer(t *testing.T, jwt *auth.JWTManager, roleCode string) string {
	t.Helper()
	token, err := jwt.GenerateToken(7, "ustadz", 2, roleCode)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	app := newApp(jwt, &stubChecker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, jwt, "ustadz"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequirePermission(t *testing.T) {
	jwt := newJWT()
	checker := &stubChecker{allowed: map[string]bool{"ustadz|system:role:assign": true}}
	app := newApp(jwt, checker)

	cases := []struct {
		role   string
		status int
	}{
		{"ustadz", http.StatusNoContent},
		{"student", http.StatusForbidden},
		{"admin", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/assign", nil)
			req.Header.Set("Authorization", bearer(t, jwt, tc.role))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
	// admin 不经过 checker
	assert.Equal(t, 2, checker.calls)
}

func TestRequirePermissionCheckerError(t *testing.T) {
	jwt := newJWT()
	app := newApp(jwt, &stubChecker{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodPut, "/assign", nil)
	req.Header.Set("Authorization", bearer(t, jwt, "ustadz"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRecovery(t *testing.T) {
	app := newApp(newJWT(), &stubChecker{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRequestIDPassThrough(t *testing.T) {
	app := newApp(newJWT(), &stubChecker{})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get("X-Request-ID"))
}
