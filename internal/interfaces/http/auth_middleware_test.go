package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	apphttp "github.com/jhoicas/ferreteria-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// stubAuthn resuelve tokens fijos a usuarios; cualquier otro token es inválido.
type stubAuthn map[string]*entity.User

func (s stubAuthn) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if token == "explota" {
		return nil, errors.New("redis caído")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, domain.ErrUnauthorized
}

var testUsers = stubAuthn{
	"tok-admin":  {ID: "u-1", Email: "admin@ferreteria.pe", Role: entity.RoleAdmin},
	"tok-user":   {ID: "u-2", Email: "cliente@ferreteria.pe", Role: entity.RoleUser},
	"tok-sinrol": {ID: "u-3", Email: "raro@ferreteria.pe"},
}

// buildTestApp construye una aplicación Fiber mínima con AuthMiddleware + RequireRole
// y un handler dummy que devuelve 200 si pasa los middlewares.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testUsers),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"ok":     true,
				"role":   apphttp.GetRole(c),
				"userId": apphttp.GetUserID(c),
			})
		},
	)
	app.Get("/optional", apphttp.OptionalAuth(testUsers), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"anonymous": apphttp.GetUser(c) == nil})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	assert.False(t, env.Success)
	return env.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeader(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_TokenDesconocido(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer otro")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_FallaDelDirectorio(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer explota")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "UPSTREAM", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer tok-admin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, "u-1", body["userId"])
}

func TestRequireRole_UsuarioAccedeRutaMultiRol(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin", "user"), "/protected", "Bearer tok-user")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_UsuarioBloqueadoEnRutaAdmin(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer tok-user")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}

func TestRequireRole_SinRol(t *testing.T) {
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer tok-sinrol")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// OptionalAuth
// ──────────────────────────────────────────────────────────────────────────────

func TestOptionalAuth(t *testing.T) {
	app := buildTestApp()

	resp := doRequest(t, app, "/optional", "")
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.True(t, body["anonymous"], "sin header sigue anónimo")

	resp = doRequest(t, app, "/optional", "Bearer tok-user")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.False(t, body["anonymous"])

	resp = doRequest(t, app, "/optional", "Bearer otro")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "token presente pero inválido se rechaza")
}
