package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// Locals keys para la identidad autenticada en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalUser   = "user"
)

// Authenticator resuelve un bearer token a un usuario conocido. Lo implementa *auth.AuthUseCase.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// AuthMiddleware exige un Bearer Token válido de un usuario existente y deja la
// identidad en c.Locals.
func AuthMiddleware(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return fail(c, fiber.StatusUnauthorized, CodeMissingToken, "Authorization header requerido")
		}
		return authenticate(c, authn)
	}
}

// OptionalAuth carga la identidad si viene el header; sin header la petición sigue anónima.
// Un token presente pero inválido sí se rechaza.
func OptionalAuth(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return authenticate(c, authn)
	}
}

func authenticate(c *fiber.Ctx, authn Authenticator) error {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return fail(c, fiber.StatusUnauthorized, CodeInvalidToken, "formato: Bearer <token>")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return fail(c, fiber.StatusUnauthorized, CodeMissingToken, "token vacío")
	}
	user, err := authn.Authenticate(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return fail(c, fiber.StatusUnauthorized, CodeInvalidToken, "token inválido o expirado")
		}
		return fail(c, fiber.StatusInternalServerError, CodeUpstream, err.Error())
	}
	c.Locals(LocalUserID, user.ID)
	c.Locals(LocalRole, user.Role)
	c.Locals(LocalUser, user)
	return c.Next()
}

// RequireRole autoriza solo a los roles indicados. Debe ir después de AuthMiddleware.
// Sin rol en el contexto responde 401 MISSING_ROLE; con otro rol, 403 FORBIDDEN.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return fail(c, fiber.StatusUnauthorized, CodeMissingRole, "la identidad no tiene rol asignado")
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return fail(c, fiber.StatusForbidden, CodeForbidden, "acceso denegado para el rol "+role)
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetUser devuelve el usuario autenticado o nil en peticiones anónimas.
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}
