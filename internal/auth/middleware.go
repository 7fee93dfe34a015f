package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/repository"
	apperrors "github.com/e-taas/session-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "access_token"

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refresh_token"

// AuthMiddleware validates access tokens and loads the caller's identity.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. The access token is
// accepted from the httpOnly cookie or an Authorization bearer header.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := tokenFromRequest(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing access token")
	}

	claims, err := m.tokens.ParseToken(tokenStr, domain.TokenKindAccess)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	identity, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

// RequireSeller ensures the caller has seller capability.
func RequireSeller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !identity.IsSeller || identity.Seller == nil {
			return apperrors.NewNotASeller("seller capability required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !identity.IsAdmin {
			return apperrors.NewForbidden("admin required")
		}
		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
