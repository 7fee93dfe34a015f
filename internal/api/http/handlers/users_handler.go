package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/e-taas/session-service/internal/api/dto"
	"github.com/e-taas/session-service/internal/auth"
	"github.com/e-taas/session-service/internal/service"
	apperrors "github.com/e-taas/session-service/pkg/util/errorutil"
)

// UsersHandler exposes profile endpoints for authenticated users.
type UsersHandler struct {
	users        *service.UserService
	auth         *service.AuthService
	logger       *zap.Logger
	cookieSecure bool
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, authService *service.AuthService, logger *zap.Logger, cookieSecure bool) *UsersHandler {
	return &UsersHandler{users: userService, auth: authService, logger: logger, cookieSecure: cookieSecure}
}

// Details handles GET /user/details.
func (h *UsersHandler) Details(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.FromIdentity(identity)})
}

// UpdateDetails handles PUT /user/update-details.
func (h *UsersHandler) UpdateDetails(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.users.UpdateDetails(c.Context(), identity.ID, service.UpdateDetailsInput{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIdentity(updated)})
}

// Logout handles POST /user/logout. The refresh credential is revoked and
// both cookies are cleared; a revocation failure is logged but the client
// still ends up signed out.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := c.Cookies(auth.RefreshTokenCookie); refreshToken != "" {
		if err := h.auth.Logout(c.Context(), refreshToken); err != nil {
			h.logger.Warn("refresh token revocation failed", zap.Error(err))
		}
	}
	ClearAuthCookies(c, h.cookieSecure)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
