package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/e-taas/session-service/internal/api/dto"
	"github.com/e-taas/session-service/internal/auth"
	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/service"
	apperrors "github.com/e-taas/session-service/pkg/util/errorutil"
)

// AuthHandler exposes credential lifecycle endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: authService, cookieSecure: cookieSecure}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email and password required", nil)
	}

	if err := h.auth.BeginRegistration(c.Context(), req.Username, req.Email); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "An OTP has been sent to your email for verification.",
	})
}

// VerifyEmailOTP handles POST /auth/verify-email-otp.
func (h *AuthHandler) VerifyEmailOTP(c *fiber.Ctx) error {
	var req dto.VerifyEmailOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.OTP == "" {
		return apperrors.NewValidationError("username, email, password and otp required", nil)
	}

	identity, err := h.auth.VerifyEmailOTP(c.Context(), req.Username, req.Email, req.Password, req.OTP)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"data":    dto.FromIdentity(identity),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	identity, pair, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, pair)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.FromIdentity(identity),
			"auth": dto.TokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"},
		},
	})
}

// Refresh handles POST /auth/refresh. The refresh credential is read from the
// httpOnly cookie and rotated on every successful call.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(auth.RefreshTokenCookie)
	if refreshToken == "" {
		return apperrors.NewUnauthorized("no refresh token")
	}

	pair, err := h.auth.Refresh(c.Context(), refreshToken)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, pair)
	return c.JSON(fiber.Map{
		"data": dto.TokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"},
	})
}

// ForgotPassword handles POST /auth/forgot-password?email=.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.auth.ForgotPassword(c.Context(), email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "An OTP has been sent to your email for password reset.",
	})
}

// VerifyPasswordResetOTP handles POST /auth/verify-password-reset-otp.
func (h *AuthHandler) VerifyPasswordResetOTP(c *fiber.Ctx) error {
	var req dto.VerifyResetOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.OTP == "" {
		return apperrors.NewValidationError("email and otp required", nil)
	}

	if err := h.auth.VerifyPasswordResetOTP(c.Context(), req.Email, req.OTP); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "OTP verified successfully"})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("email and new_password required", nil)
	}

	if err := h.auth.ResetPassword(c.Context(), req.Email, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, pair *domain.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    pair.AccessToken,
		Expires:  pair.AccessExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Expires:  pair.RefreshExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// ClearAuthCookies expires both credential cookies.
func ClearAuthCookies(c *fiber.Ctx, secure bool) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  expired,
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
	}
}
