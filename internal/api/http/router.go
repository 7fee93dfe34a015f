package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-taas/session-service/internal/api/http/handlers"
	"github.com/e-taas/session-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Sellers        *handlers.SellersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/verify-email-otp", cfg.Auth.VerifyEmailOTP)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/verify-password-reset-otp", cfg.Auth.VerifyPasswordResetOTP)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	userGroup := app.Group("/user", cfg.AuthMiddleware.Handle)
	userGroup.Get("/details", cfg.Users.Details)
	userGroup.Put("/update-details", cfg.Users.UpdateDetails)
	userGroup.Post("/logout", cfg.Users.Logout)

	sellerGroup := app.Group("/seller", cfg.AuthMiddleware.Handle)
	sellerGroup.Post("/apply", cfg.Sellers.Apply)
	sellerGroup.Put("/switch-role", cfg.Sellers.SwitchRole)
	sellerGroup.Get("/shop", auth.RequireSeller(), cfg.Sellers.Shop)
}
