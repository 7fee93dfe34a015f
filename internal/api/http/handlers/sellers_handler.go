package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/e-taas/session-service/internal/api/dto"
	"github.com/e-taas/session-service/internal/auth"
	"github.com/e-taas/session-service/internal/service"
	apperrors "github.com/e-taas/session-service/pkg/util/errorutil"
)

// SellersHandler exposes seller application and role switch endpoints.
type SellersHandler struct {
	sellers *service.SellerService
}

// NewSellersHandler constructs handler.
func NewSellersHandler(sellerService *service.SellerService) *SellersHandler {
	return &SellersHandler{sellers: sellerService}
}

// Apply handles POST /seller/apply.
func (h *SellersHandler) Apply(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required to apply as a seller")
	}

	var req dto.SellerApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.BusinessName == "" {
		return apperrors.NewValidationError("business_name required", nil)
	}

	profile, err := h.sellers.Apply(c.Context(), identity, service.ApplyInput{
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		BusinessContact: req.BusinessContact,
		DisplayName:     req.DisplayName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromSellerProfile(profile)})
}

// SwitchRole handles PUT /seller/switch-role. The response carries the
// persisted seller profile; clients must not flip the flag before it arrives.
func (h *SellersHandler) SwitchRole(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SwitchRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	profile, err := h.sellers.SwitchRole(c.Context(), identity.ID, req.IsSellerMode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSellerProfile(profile)})
}

// Shop handles GET /seller/shop.
func (h *SellersHandler) Shop(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	profile, err := h.sellers.Shop(c.Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSellerProfile(profile)})
}
