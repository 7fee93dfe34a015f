package dto

import "github.com/e-taas/session-service/internal/domain"

// SellerResponse is the wire shape of a seller profile.
type SellerResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	BusinessName    string  `json:"business_name"`
	BusinessAddress string  `json:"business_address,omitempty"`
	BusinessContact string  `json:"business_contact,omitempty"`
	DisplayName     string  `json:"display_name,omitempty"`
	IsVerified      bool    `json:"is_verified"`
	IsSellerMode    bool    `json:"is_seller_mode"`
	Followers       int     `json:"followers"`
	Ratings         float64 `json:"ratings"`
}

// SellerApplyRequest carries the business fields of a seller application.
type SellerApplyRequest struct {
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
	BusinessContact string `json:"business_contact"`
	DisplayName     string `json:"display_name"`
}

// SwitchRoleRequest toggles seller mode.
type SwitchRoleRequest struct {
	IsSellerMode bool `json:"is_seller_mode"`
}

// FromSellerProfile maps the domain model onto the wire shape.
func FromSellerProfile(profile *domain.SellerProfile) SellerResponse {
	return SellerResponse{
		ID:              profile.ID,
		UserID:          profile.UserID,
		BusinessName:    profile.BusinessName,
		BusinessAddress: profile.BusinessAddress,
		BusinessContact: profile.BusinessContact,
		DisplayName:     profile.DisplayName,
		IsVerified:      profile.IsVerified,
		IsSellerMode:    profile.IsSellerMode,
		Followers:       profile.Followers,
		Ratings:         profile.Ratings,
	}
}
