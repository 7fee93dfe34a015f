package dto

import "github.com/e-taas/session-service/internal/domain"

// IdentityResponse is the wire shape of an authenticated principal.
type IdentityResponse struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name,omitempty"`
	MiddleName    string          `json:"middle_name,omitempty"`
	LastName      string          `json:"last_name,omitempty"`
	Address       string          `json:"address,omitempty"`
	ContactNumber string          `json:"contact_number,omitempty"`
	IsAdmin       bool            `json:"is_admin"`
	IsSeller      bool            `json:"is_seller"`
	Seller        *SellerResponse `json:"seller,omitempty"`
}

// UpdateDetailsRequest carries optional profile fields; absent fields are untouched.
type UpdateDetailsRequest struct {
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	Address       *string `json:"address"`
	ContactNumber *string `json:"contact_number"`
}

// FromIdentity maps the domain model onto the wire shape.
func FromIdentity(identity *domain.Identity) IdentityResponse {
	resp := IdentityResponse{
		ID:            identity.ID,
		Username:      identity.Username,
		Email:         identity.Email,
		FirstName:     identity.FirstName,
		MiddleName:    identity.MiddleName,
		LastName:      identity.LastName,
		Address:       identity.Address,
		ContactNumber: identity.ContactNumber,
		IsAdmin:       identity.IsAdmin,
		IsSeller:      identity.IsSeller,
	}
	if identity.Seller != nil {
		seller := FromSellerProfile(identity.Seller)
		resp.Seller = &seller
	}
	return resp
}
