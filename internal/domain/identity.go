package domain

import "time"

// Identity is the domain model for an authenticated marketplace principal.
type Identity struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	FirstName     string
	MiddleName    string
	LastName      string
	Address       string
	ContactNumber string
	IsAdmin       bool
	IsSeller      bool
	Seller        *SellerProfile
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SellerProfile holds seller-specific attributes of an Identity.
// It exists only while the owning Identity has IsSeller set.
type SellerProfile struct {
	ID              string
	UserID          string
	BusinessName    string
	BusinessAddress string
	BusinessContact string
	DisplayName     string
	IsVerified      bool
	IsSellerMode    bool
	Followers       int
	Ratings         float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
