package session

// Identity is the authenticated user record held by the client.
type Identity struct {
	ID            string         `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name,omitempty"`
	MiddleName    string         `json:"middle_name,omitempty"`
	LastName      string         `json:"last_name,omitempty"`
	Address       string         `json:"address,omitempty"`
	ContactNumber string         `json:"contact_number,omitempty"`
	IsAdmin       bool           `json:"is_admin"`
	IsSeller      bool           `json:"is_seller"`
	Seller        *SellerProfile `json:"seller,omitempty"`
}

// SellerProfile carries seller-specific attributes and the capability-mode flag.
type SellerProfile struct {
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

// VerifiedSeller reports whether the identity may enter seller mode.
func (i *Identity) VerifiedSeller() bool {
	return i != nil && i.IsSeller && i.Seller != nil && i.Seller.IsVerified
}

// Clone returns a deep copy so published snapshots cannot be mutated by callers.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	copied := *i
	if i.Seller != nil {
		seller := *i.Seller
		copied.Seller = &seller
	}
	return &copied
}

// Status enumerates the session lifecycle states.
type Status int

const (
	StatusUninitialized Status = iota
	StatusRestoring
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the process-wide authentication state.
// Identity is non-nil exactly when Status is StatusAuthenticated.
type Session struct {
	Status   Status
	Identity *Identity
	Err      error
}
