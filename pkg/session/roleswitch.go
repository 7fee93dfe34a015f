package session

import (
	"context"
	"net/http"
	"sync"
)

// RoleSwitcher coordinates the mutually exclusive buyer/seller capability
// mode. The flag is mutated only after the backend confirms the change, so
// subscribers never observe a locally-guessed intermediate value. Concurrent
// switches are serialized: a second call queues after the one in flight and
// the final state is always the most recent server-confirmed response.
type RoleSwitcher struct {
	mu      sync.Mutex
	manager *Manager
	gw      *Gateway
}

// NewRoleSwitcher builds the coordinator.
func NewRoleSwitcher(manager *Manager, gw *Gateway) *RoleSwitcher {
	return &RoleSwitcher{manager: manager, gw: gw}
}

// SwitchMode toggles seller mode with server confirmation. Switching into
// seller mode requires a verified seller profile; switching into buyer mode
// has no precondition. On failure the identity is left unchanged.
func (r *RoleSwitcher) SwitchMode(ctx context.Context, targetIsSeller bool) (*SellerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.manager.State()
	if sess.Status != StatusAuthenticated {
		return nil, ErrNoValidSession
	}
	if targetIsSeller && !sess.Identity.VerifiedSeller() {
		return nil, ErrNotASeller
	}

	var resp struct {
		Data SellerProfile `json:"data"`
	}
	err := r.gw.Do(ctx, AreaSeller, http.MethodPut, "/switch-role", map[string]bool{
		"is_seller_mode": targetIsSeller,
	}, &resp)
	if err != nil {
		return nil, err
	}

	r.manager.MergeSellerProfile(&resp.Data)
	return &resp.Data, nil
}

// Apply submits a seller application. On success the returned profile is
// unverified and merged into the identity with seller capability granted.
type ApplyInput struct {
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address,omitempty"`
	BusinessContact string `json:"business_contact,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
}

// Apply submits the seller application through the authenticated gateway.
func (r *RoleSwitcher) Apply(ctx context.Context, input ApplyInput) (*SellerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.manager.State()
	if sess.Status != StatusAuthenticated {
		return nil, ErrNoValidSession
	}

	var resp struct {
		Data SellerProfile `json:"data"`
	}
	if err := r.gw.Do(ctx, AreaSeller, http.MethodPost, "/apply", input, &resp); err != nil {
		return nil, err
	}

	r.manager.MergeSellerProfile(&resp.Data)
	return &resp.Data, nil
}
