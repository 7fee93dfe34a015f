package session

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// TokenAuthority encapsulates the server-backed credential lifecycle. The
// refresh credential lives in the gateway's cookie jar as an httpOnly cookie;
// the authority only ever handles the opaque short-lived access token.
type TokenAuthority struct {
	gw     *Gateway
	logger *zap.Logger
}

// NewTokenAuthority builds the authority and installs it as the gateway's
// refresher.
func NewTokenAuthority(gw *Gateway, logger *zap.Logger) *TokenAuthority {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &TokenAuthority{gw: gw, logger: logger}
	gw.SetRefresher(a)
	return a
}

// Login authenticates and returns the identity. On success the backend sets
// the credential cookies and the access token is attached to the gateway.
func (a *TokenAuthority) Login(ctx context.Context, email, password string) (*Identity, error) {
	var resp struct {
		Data struct {
			User Identity `json:"user"`
			Auth struct {
				AccessToken string `json:"access_token"`
			} `json:"auth"`
		} `json:"data"`
	}
	err := a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	a.gw.SetAccessToken(resp.Data.Auth.AccessToken)
	return &resp.Data.User, nil
}

// Refresh exchanges the refresh credential for a new access token. Safe to
// call speculatively; a failure means the session should become Anonymous.
func (a *TokenAuthority) Refresh(ctx context.Context) (string, error) {
	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	err := a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, "/refresh", nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.Data.AccessToken, nil
}

// Logout invalidates the server-side session. A network failure is logged;
// the caller clears local state regardless, so no error is returned.
func (a *TokenAuthority) Logout(ctx context.Context) {
	if err := a.gw.DoUnauthenticated(ctx, AreaUser, http.MethodPost, "/logout", nil, nil); err != nil {
		a.logger.Warn("server-side logout failed", zap.Error(err))
	}
	a.gw.ClearAccessToken()
}

// FetchProfile loads the current identity through the authenticated gateway,
// so an expired access token is renewed transparently.
func (a *TokenAuthority) FetchProfile(ctx context.Context) (*Identity, error) {
	var resp struct {
		Data Identity `json:"data"`
	}
	if err := a.gw.Do(ctx, AreaUser, http.MethodGet, "/details", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateProfile applies a partial profile update and returns the fresh identity.
// Nil fields are left untouched.
func (a *TokenAuthority) UpdateProfile(ctx context.Context, input ProfileUpdate) (*Identity, error) {
	var resp struct {
		Data Identity `json:"data"`
	}
	if err := a.gw.Do(ctx, AreaUser, http.MethodPut, "/update-details", input, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ProfileUpdate carries the optional fields of a profile update.
type ProfileUpdate struct {
	FirstName     *string `json:"first_name,omitempty"`
	MiddleName    *string `json:"middle_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactNumber *string `json:"contact_number,omitempty"`
}

// Register begins a registration; the backend emails a verification code.
func (a *TokenAuthority) Register(ctx context.Context, username, email, password string) error {
	return a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
}

// VerifyEmailOTP completes a registration with the emailed code.
func (a *TokenAuthority) VerifyEmailOTP(ctx context.Context, username, email, password, otp string) error {
	return a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, "/verify-email-otp", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"otp":      otp,
	}, nil)
}

// ForgotPassword starts the password reset flow.
func (a *TokenAuthority) ForgotPassword(ctx context.Context, email string) error {
	path := "/forgot-password?email=" + url.QueryEscape(email)
	return a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, path, nil, nil)
}

// VerifyPasswordResetOTP validates the emailed reset code.
func (a *TokenAuthority) VerifyPasswordResetOTP(ctx context.Context, email, otp string) error {
	return a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, "/verify-password-reset-otp", map[string]string{
		"email": email,
		"otp":   otp,
	}, nil)
}

// ResetPassword sets a new password after the reset code was verified.
func (a *TokenAuthority) ResetPassword(ctx context.Context, email, newPassword string) error {
	return a.gw.DoUnauthenticated(ctx, AreaAuth, http.MethodPost, "/reset-password", map[string]string{
		"email":        email,
		"new_password": newPassword,
	}, nil)
}
