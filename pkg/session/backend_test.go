package session_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/e-taas/session-service/pkg/session"
)

// fakeBackend implements just enough of the REST surface for the client to
// exercise every session flow, with counters and failure knobs.
type fakeBackend struct {
	srv *httptest.Server

	mu           sync.Mutex
	identity     session.Identity
	password     string
	validToken   string
	tokenSeq     int
	refreshValid bool
	refreshDelay time.Duration

	switchFail bool

	loginCalls   int
	refreshCalls int
	detailsCalls int
	switchCalls  int
	logoutCalls  int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		identity: session.Identity{
			ID:       "u-1",
			Username: "user2",
			Email:    "user2@example.com",
		},
		password: "string",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/refresh", b.handleRefresh)
	mux.HandleFunc("GET /user/details", b.handleDetails)
	mux.HandleFunc("PUT /user/update-details", b.handleUpdateDetails)
	mux.HandleFunc("POST /user/logout", b.handleLogout)
	mux.HandleFunc("PUT /seller/switch-role", b.handleSwitchRole)
	mux.HandleFunc("POST /seller/apply", b.handleApply)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) config() session.Config {
	return session.Config{
		AuthURL:   b.srv.URL + "/auth",
		UserURL:   b.srv.URL + "/user",
		SellerURL: b.srv.URL + "/seller",
		Timeout:   2 * time.Second,
	}
}

func newTestClient(t *testing.T, b *fakeBackend, store session.CredentialStore) *session.Client {
	t.Helper()
	client, err := session.NewClient(b.config(), store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// allowRefresh marks the server-side refresh credential as valid without a
// prior login, as if an earlier session left it behind.
func (b *fakeBackend) allowRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshValid = true
}

// expireAccess invalidates the current access token, forcing a 401 on the
// next authenticated call.
func (b *fakeBackend) expireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validToken = ""
}

// revokeSession invalidates both credentials.
func (b *fakeBackend) revokeSession() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validToken = ""
	b.refreshValid = false
}

// grantSeller attaches a seller profile to the backend user.
func (b *fakeBackend) grantSeller(verified bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity.IsSeller = true
	b.identity.Seller = &session.SellerProfile{
		ID:           "s-1",
		UserID:       b.identity.ID,
		BusinessName: "Ticket Booth",
		IsVerified:   verified,
	}
}

func (b *fakeBackend) counters() (login, refresh, details, switches int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loginCalls, b.refreshCalls, b.detailsCalls, b.switchCalls
}

func (b *fakeBackend) issueTokenLocked() string {
	b.tokenSeq++
	b.validToken = fmt.Sprintf("tok-%d", b.tokenSeq)
	return b.validToken
}

func (b *fakeBackend) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validToken != "" && r.Header.Get("Authorization") == "Bearer "+b.validToken
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.loginCalls++
	if req.Email != b.identity.Email || req.Password != b.password {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	token := b.issueTokenLocked()
	b.refreshValid = true
	identity := b.identity
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "rt-1", Path: "/", HttpOnly: true})
	writeJSON(w, map[string]any{
		"data": map[string]any{
			"user": identity,
			"auth": map[string]any{"access_token": token, "token_type": "bearer"},
		},
	})
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	delay := b.refreshDelay
	valid := b.refreshValid
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if !valid {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired refresh token")
		return
	}

	b.mu.Lock()
	token := b.issueTokenLocked()
	b.mu.Unlock()

	writeJSON(w, map[string]any{
		"data": map[string]any{"access_token": token, "token_type": "bearer"},
	})
}

func (b *fakeBackend) handleDetails(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.detailsCalls++
	b.mu.Unlock()

	if !b.authorized(r) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	b.mu.Lock()
	identity := b.identity
	b.mu.Unlock()
	writeJSON(w, map[string]any{"data": identity})
}

func (b *fakeBackend) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	if req.FirstName != nil {
		b.identity.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		b.identity.LastName = *req.LastName
	}
	identity := b.identity
	b.mu.Unlock()
	writeJSON(w, map[string]any{"data": identity})
}

func (b *fakeBackend) handleLogout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.logoutCalls++
	b.validToken = ""
	b.refreshValid = false
	b.mu.Unlock()
	writeJSON(w, map[string]any{"message": "Logged out successfully"})
}

func (b *fakeBackend) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.switchCalls++
	b.mu.Unlock()

	if !b.authorized(r) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	var req struct {
		IsSellerMode bool `json:"is_seller_mode"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.switchFail {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "database unavailable")
		return
	}
	if b.identity.Seller == nil {
		writeError(w, http.StatusForbidden, "NOT_A_SELLER", "no seller profile")
		return
	}
	if req.IsSellerMode && !b.identity.Seller.IsVerified {
		writeError(w, http.StatusForbidden, "NOT_A_SELLER", "seller profile is not verified")
		return
	}
	b.identity.Seller.IsSellerMode = req.IsSellerMode
	writeJSON(w, map[string]any{"data": *b.identity.Seller})
}

func (b *fakeBackend) handleApply(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	var req struct {
		BusinessName string `json:"business_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.identity.Seller != nil {
		writeError(w, http.StatusConflict, "CONFLICT", "seller profile already exists")
		return
	}
	b.identity.IsSeller = true
	b.identity.Seller = &session.SellerProfile{
		ID:           "s-1",
		UserID:       b.identity.ID,
		BusinessName: req.BusinessName,
	}
	writeJSON(w, map[string]any{"data": *b.identity.Seller})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
