// Package repotest provides in-memory repository implementations for tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/repository"
)

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.Identity
	seq  int
}

// NewUserRepo returns an empty user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{rows: make(map[string]*domain.Identity)}
}

func (r *UserRepo) Create(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	identity.ID = fmt.Sprintf("u-%d", r.seq)
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	r.rows[identity.ID] = cloneIdentity(identity)
	return nil
}

func (r *UserRepo) Update(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[identity.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// Mirror the SQL UPDATE: password and the joined seller row are untouched.
	updated := cloneIdentity(identity)
	updated.PasswordHash = stored.PasswordHash
	updated.Seller = stored.Seller
	updated.UpdatedAt = time.Now()
	r.rows[identity.ID] = updated
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneIdentity(stored), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.rows {
		if stored.Email == email {
			return cloneIdentity(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.rows {
		if stored.Username == username {
			return cloneIdentity(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PasswordHash = passwordHash
	return nil
}

// AttachSeller links a seller profile to a stored identity, as the repository
// join would.
func (r *UserRepo) AttachSeller(userID string, profile *domain.SellerProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.rows[userID]; ok {
		stored.IsSeller = true
		stored.Seller = profile
	}
}

func cloneIdentity(identity *domain.Identity) *domain.Identity {
	copied := *identity
	if identity.Seller != nil {
		seller := *identity.Seller
		copied.Seller = &seller
	}
	return &copied
}

// SellerRepo is an in-memory repository.SellerRepository keyed by user id.
type SellerRepo struct {
	mu    sync.Mutex
	rows  map[string]*domain.SellerProfile
	users *UserRepo
	seq   int
}

// NewSellerRepo returns an empty seller repository. A non-nil users repo is
// kept in sync so identity loads see the joined seller row.
func NewSellerRepo(users *UserRepo) *SellerRepo {
	return &SellerRepo{rows: make(map[string]*domain.SellerProfile), users: users}
}

func (r *SellerRepo) Create(_ context.Context, profile *domain.SellerProfile) error {
	r.mu.Lock()
	r.seq++
	profile.ID = fmt.Sprintf("s-%d", r.seq)
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	stored := *profile
	r.rows[profile.UserID] = &stored
	r.mu.Unlock()

	r.syncUser(profile.UserID)
	return nil
}

func (r *SellerRepo) Update(_ context.Context, profile *domain.SellerProfile) error {
	r.mu.Lock()
	for userID, stored := range r.rows {
		if stored.ID == profile.ID {
			updated := *profile
			updated.UpdatedAt = time.Now()
			r.rows[userID] = &updated
			r.mu.Unlock()

			r.syncUser(userID)
			return nil
		}
	}
	r.mu.Unlock()
	return pgx.ErrNoRows
}

func (r *SellerRepo) GetByUserID(_ context.Context, userID string) (*domain.SellerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

// MarkVerified flips the verification flag, as an admin review would.
func (r *SellerRepo) MarkVerified(userID string) {
	r.mu.Lock()
	if stored, ok := r.rows[userID]; ok {
		stored.IsVerified = true
	}
	r.mu.Unlock()

	r.syncUser(userID)
}

func (r *SellerRepo) syncUser(userID string) {
	if r.users == nil {
		return
	}
	r.mu.Lock()
	stored, ok := r.rows[userID]
	var copied domain.SellerProfile
	if ok {
		copied = *stored
	}
	r.mu.Unlock()
	if ok {
		r.users.AttachSeller(userID, &copied)
	}
}

// OTPStore is an in-memory repository.OTPStore. TTLs are ignored; expiry is
// simulated by deleting codes.
type OTPStore struct {
	mu    sync.Mutex
	codes map[string]string
}

// NewOTPStore returns an empty store.
func NewOTPStore() *OTPStore {
	return &OTPStore{codes: make(map[string]string)}
}

func (s *OTPStore) Put(_ context.Context, purpose repository.OTPPurpose, email, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[string(purpose)+":"+email] = code
	return nil
}

func (s *OTPStore) Get(_ context.Context, purpose repository.OTPPurpose, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[string(purpose)+":"+email]
	if !ok {
		return "", repository.ErrOTPNotFound
	}
	return code, nil
}

func (s *OTPStore) Delete(_ context.Context, purpose repository.OTPPurpose, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, string(purpose)+":"+email)
	return nil
}

// Code peeks at the stored code without consuming it.
func (s *OTPStore) Code(purpose repository.OTPPurpose, email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[string(purpose)+":"+email]
}

// Denylist is an in-memory repository.RefreshDenylist.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

// NewDenylist returns an empty denylist.
func NewDenylist() *Denylist {
	return &Denylist{revoked: make(map[string]bool)}
}

func (d *Denylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = true
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[tokenID], nil
}
