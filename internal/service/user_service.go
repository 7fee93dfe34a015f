package service

import (
	"context"

	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/repository"
)

// UserService handles profile reads and partial updates.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateDetailsInput carries the optional fields of a profile update.
// Nil fields are left untouched.
type UpdateDetailsInput struct {
	FirstName     *string
	MiddleName    *string
	LastName      *string
	Address       *string
	ContactNumber *string
}

// GetDetails loads the identity including its seller profile.
func (s *UserService) GetDetails(ctx context.Context, userID string) (*domain.Identity, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateDetails applies a partial profile update and returns the fresh identity.
func (s *UserService) UpdateDetails(ctx context.Context, userID string, input UpdateDetailsInput) (*domain.Identity, error) {
	identity, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		identity.FirstName = *input.FirstName
	}
	if input.MiddleName != nil {
		identity.MiddleName = *input.MiddleName
	}
	if input.LastName != nil {
		identity.LastName = *input.LastName
	}
	if input.Address != nil {
		identity.Address = *input.Address
	}
	if input.ContactNumber != nil {
		identity.ContactNumber = *input.ContactNumber
	}

	if err := s.users.Update(ctx, identity); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}
