package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/events"
	"github.com/e-taas/session-service/internal/repository"
	apperrors "github.com/e-taas/session-service/pkg/util/errorutil"
)

// SellerService manages seller applications and the buyer/seller mode switch.
type SellerService struct {
	users      repository.UserRepository
	sellers    repository.SellerRepository
	dispatcher events.Dispatcher
}

// NewSellerService builds the service.
func NewSellerService(users repository.UserRepository, sellers repository.SellerRepository, dispatcher events.Dispatcher) *SellerService {
	return &SellerService{users: users, sellers: sellers, dispatcher: dispatcher}
}

// ApplyInput carries the business fields of a seller application.
type ApplyInput struct {
	BusinessName    string
	BusinessAddress string
	BusinessContact string
	DisplayName     string
}

// Apply creates an unverified seller profile for the identity and grants
// seller capability. A second application is rejected.
func (s *SellerService) Apply(ctx context.Context, identity *domain.Identity, input ApplyInput) (*domain.SellerProfile, error) {
	if identity.IsSeller {
		return nil, apperrors.NewConflict("user is already a seller", nil)
	}

	profile := &domain.SellerProfile{
		UserID:          identity.ID,
		BusinessName:    input.BusinessName,
		BusinessAddress: input.BusinessAddress,
		BusinessContact: input.BusinessContact,
		DisplayName:     input.DisplayName,
	}
	if err := s.sellers.Create(ctx, profile); err != nil {
		return nil, err
	}

	identity.IsSeller = true
	if err := s.users.Update(ctx, identity); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventSellerApplied,
		UserID: identity.ID,
		Payload: events.SellerAppliedPayload{
			SellerID:     profile.ID,
			BusinessName: profile.BusinessName,
		},
	})
	return profile, nil
}

// SwitchRole flips the seller-mode flag after verifying the precondition.
// Only a verified seller profile may enter seller mode; leaving seller mode
// has no precondition. The returned profile reflects the persisted state.
func (s *SellerService) SwitchRole(ctx context.Context, userID string, isSellerMode bool) (*domain.SellerProfile, error) {
	profile, err := s.sellers.GetByUserID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotASeller("no seller profile")
		}
		return nil, err
	}

	if isSellerMode && !profile.IsVerified {
		return nil, apperrors.NewNotASeller("seller profile is not verified")
	}

	profile.IsSellerMode = isSellerMode
	if err := s.sellers.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventRoleSwitched,
		UserID: userID,
		Payload: events.RoleSwitchedPayload{
			SellerID:     profile.ID,
			IsSellerMode: profile.IsSellerMode,
		},
	})
	return profile, nil
}

// Shop returns the seller profile owned by the identity.
func (s *SellerService) Shop(ctx context.Context, userID string) (*domain.SellerProfile, error) {
	profile, err := s.sellers.GetByUserID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("seller profile", nil)
		}
		return nil, err
	}
	return profile, nil
}

func (s *SellerService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
