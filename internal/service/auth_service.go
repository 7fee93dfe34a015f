package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/e-taas/session-service/internal/auth"
	"github.com/e-taas/session-service/internal/config"
	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/events"
	"github.com/e-taas/session-service/internal/repository"
	apperrors "github.com/e-taas/session-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and credential lifecycle flows.
type AuthService struct {
	users      repository.UserRepository
	otps       repository.OTPStore
	denylist   repository.RefreshDenylist
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	otpTTL     time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	OTPStore   repository.OTPStore
	Denylist   repository.RefreshDenylist
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		otps:       deps.OTPStore,
		denylist:   deps.Denylist,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		otpTTL:     cfg.Auth.OTPTTL(),
	}
}

// BeginRegistration checks uniqueness and issues an email verification code.
// No user row exists until the code is verified.
func (s *AuthService) BeginRegistration(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperrors.NewConflict("username already taken", nil)
	} else if err != pgx.ErrNoRows {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Put(ctx, repository.OTPPurposeEmailVerification, email, code, s.otpTTL); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventUserRegistered,
		UserID: "",
		Payload: events.OTPIssuedPayload{
			Email:   email,
			Code:    code,
			Purpose: string(repository.OTPPurposeEmailVerification),
		},
	})
	return nil
}

// VerifyEmailOTP validates the registration code and creates the account.
func (s *AuthService) VerifyEmailOTP(ctx context.Context, username, email, password, code string) (*domain.Identity, error) {
	stored, err := s.otps.Get(ctx, repository.OTPPurposeEmailVerification, email)
	if err == repository.ErrOTPNotFound {
		return nil, apperrors.NewValidationError("OTP has expired or is invalid", nil)
	}
	if err != nil {
		return nil, err
	}
	if stored != code {
		return nil, apperrors.NewValidationError("invalid OTP", nil)
	}
	if err := s.otps.Delete(ctx, repository.OTPPurposeEmailVerification, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Login authenticates a user and mints a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, *domain.TokenPair, error) {
	identity, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	pair, err := s.tokenMgr.IssuePair(identity.ID)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserLoggedIn,
		UserID:  identity.ID,
		Payload: events.UserLoggedInPayload{Email: identity.Email},
	})
	return identity, pair, nil
}

// Refresh rotates the presented refresh token: the old jti is revoked and a
// fresh pair is minted. A revoked or invalid token yields Unauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.NewUnauthorized("refresh token revoked")
	}

	// Mint before revoking: if either step fails the presented token stays
	// usable, so the caller is never left with no credential at all.
	pair, err := s.tokenMgr.IssuePair(claims.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the presented refresh token. An unparsable token is ignored:
// the caller clears local credentials regardless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenMgr.ParseToken(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// ForgotPassword issues a password reset code for a known email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	identity, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Put(ctx, repository.OTPPurposePasswordReset, email, code, s.otpTTL); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:   events.EventPasswordResetRequested,
		UserID: identity.ID,
		Payload: events.OTPIssuedPayload{
			Email:   email,
			Code:    code,
			Purpose: string(repository.OTPPurposePasswordReset),
		},
	})
	return nil
}

// resetVerifiedPurpose marks emails whose reset OTP has been verified, so the
// final reset call cannot be replayed without a fresh code.
const resetVerifiedPurpose = repository.OTPPurpose("password_reset_verified")

// VerifyPasswordResetOTP validates and consumes the reset code.
func (s *AuthService) VerifyPasswordResetOTP(ctx context.Context, email, code string) error {
	stored, err := s.otps.Get(ctx, repository.OTPPurposePasswordReset, email)
	if err == repository.ErrOTPNotFound {
		return apperrors.NewValidationError("OTP has expired or is invalid", nil)
	}
	if err != nil {
		return err
	}
	if stored != code {
		return apperrors.NewValidationError("invalid OTP", nil)
	}
	if err := s.otps.Delete(ctx, repository.OTPPurposePasswordReset, email); err != nil {
		return err
	}
	return s.otps.Put(ctx, resetVerifiedPurpose, email, "1", s.otpTTL)
}

// ResetPassword updates the password after a verified reset code.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if _, err := s.otps.Get(ctx, resetVerifiedPurpose, email); err != nil {
		if err == repository.ErrOTPNotFound {
			return apperrors.NewValidationError("OTP verification required", nil)
		}
		return err
	}

	identity, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, identity.ID, hash); err != nil {
		return err
	}
	return s.otps.Delete(ctx, resetVerifiedPurpose, email)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

// generateOTP produces a six digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
