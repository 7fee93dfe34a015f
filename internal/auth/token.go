package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/e-taas/session-service/internal/domain"
)

var (
	// ErrTokenInvalid is returned for malformed, expired or mis-signed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrWrongTokenKind is returned when an access token is presented where a
	// refresh token is expected, or vice versa.
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// TokenManager issues and validates the JWT pairs backing a session.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID string           `json:"user_id"`
	Kind   domain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// IssuePair mints a fresh access/refresh pair for the user. The refresh token
// carries a unique jti so a single refresh credential can be revoked.
func (tm *TokenManager) IssuePair(userID string) (*domain.TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(tm.accessTTL)
	refreshExp := now.Add(tm.refreshTTL)
	refreshID := uuid.NewString()

	access, err := tm.sign(&Claims{
		UserID: userID,
		Kind:   domain.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return nil, err
	}

	refresh, err := tm.sign(&Claims{
		UserID: userID,
		Kind:   domain.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        refreshID,
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshID:        refreshID,
		RefreshExpiresAt: refreshExp,
		IssuedAt:         now,
	}, nil
}

// ParseToken validates signature and expiry and returns claims of the expected kind.
func (tm *TokenManager) ParseToken(tokenStr string, kind domain.TokenKind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

// AccessTTL exposes the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration {
	return tm.accessTTL
}

// RefreshTTL exposes the configured refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

func (tm *TokenManager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}
