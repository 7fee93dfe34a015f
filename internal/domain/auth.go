package domain

import "time"

// TokenKind differentiates access from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair bundles the credentials minted for one authenticated session.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshID        string
	RefreshExpiresAt time.Time
	IssuedAt         time.Time
}
