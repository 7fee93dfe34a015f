package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-taas/session-service/internal/domain"
)

func TestIssuePairAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", 30*time.Minute, 168*time.Hour)

	pair, err := tm.IssuePair("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEmpty(t, pair.RefreshID)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	access, err := tm.ParseToken(pair.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, domain.TokenKindAccess, access.Kind)

	refresh, err := tm.ParseToken(pair.RefreshToken, domain.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.UserID)
	assert.Equal(t, pair.RefreshID, refresh.ID)
}

func TestParseTokenRejectsWrongKind(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := tm.IssuePair("user-1")
	require.NoError(t, err)

	_, err = tm.ParseToken(pair.AccessToken, domain.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenKind)

	_, err = tm.ParseToken(pair.RefreshToken, domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Minute, time.Hour)
	verifier := NewTokenManager("secret-b", time.Minute, time.Hour)

	pair, err := issuer.IssuePair("user-1")
	require.NoError(t, err)

	_, err = verifier.ParseToken(pair.AccessToken, domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	_, err := tm.ParseToken("not.a.token", domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), accessTTL: -time.Minute, refreshTTL: -time.Minute}

	pair, err := tm.IssuePair("user-1")
	require.NoError(t, err)

	_, err = tm.ParseToken(pair.AccessToken, domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshIDUniquePerPair(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	a, err := tm.IssuePair("user-1")
	require.NoError(t, err)
	b, err := tm.IssuePair("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a.RefreshID, b.RefreshID)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("string", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "string"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestPasswordLongerThanBcryptLimit(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}

	hash, err := HashPassword(string(long), 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, string(long)))
}
