package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/events"
	"github.com/e-taas/session-service/internal/repository/repotest"
	"github.com/e-taas/session-service/internal/service"
)

type sellerFixture struct {
	svc        *service.SellerService
	users      *repotest.UserRepo
	sellers    *repotest.SellerRepo
	dispatcher *recordingDispatcher
}

func newSellerFixture(t *testing.T) (*sellerFixture, *domain.Identity) {
	t.Helper()
	users := repotest.NewUserRepo()
	f := &sellerFixture{
		users:      users,
		sellers:    repotest.NewSellerRepo(users),
		dispatcher: &recordingDispatcher{},
	}
	f.svc = service.NewSellerService(f.users, f.sellers, f.dispatcher)

	identity := &domain.Identity{Username: "user2", Email: "user2@example.com"}
	require.NoError(t, f.users.Create(context.Background(), identity))
	return f, identity
}

func TestApplyCreatesUnverifiedProfile(t *testing.T) {
	f, identity := newSellerFixture(t)
	ctx := context.Background()

	profile, err := f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.False(t, profile.IsVerified)
	assert.False(t, profile.IsSellerMode)
	assert.True(t, identity.IsSeller)

	stored, err := f.users.GetByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSeller)

	applied := f.dispatcher.byType(events.EventSellerApplied)
	require.Len(t, applied, 1)
	assert.Equal(t, identity.ID, applied[0].UserID)
}

func TestApplyRejectsExistingSeller(t *testing.T) {
	f, identity := newSellerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Second Booth"})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestSwitchRoleRejectsNonSeller(t *testing.T) {
	f, identity := newSellerFixture(t)

	_, err := f.svc.SwitchRole(context.Background(), identity.ID, true)
	assert.Equal(t, "NOT_A_SELLER", domainCode(t, err))
}

func TestSwitchRoleRejectsUnverifiedSeller(t *testing.T) {
	f, identity := newSellerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)

	_, err = f.svc.SwitchRole(ctx, identity.ID, true)
	assert.Equal(t, "NOT_A_SELLER", domainCode(t, err))

	stored, err := f.sellers.GetByUserID(ctx, identity.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSellerMode, "a rejected switch must not persist anything")
}

func TestSwitchRolePersistsVerifiedSellerMode(t *testing.T) {
	f, identity := newSellerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)
	f.sellers.MarkVerified(identity.ID)

	profile, err := f.svc.SwitchRole(ctx, identity.ID, true)
	require.NoError(t, err)
	assert.True(t, profile.IsSellerMode)

	stored, err := f.sellers.GetByUserID(ctx, identity.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSellerMode)

	switched := f.dispatcher.byType(events.EventRoleSwitched)
	require.Len(t, switched, 1)
	payload, ok := switched[0].Payload.(events.RoleSwitchedPayload)
	require.True(t, ok)
	assert.True(t, payload.IsSellerMode)
}

func TestSwitchRoleBackToBuyerHasNoPrecondition(t *testing.T) {
	f, identity := newSellerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)

	// Even an unverified profile may leave seller mode.
	profile, err := f.svc.SwitchRole(ctx, identity.ID, false)
	require.NoError(t, err)
	assert.False(t, profile.IsSellerMode)
}

func TestShop(t *testing.T) {
	f, identity := newSellerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Shop(ctx, identity.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	_, err = f.svc.Apply(ctx, identity, service.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)

	profile, err := f.svc.Shop(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ticket Booth", profile.BusinessName)
}
