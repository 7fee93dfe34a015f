package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-taas/session-service/internal/domain"
	"github.com/e-taas/session-service/internal/repository/repotest"
	"github.com/e-taas/session-service/internal/service"
)

func TestGetDetailsIncludesSellerProfile(t *testing.T) {
	users := repotest.NewUserRepo()
	svc := service.NewUserService(users)
	ctx := context.Background()

	identity := &domain.Identity{Username: "user2", Email: "user2@example.com"}
	require.NoError(t, users.Create(ctx, identity))
	users.AttachSeller(identity.ID, &domain.SellerProfile{
		ID:           "s-1",
		UserID:       identity.ID,
		BusinessName: "Ticket Booth",
		IsVerified:   true,
	})

	loaded, err := svc.GetDetails(ctx, identity.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsSeller)
	require.NotNil(t, loaded.Seller)
	assert.Equal(t, "Ticket Booth", loaded.Seller.BusinessName)
}

func TestUpdateDetailsAppliesOnlyProvidedFields(t *testing.T) {
	users := repotest.NewUserRepo()
	svc := service.NewUserService(users)
	ctx := context.Background()

	identity := &domain.Identity{
		Username:  "user2",
		Email:     "user2@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	require.NoError(t, users.Create(ctx, identity))

	first := "Grace"
	updated, err := svc.UpdateDetails(ctx, identity.ID, service.UpdateDetailsInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName, "omitted fields stay untouched")
}

func TestUpdateDetailsUnknownUser(t *testing.T) {
	svc := service.NewUserService(repotest.NewUserRepo())

	first := "Grace"
	_, err := svc.UpdateDetails(context.Background(), "missing", service.UpdateDetailsInput{FirstName: &first})
	assert.Error(t, err)
}
