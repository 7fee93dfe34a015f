package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-taas/session-service/pkg/session"
)

func TestSwitchModeRejectsNonSellerWithoutNetworkCall(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))
	before := client.Manager.State()

	_, err := client.Roles.SwitchMode(context.Background(), true)
	assert.ErrorIs(t, err, session.ErrNotASeller)

	_, _, _, switches := backend.counters()
	assert.Zero(t, switches, "the precondition is checked before any backend call")
	assert.Equal(t, before.Identity, client.Manager.State().Identity)
}

func TestSwitchModeRejectsUnverifiedSeller(t *testing.T) {
	backend := newFakeBackend(t)
	backend.grantSeller(false)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	_, err := client.Roles.SwitchMode(context.Background(), true)
	assert.ErrorIs(t, err, session.ErrNotASeller)

	_, _, _, switches := backend.counters()
	assert.Zero(t, switches)
	assert.False(t, client.Manager.State().Identity.Seller.IsSellerMode)
}

func TestSwitchModeRequiresSession(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	_, err := client.Roles.SwitchMode(context.Background(), true)
	assert.ErrorIs(t, err, session.ErrNoValidSession)
}

func TestSwitchModePublishesOnlyServerConfirmedValues(t *testing.T) {
	backend := newFakeBackend(t)
	backend.grantSeller(true)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	type observation struct {
		mode bool
	}
	var mu sync.Mutex
	var observed []observation
	cancel := client.Manager.Subscribe(func(s session.Session) {
		mu.Lock()
		defer mu.Unlock()
		if s.Identity != nil && s.Identity.Seller != nil {
			observed = append(observed, observation{mode: s.Identity.Seller.IsSellerMode})
		}
	})
	defer cancel()

	profile, err := client.Roles.SwitchMode(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, profile.IsSellerMode)

	state := client.Manager.State()
	assert.True(t, state.Identity.Seller.IsSellerMode)
	assert.True(t, state.Identity.IsSeller)

	// Exactly one transition, carrying the confirmed value. No locally-guessed
	// intermediate flag is ever published.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 1)
	assert.True(t, observed[0].mode)
}

func TestSwitchModeFailureLeavesModeUnchanged(t *testing.T) {
	backend := newFakeBackend(t)
	backend.grantSeller(true)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	backend.mu.Lock()
	backend.switchFail = true
	backend.mu.Unlock()

	_, err := client.Roles.SwitchMode(context.Background(), true)

	var serverErr *session.ServerError
	assert.ErrorAs(t, err, &serverErr)
	assert.False(t, client.Manager.State().Identity.Seller.IsSellerMode,
		"a failed switch must not change the flag")
}

func TestSwitchModeBackToBuyer(t *testing.T) {
	backend := newFakeBackend(t)
	backend.grantSeller(true)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	_, err := client.Roles.SwitchMode(context.Background(), true)
	require.NoError(t, err)

	profile, err := client.Roles.SwitchMode(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, profile.IsSellerMode)
	assert.False(t, client.Manager.State().Identity.Seller.IsSellerMode)
}

func TestSwitchModeConcurrentCallsSerialize(t *testing.T) {
	backend := newFakeBackend(t)
	backend.grantSeller(true)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	var wg sync.WaitGroup
	for _, target := range []bool{true, false, true, false} {
		wg.Add(1)
		go func(target bool) {
			defer wg.Done()
			_, err := client.Roles.SwitchMode(context.Background(), target)
			assert.NoError(t, err)
		}(target)
	}
	wg.Wait()

	// Whatever order the switches landed in, the published flag matches the
	// backend's final word.
	backend.mu.Lock()
	serverMode := backend.identity.Seller.IsSellerMode
	backend.mu.Unlock()
	assert.Equal(t, serverMode, client.Manager.State().Identity.Seller.IsSellerMode)

	_, _, _, switches := backend.counters()
	assert.Equal(t, 4, switches)
}

func TestApplyGrantsUnverifiedSellerCapability(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	profile, err := client.Roles.Apply(context.Background(), session.ApplyInput{BusinessName: "Ticket Booth"})
	require.NoError(t, err)
	assert.False(t, profile.IsVerified)
	assert.Equal(t, "Ticket Booth", profile.BusinessName)

	state := client.Manager.State()
	assert.True(t, state.Identity.IsSeller)
	require.NotNil(t, state.Identity.Seller)
	assert.False(t, state.Identity.VerifiedSeller())

	// An unverified applicant still cannot enter seller mode.
	_, err = client.Roles.SwitchMode(context.Background(), true)
	assert.ErrorIs(t, err, session.ErrNotASeller)
}

func TestApplyRequiresSession(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	_, err := client.Roles.Apply(context.Background(), session.ApplyInput{BusinessName: "x"})
	assert.ErrorIs(t, err, session.ErrNoValidSession)
}
