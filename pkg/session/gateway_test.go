package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-taas/session-service/pkg/session"
)

func TestGatewaySharedRefreshOnConcurrent401s(t *testing.T) {
	backend := newFakeBackend(t)
	backend.allowRefresh()
	backend.refreshDelay = 100 * time.Millisecond

	client := newTestClient(t, backend, nil)
	client.Gateway.SetAccessToken("stale")

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Authority.FetchProfile(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}

	_, refresh, details, _ := backend.counters()
	assert.Equal(t, 1, refresh, "concurrent 401s must share one refresh")
	assert.Equal(t, callers*2, details, "each caller fails once and is retried once")
}

func TestGatewayRefreshFailureFailsAllCallers(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	backend.revokeSession()
	backend.refreshDelay = 100 * time.Millisecond

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Authority.FetchProfile(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.ErrorIs(t, err, session.ErrNoValidSession, "caller %d", i)
	}

	_, refresh, _, _ := backend.counters()
	assert.Equal(t, 1, refresh, "failed refresh must not be retried per caller")
	assert.Equal(t, session.StatusAnonymous, client.Manager.State().Status)
}

func TestGatewayRefreshResolvingAfterLogoutIsDiscarded(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	require.NoError(t, client.Manager.Login(context.Background(), "user2@example.com", "string"))

	backend.expireAccess()
	backend.refreshDelay = 200 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := client.Authority.FetchProfile(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		_, refresh, _, _ := backend.counters()
		return refresh == 1
	}, time.Second, 5*time.Millisecond)

	// The credential is dropped while the renewal is still in flight; the
	// renewed token that arrives afterwards belongs to a dead session.
	client.Gateway.ClearAccessToken()

	assert.ErrorIs(t, <-done, session.ErrNoValidSession)
	assert.Empty(t, client.Gateway.AccessToken(),
		"a renewal resolving after the credential was cleared must not be installed")
}

func TestGatewayRejectedLoginIsNotARefreshTrigger(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, nil)

	err := client.Manager.Login(context.Background(), "user2@example.com", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	login, refresh, _, _ := backend.counters()
	assert.Equal(t, 1, login)
	assert.Zero(t, refresh)
}

func TestGatewayServerErrorPropagatesWithoutRefresh(t *testing.T) {
	var refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /details", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "database unavailable")
	})
	mux.HandleFunc("POST /refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls++
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unexpected")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := session.NewClient(session.Config{
		AuthURL: srv.URL,
		UserURL: srv.URL,
		Timeout: time.Second,
	}, nil)
	require.NoError(t, err)

	_, err = client.Authority.FetchProfile(context.Background())

	var serverErr *session.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
	assert.Equal(t, "database unavailable", serverErr.Message)
	assert.Zero(t, refreshCalls, "a non-401 failure must not trigger a refresh")
}

func TestGatewayTimeoutSurfacesAsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, map[string]any{"data": map[string]any{}})
	}))
	defer srv.Close()

	gw, err := session.NewGateway(session.Config{UserURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	err = gw.DoUnauthenticated(context.Background(), session.AreaUser, http.MethodGet, "/details", nil, nil)

	var serverErr *session.ServerError
	assert.ErrorAs(t, err, &serverErr)
}

func TestGatewayUnconfiguredAreaRejected(t *testing.T) {
	gw, err := session.NewGateway(session.Config{Timeout: time.Second})
	require.NoError(t, err)

	err = gw.DoUnauthenticated(context.Background(), session.AreaAdmin, http.MethodGet, "/", nil, nil)

	var serverErr *session.ServerError
	assert.ErrorAs(t, err, &serverErr)
}
