package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Manager owns the single process-wide Session. All mutations go through its
// public contract; collaborators read snapshots or subscribe to transitions.
//
// Transitions are applied in the order their triggering operations complete.
// Each transition bumps a generation counter; an asynchronous completion that
// started under an older generation is discarded, so a stale restoration can
// never resurrect a session that was logged out in the meantime.
type Manager struct {
	store     CredentialStore
	authority *TokenAuthority
	gw        *Gateway
	logger    *zap.Logger

	mu       sync.Mutex
	session  Session
	gen      uint64
	snapshot atomic.Value // Session

	subsMu  sync.Mutex
	subs    map[int]func(Session)
	nextSub int

	restoreGroup singleflight.Group
}

// NewManager wires the manager to its collaborators and starts Uninitialized.
// The gateway's session-expired hook is installed here, so an unrecoverable
// 401 on any authenticated call forces the Anonymous transition.
func NewManager(store CredentialStore, authority *TokenAuthority, gw *Gateway, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:     store,
		authority: authority,
		gw:        gw,
		logger:    logger,
		session:   Session{Status: StatusUninitialized},
		subs:      make(map[int]func(Session)),
	}
	m.snapshot.Store(m.session)
	gw.OnSessionExpired(m.handleExpired)
	return m
}

// State returns the current session snapshot.
func (m *Manager) State() Session {
	return m.snapshot.Load().(Session)
}

// Subscribe registers a callback invoked on every state transition, in
// transition order, with the new snapshot. The returned function cancels the
// subscription. Callbacks must not invoke blocking Manager operations
// directly; spawn a goroutine instead.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

// Login drives Anonymous→Authenticated. A failure leaves the session
// untouched and is returned for display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	identity, err := m.authority.Login(ctx, email, password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.applyLocked(Session{Status: StatusAuthenticated, Identity: identity})
	m.mu.Unlock()

	m.store.Save(identity)
	return nil
}

// Logout drives Authenticated→Anonymous. The transition happens first, which
// invalidates any in-flight restoration or refresh outcome; the server-side
// invalidation is best effort.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.applyLocked(Session{Status: StatusAnonymous})
	m.mu.Unlock()

	m.gw.ClearAccessToken()
	m.store.Clear()
	m.authority.Logout(ctx)
}

// Restore drives Uninitialized→Restoring→{Authenticated,Anonymous}. It is
// idempotent and concurrent callers share exactly one in-flight restoration.
func (m *Manager) Restore(ctx context.Context) error {
	_, err, _ := m.restoreGroup.Do("restore", func() (any, error) {
		return nil, m.restore(ctx)
	})
	return err
}

func (m *Manager) restore(ctx context.Context) error {
	m.mu.Lock()
	if m.session.Status == StatusAuthenticated {
		m.mu.Unlock()
		return nil
	}
	m.applyLocked(Session{Status: StatusRestoring})
	startGen := m.gen
	m.mu.Unlock()

	if cached, ok := m.store.Load(); ok {
		// Cache hit is accepted optimistically; the snapshot is revalidated
		// against the backend in the background.
		m.mu.Lock()
		if m.gen != startGen {
			m.mu.Unlock()
			return nil
		}
		m.applyLocked(Session{Status: StatusAuthenticated, Identity: cached})
		authGen := m.gen
		m.mu.Unlock()

		go m.revalidate(authGen)
		return nil
	}

	token, err := m.authority.Refresh(ctx)
	if err != nil {
		m.finishRestore(startGen, nil, err)
		return nil
	}

	// Install the renewed token only while this restoration is still current.
	// A logout that landed during the refresh has already bumped the
	// generation; its outcome must not regain a live credential.
	m.mu.Lock()
	if m.gen != startGen {
		m.mu.Unlock()
		return nil
	}
	m.gw.SetAccessToken(token)
	m.mu.Unlock()

	identity, err := m.authority.FetchProfile(ctx)
	m.finishRestore(startGen, identity, err)
	return nil
}

// finishRestore applies the outcome of a cache-miss restoration, unless the
// session has moved on.
func (m *Manager) finishRestore(startGen uint64, identity *Identity, err error) {
	m.mu.Lock()
	if m.gen != startGen {
		m.mu.Unlock()
		return
	}
	if err != nil || identity == nil {
		m.applyLocked(Session{Status: StatusAnonymous, Err: sanitizeErr(err)})
		m.mu.Unlock()
		return
	}
	m.applyLocked(Session{Status: StatusAuthenticated, Identity: identity})
	m.mu.Unlock()

	m.store.Save(identity)
}

// revalidate refetches the profile behind an optimistic restoration. A
// NoValidSession outcome forces Anonymous; a transient server failure keeps
// the optimistic state and is only logged.
func (m *Manager) revalidate(startGen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.gw.cfg.Timeout)
	defer cancel()

	identity, err := m.authority.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, ErrNoValidSession) {
			m.mu.Lock()
			if m.gen == startGen {
				m.applyLocked(Session{Status: StatusAnonymous})
				m.mu.Unlock()
				m.store.Clear()
				m.gw.ClearAccessToken()
				return
			}
			m.mu.Unlock()
			return
		}
		m.logger.Warn("session revalidation failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	if m.gen != startGen {
		m.mu.Unlock()
		return
	}
	m.applyLocked(Session{Status: StatusAuthenticated, Identity: identity})
	m.mu.Unlock()

	m.store.Save(identity)
}

// UpdateProfile applies a partial profile update; on success the session
// stays Authenticated with the merged identity re-published to subscribers.
func (m *Manager) UpdateProfile(ctx context.Context, input ProfileUpdate) (*Identity, error) {
	m.mu.Lock()
	if m.session.Status != StatusAuthenticated {
		m.mu.Unlock()
		return nil, ErrNoValidSession
	}
	startGen := m.gen
	m.mu.Unlock()

	identity, err := m.authority.UpdateProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.gen != startGen {
		m.mu.Unlock()
		return identity, nil
	}
	m.applyLocked(Session{Status: StatusAuthenticated, Identity: identity})
	m.mu.Unlock()

	m.store.Save(identity)
	return identity, nil
}

// MergeSellerProfile folds a server-confirmed seller profile into the current
// identity (Authenticated→Authenticated). Used by the role switch coordinator
// after, and only after, the backend has persisted the change.
func (m *Manager) MergeSellerProfile(profile *SellerProfile) {
	m.mu.Lock()
	if m.session.Status != StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	identity := m.session.Identity.Clone()
	identity.Seller = profile
	identity.IsSeller = true
	m.applyLocked(Session{Status: StatusAuthenticated, Identity: identity})
	m.mu.Unlock()

	m.store.Save(identity)
}

// handleExpired reacts to an unrecoverable 401: the session becomes Anonymous
// and local credentials are dropped.
func (m *Manager) handleExpired() {
	m.mu.Lock()
	if m.session.Status != StatusAuthenticated && m.session.Status != StatusRestoring {
		m.mu.Unlock()
		return
	}
	m.applyLocked(Session{Status: StatusAnonymous})
	m.mu.Unlock()

	m.store.Clear()
	m.gw.ClearAccessToken()
}

// applyLocked commits a transition under m.mu: bumps the generation, stores
// the snapshot and notifies subscribers in transition order.
func (m *Manager) applyLocked(next Session) {
	next.Identity = next.Identity.Clone()
	m.gen++
	m.session = next
	m.snapshot.Store(next)

	m.subsMu.Lock()
	subs := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// sanitizeErr keeps ServerError details out of the published session; a
// failed restoration is simply an anonymous session.
func sanitizeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoValidSession) {
		return nil
	}
	return err
}
