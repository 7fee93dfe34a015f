package session

// Client bundles the session components over a single gateway: one cookie
// jar, one access token, one session state machine.
type Client struct {
	Gateway   *Gateway
	Authority *TokenAuthority
	Manager   *Manager
	Roles     *RoleSwitcher
}

// NewClient wires the full client. A nil store disables local snapshot
// caching; every restoration then revalidates against the backend.
func NewClient(cfg Config, store CredentialStore) (*Client, error) {
	gw, err := NewGateway(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = nopStore{}
	}

	authority := NewTokenAuthority(gw, cfg.Logger)
	manager := NewManager(store, authority, gw, cfg.Logger)
	return &Client{
		Gateway:   gw,
		Authority: authority,
		Manager:   manager,
		Roles:     NewRoleSwitcher(manager, gw),
	}, nil
}

type nopStore struct{}

func (nopStore) Save(*Identity)          {}
func (nopStore) Load() (*Identity, bool) { return nil, false }
func (nopStore) Clear()                  {}
