package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Area names a logical backend API area with its own base URL.
type Area string

const (
	AreaAuth    Area = "auth"
	AreaUser    Area = "user"
	AreaSeller  Area = "seller"
	AreaProduct Area = "product"
	AreaAdmin   Area = "admin"
)

// Config carries client configuration. One base URL per logical API area,
// mirroring the deployment's env-injected endpoints.
type Config struct {
	AuthURL    string
	UserURL    string
	SellerURL  string
	ProductURL string
	AdminURL   string
	// Timeout bounds every backend call; elapsed calls surface as ServerError.
	Timeout time.Duration
	Logger  *zap.Logger
}

func (c Config) areaURL(area Area) string {
	switch area {
	case AreaAuth:
		return c.AuthURL
	case AreaUser:
		return c.UserURL
	case AreaSeller:
		return c.SellerURL
	case AreaProduct:
		return c.ProductURL
	case AreaAdmin:
		return c.AdminURL
	default:
		return ""
	}
}

// TokenRefresher exchanges the refresh credential for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

// errUnauthorized marks a 401 response internally so Do can coordinate the
// shared refresh. It never escapes the gateway.
var errUnauthorized = errors.New("unauthorized")

// Gateway routes every outbound backend call: it attaches the current access
// credential and transparently renews it on an authorization failure. A 401
// storm across concurrent calls shares a single refresh attempt, and each
// failing call is retried at most once.
type Gateway struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	accessToken string
	epoch       uint64

	refreshGroup singleflight.Group
	refresher    TokenRefresher
	onExpired    func()
}

// NewGateway builds a gateway with a cookie jar, so httpOnly refresh
// credentials set by the backend travel back automatically.
func NewGateway(cfg Config) (*Gateway, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Jar: jar, Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// SetRefresher installs the token authority used for 401 renewal.
func (g *Gateway) SetRefresher(r TokenRefresher) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refresher = r
}

// OnSessionExpired installs the hook invoked when a renewal attempt fails.
func (g *Gateway) OnSessionExpired(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onExpired = fn
}

// SetAccessToken replaces the credential attached to subsequent requests.
func (g *Gateway) SetAccessToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessToken = token
}

// ClearAccessToken drops the credential and advances the epoch, so a renewal
// that resolves after the clear cannot reinstall a token for a session that
// no longer exists.
func (g *Gateway) ClearAccessToken() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessToken = ""
	g.epoch++
}

// AccessToken returns the currently attached credential.
func (g *Gateway) AccessToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accessToken
}

// Do performs an authenticated call. On a 401 the failing call is suspended,
// one shared refresh runs, and the call is retried once with the renewed
// credential. Refresh failure propagates ErrNoValidSession and signals the
// session manager. Non-401 failures propagate untouched.
func (g *Gateway) Do(ctx context.Context, area Area, method, path string, body, out any) error {
	err := g.roundTrip(ctx, area, method, path, body, out, true)
	if !errors.Is(err, errUnauthorized) {
		return err
	}

	if refreshErr := g.sharedRefresh(ctx); refreshErr != nil {
		g.signalExpired()
		return ErrNoValidSession
	}

	err = g.roundTrip(ctx, area, method, path, body, out, true)
	if errors.Is(err, errUnauthorized) {
		g.signalExpired()
		return ErrNoValidSession
	}
	return err
}

// DoUnauthenticated performs a call without credential attachment or renewal.
// The token authority uses it for the credential lifecycle endpoints.
func (g *Gateway) DoUnauthenticated(ctx context.Context, area Area, method, path string, body, out any) error {
	err := g.roundTrip(ctx, area, method, path, body, out, false)
	if errors.Is(err, errUnauthorized) {
		return ErrNoValidSession
	}
	return err
}

// sharedRefresh funnels concurrent renewal attempts into one backend call.
// The renewed token is installed only when the epoch is unchanged; a logout
// during the renewal wins and the late result is discarded.
func (g *Gateway) sharedRefresh(ctx context.Context) error {
	g.mu.Lock()
	refresher := g.refresher
	epoch := g.epoch
	g.mu.Unlock()
	if refresher == nil {
		return ErrNoValidSession
	}

	token, err, _ := g.refreshGroup.Do("refresh", func() (any, error) {
		return refresher.Refresh(ctx)
	})
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epoch != epoch {
		return ErrNoValidSession
	}
	g.accessToken = token.(string)
	return nil
}

func (g *Gateway) signalExpired() {
	g.mu.Lock()
	fn := g.onExpired
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (g *Gateway) roundTrip(ctx context.Context, area Area, method, path string, body, out any, authed bool) error {
	base := g.cfg.areaURL(area)
	if base == "" {
		return newServerError(0, "no base URL configured for area "+string(area))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return newServerError(0, "encode request: "+err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return newServerError(0, err.Error())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := g.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return newServerError(0, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newServerError(resp.StatusCode, "decode response: "+err.Error())
	}
	return nil
}

// decodeAPIError maps the backend's error envelope onto the client taxonomy.
// A plain 401 becomes the internal unauthorized marker so Do can renew the
// credential; a 401 carrying INVALID_CREDENTIALS is a rejected login, not an
// expired session.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return errUnauthorized
		}
		return newServerError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	switch envelope.Error.Code {
	case "INVALID_CREDENTIALS":
		return ErrInvalidCredentials
	case "NOT_A_SELLER":
		return ErrNotASeller
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	return newServerError(resp.StatusCode, envelope.Error.Message)
}
