package identity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/pickemhq/pickem-api/internal/domain/user"
	"github.com/pickemhq/pickem-api/internal/platform/cache"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
	"github.com/pickemhq/pickem-api/internal/platform/resilience"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

const defaultVerifyCacheTTL = 30 * time.Second

var errIdentityTransient = crerr.New("identity transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	VerifyCacheTTL time.Duration
	// Users, when set, receives an upsert of every freshly verified
	// principal so downstream lookups find the member on first use.
	Users          user.Repository
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client introspects bearer tokens against the identity service.
// Successful verifications are cached briefly, keyed by token hash, so
// a burst of requests from one session costs one upstream call.
type Client struct {
	httpClient     *http.Client
	introspectURL  string
	adminKey       string
	users          user.Repository
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	verified       *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	ttl := cfg.VerifyCacheTTL
	if ttl <= 0 {
		ttl = defaultVerifyCacheTTL
	}

	breakerCfg := resilience.NormalizeBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:       strings.TrimSpace(cfg.AdminKey),
		users:          cfg.Users,
		logger:         logger,
		breaker:        resilience.NewBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		verified:       cache.NewStore(ttl),
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := "identity:verify:" + hashToken(token)
	if cached, ok := c.verified.Get(ctx, cacheKey); ok {
		if principal, ok := cached.(user.Principal); ok {
			return principal, nil
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "identity circuit breaker rejected request", "state", c.breaker.State())
			return user.Principal{}, fmt.Errorf("%w: identity service is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.circuitEnabled {
		if crerr.Is(err, errIdentityTransient) {
			c.breaker.Observe(err)
		} else {
			c.breaker.Observe(nil)
		}
	}
	if err != nil {
		if crerr.Is(err, errIdentityTransient) {
			return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return user.Principal{}, err
	}

	c.provision(ctx, principal)

	c.verified.Set(ctx, cacheKey, principal)
	return principal, nil
}

// provision mirrors the verified principal into the user store so later
// member lookups resolve without a separate signup flow. A store error
// never fails authentication; the next verification retries it.
func (c *Client) provision(ctx context.Context, principal user.Principal) {
	if c.users == nil {
		return
	}

	err := c.users.Upsert(ctx, user.User{
		ID:          principal.UserID,
		DisplayName: principal.Name,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "upsert verified user", "user_id", principal.UserID, "error", err)
	}
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, crerr.Mark(crerr.Wrap(err, "request introspection"), errIdentityTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, crerr.Mark(crerr.Wrap(err, "read introspect response"), errIdentityTransient)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "identity introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, crerr.Mark(crerr.Newf("introspection status=%d", resp.StatusCode), errIdentityTransient)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Name:   decoded.Name,
	}, nil
}
