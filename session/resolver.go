package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrEthical07/goGuard/jwt"
)

// ErrNoSession is an exported constant or variable used by the route guard engine.
// It marks a definitive signed-out answer: the token was rejected or the backend
// knows of no session for it. Resolvers must reserve it for that case so the store
// can tell revocation apart from an outage.
var ErrNoSession = errors.New("no active session")

// ErrResolverUnavailable is an exported constant or variable used by the route guard engine.
// Transport failures and unexpected backend responses wrap it.
var ErrResolverUnavailable = errors.New("profile resolver unavailable")

// Resolver turns a session token into the profile the guard evaluates.
//
// Resolve returns [ErrNoSession] when the token is definitively rejected and an
// error wrapping [ErrResolverUnavailable] for transient failures. Implementations
// must honor ctx cancellation.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Profile, error)
}

// ResolverFunc adapts a plain function to the [Resolver] interface.
type ResolverFunc func(ctx context.Context, token string) (*Profile, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, token string) (*Profile, error) {
	return f(ctx, token)
}

const (
	defaultResolverTimeout = 10 * time.Second
	maxProfileBody         = 1 << 20
)

// HTTPResolver resolves profiles from a profile endpoint using bearer
// authentication. A 200 response carries the profile JSON; 401 and 403 are
// definitive rejections; everything else is treated as an outage.
type HTTPResolver struct {
	url    string
	client *http.Client
}

// NewHTTPResolver creates an [HTTPResolver] for the given profile endpoint URL,
// e.g. "https://api.example.com/me".
func NewHTTPResolver(profileURL string) *HTTPResolver {
	return &HTTPResolver{
		url:    profileURL,
		client: &http.Client{Timeout: defaultResolverTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client and returns the resolver.
func (r *HTTPResolver) WithHTTPClient(client *http.Client) *HTTPResolver {
	if client != nil {
		r.client = client
	}
	return r
}

// Resolve fetches the profile for token.
//
// Resolve may return an error when input validation, dependency calls, or security checks fail.
func (r *HTTPResolver) Resolve(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrNoSession
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrResolverUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: invalid profile payload", ErrResolverUnavailable)
	}

	return &profile, nil
}

// TokenResolver resolves profiles offline by verifying the token's own claims,
// with no network call. It suits tokens minted by [jwt.Manager]: role and
// activity travel inside the token, and any verification failure, including
// expiry, is a definitive [ErrNoSession].
//
// An offline profile is only as fresh as the token. Deployments that deactivate
// accounts server-side should prefer [HTTPResolver] or short token lifetimes.
type TokenResolver struct {
	manager *jwt.Manager
}

// NewTokenResolver creates a [TokenResolver] backed by manager.
func NewTokenResolver(manager *jwt.Manager) *TokenResolver {
	return &TokenResolver{manager: manager}
}

// Resolve verifies token and maps its claims to a profile.
//
// Resolve may return an error when input validation, dependency calls, or security checks fail.
func (t *TokenResolver) Resolve(_ context.Context, token string) (*Profile, error) {
	if t.manager == nil {
		return nil, fmt.Errorf("%w: no token manager", ErrResolverUnavailable)
	}

	claims, err := t.manager.ParseAccess(token)
	if err != nil {
		return nil, ErrNoSession
	}

	profile := &Profile{
		ID:       claims.Subject,
		Username: claims.Name,
		Role:     claims.Role,
	}
	if claims.Active != nil {
		v := *claims.Active
		profile.Active = &v
	}
	return profile, nil
}
