package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/csvdesk/csvdesk/internal/client/credstore"
	"github.com/csvdesk/csvdesk/internal/common"
	"github.com/csvdesk/csvdesk/internal/logging"
)

// Doer sends a single HTTP request.
type Doer func(req *http.Request) (*http.Response, error)

// Middleware wraps a Doer with one pipeline stage.
type Middleware func(next Doer) Doer

// Gateway is the single choke point for outbound API calls. Requests are
// built per attempt (never reused), pass through the middleware pipeline,
// and 401 responses run the recovery protocol at most once per logical
// request.
type Gateway struct {
	baseURL   string
	httpc     *http.Client
	creds     credstore.Store
	refresher TokenRefresher
	onExpired func()
	log       logging.Logger
	send      Doer
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpc = c }
}

// WithRefresher installs a token refresh capability. The default is
// NoopRefresher.
func WithRefresher(r TokenRefresher) Option {
	return func(g *Gateway) { g.refresher = r }
}

// WithSessionExpiredHandler registers the callback fired when an established
// session can no longer be recovered (the "force navigation to login" hook).
// It is invoked only when a refresh token existed and recovery failed.
func WithSessionExpiredHandler(fn func()) Option {
	return func(g *Gateway) { g.onExpired = fn }
}

// New builds a Gateway for the given server base URL. The pipeline is fixed
// at construction: request-ID stage, then credential-attach stage, then the
// HTTP client.
func New(baseURL string, creds credstore.Store, log logging.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     &http.Client{},
		creds:     creds,
		refresher: NoopRefresher{},
		onExpired: func() {},
		log:       log,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.send = chain(g.httpc.Do, g.requestID, g.attachCredentials)
	return g
}

// chain composes stages so the first listed middleware runs first.
func chain(base Doer, stages ...Middleware) Doer {
	d := base
	for i := len(stages) - 1; i >= 0; i-- {
		d = stages[i](d)
	}
	return d
}

// requestID tags every outbound request so server logs can be correlated.
func (g *Gateway) requestID(next Doer) Doer {
	return func(req *http.Request) (*http.Response, error) {
		req.Header.Set("X-Request-Id", uuid.NewString())
		return next(req)
	}
}

// attachCredentials reads the store and adds the bearer header when a pair
// is present. Storage errors mean the request goes out unauthenticated;
// they are logged, never propagated.
func (g *Gateway) attachCredentials(next Doer) Doer {
	return func(req *http.Request) (*http.Response, error) {
		pair, err := g.creds.Load(req.Context())
		if err != nil {
			g.log.Warn(req.Context(), "credential load failed, sending unauthenticated", "error", err)
		} else if pair.Complete() {
			req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		}
		return next(req)
	}
}

// buildFunc constructs a fresh request for one send attempt. It is called
// again for the replay so the body and the attached token are both current.
type buildFunc func(ctx context.Context) (*http.Request, error)

// do sends the request and applies the recovery protocol. The returned
// response, if non-nil, has a status the caller still needs to classify;
// a 401 that survived recovery comes back as an error.
func (g *Gateway) do(ctx context.Context, build buildFunc) (*http.Response, error) {
	resp, err := g.sendOnce(ctx, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Recovery runs once per logical request. The original response is
	// consumed either way.
	apiErr := decodeError(resp)
	_ = resp.Body.Close()

	if !g.recoverCredentials(ctx) {
		return nil, apiErr
	}

	// Refresh succeeded: replay exactly once with the new token. A second
	// denial is final, with no further recovery.
	resp, err = g.sendOnce(ctx, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		retryErr := decodeError(resp)
		_ = resp.Body.Close()
		return nil, retryErr
	}
	return resp, nil
}

func (g *Gateway) sendOnce(ctx context.Context, build buildFunc) (*http.Response, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := g.send(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	return resp, nil
}

// recoverCredentials handles a rejected access token. It reports whether
// the caller should replay the request (i.e. a refresh produced a usable
// pair). Side effects:
//   - refresh token present, refresh fails: store cleared, session-expired
//     handler fired.
//   - no refresh token: store cleared, no handler (some 401s happen before
//     any session existed; the caller decides what to do).
func (g *Gateway) recoverCredentials(ctx context.Context) bool {
	pair, err := g.creds.Load(ctx)
	if err != nil {
		g.log.Warn(ctx, "credential load failed during recovery", "error", err)
		return false
	}

	if pair == nil || pair.RefreshToken == "" {
		g.clearCredentials(ctx)
		return false
	}

	fresh, err := g.refresher.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		g.log.Info(ctx, "token refresh failed, session expired", "error", err)
		g.clearCredentials(ctx)
		g.onExpired()
		return false
	}

	if err := g.creds.Save(ctx, *fresh); err != nil {
		g.log.Warn(ctx, "failed to persist refreshed tokens", "error", err)
	}
	return true
}

func (g *Gateway) clearCredentials(ctx context.Context) {
	if err := g.creds.Clear(ctx); err != nil {
		g.log.Warn(ctx, "failed to clear credentials", "error", err)
	}
}

func (g *Gateway) url(path string) string {
	return g.baseURL + path
}
