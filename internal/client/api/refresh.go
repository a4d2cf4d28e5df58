package api

import (
	"context"
	"errors"

	"github.com/csvdesk/csvdesk/internal/client/models"
)

// ErrRefreshUnsupported is returned by NoopRefresher: the deployed server
// exposes no refresh endpoint yet.
var ErrRefreshUnsupported = errors.New("token refresh not supported")

// TokenRefresher exchanges a refresh token for a fresh pair. It is a
// pluggable capability: the gateway's recovery protocol calls it when a
// request is denied, and degrades to clearing credentials when it fails.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// NoopRefresher always fails with ErrRefreshUnsupported, which makes the
// recovery protocol fall through to its logout path. This is the default
// until the server grows a refresh endpoint.
type NoopRefresher struct{}

func (NoopRefresher) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	return nil, ErrRefreshUnsupported
}

// RefresherFunc adapts a function to the TokenRefresher interface.
type RefresherFunc func(ctx context.Context, refreshToken string) (*models.TokenPair, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	return f(ctx, refreshToken)
}
