// Package credstore persists the access/refresh token pair across client
// runs. It is pure storage: no network calls, no session logic.
//
// Degradation contract: when the local database cannot be opened, callers
// receive a no-op store: every Save/Clear silently succeeds and every Load
// reports "nothing persisted". Credential storage problems are never fatal
// to the application.
package credstore

import (
	"context"

	"github.com/csvdesk/csvdesk/internal/client/models"
)

// Store persists at most one token pair.
//
// Contract:
//   - Save replaces the persisted pair atomically; after a successful Save
//     both tokens are present.
//   - Load returns nil (not an error) when no complete pair is persisted.
//   - Clear removes both tokens; clearing an empty store is not an error.
type Store interface {
	Save(ctx context.Context, pair models.TokenPair) error
	Load(ctx context.Context) (*models.TokenPair, error)
	Clear(ctx context.Context) error
}

// storage keys, fixed by the persisted-state layout
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)
