package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/common"
	"github.com/csvdesk/csvdesk/internal/logging"
)

// ---- fake credential store ----

type fakeStore struct {
	mu      sync.Mutex
	pair    *models.TokenPair
	loadErr error

	saves  int
	clears int
}

func (f *fakeStore) Save(ctx context.Context, pair models.TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pair = &pair
	f.saves++
	return nil
}

func (f *fakeStore) Load(ctx context.Context) (*models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.pair == nil {
		return nil, nil
	}
	p := *f.pair
	return &p, nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pair = nil
	f.clears++
	return nil
}

// ---- helpers ----

type recordedRequest struct {
	auth      string
	requestID string
	path      string
}

func TestGateway_AttachesBearerWhenTokenPresent(t *testing.T) {
	var got recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = recordedRequest{auth: r.Header.Get("Authorization"), requestID: r.Header.Get("X-Request-Id"), path: r.URL.Path}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"username":"alice","role":"user"}`))
	}))
	defer srv.Close()

	store := &fakeStore{pair: &models.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	g := New(srv.URL, store, logging.NewNopLogger())

	user, err := g.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Bearer acc", got.auth)
	assert.NotEmpty(t, got.requestID, "every request must carry a request id")
	assert.Equal(t, "/api/auth/me", got.path)
}

func TestGateway_SendsUnauthenticatedWhenNoToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := New(srv.URL, &fakeStore{}, logging.NewNopLogger())

	_, err := g.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestGateway_StorageErrorStillSendsRequest(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := &fakeStore{loadErr: errors.New("disk on fire")}
	g := New(srv.URL, store, logging.NewNopLogger())

	_, err := g.ListFiles(context.Background())
	require.NoError(t, err, "storage trouble must not fail the request")
	assert.Empty(t, auth)
}

func TestGateway_401WithoutRefreshToken_ClearsStoreOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not authenticated"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	expired := false
	store := &fakeStore{} // nothing persisted
	g := New(srv.URL, store, logging.NewNopLogger(),
		WithSessionExpiredHandler(func() { expired = true }))

	_, err := g.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 1, store.clears, "store cleared even when already empty")
	assert.False(t, expired, "no forced navigation when no session existed")
}

func TestGateway_401RefreshFails_ClearsAndExpires(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"detail":"Token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	expired := false
	store := &fakeStore{pair: &models.TokenPair{AccessToken: "stale", RefreshToken: "ref"}}
	g := New(srv.URL, store, logging.NewNopLogger(),
		WithSessionExpiredHandler(func() { expired = true })) // default NoopRefresher

	_, err := g.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 1, requests, "failed refresh must not replay the request")
	assert.Equal(t, 1, store.clears)
	assert.Nil(t, store.pair)
	assert.True(t, expired, "established session must be force-expired")
}

func TestGateway_401RefreshSucceeds_ReplaysOnce(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") != "Bearer fresh-access" {
			http.Error(w, `{"detail":"Token expired"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"username":"alice","role":"admin"}`))
	}))
	defer srv.Close()

	refreshCalls := 0
	refresher := RefresherFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		refreshCalls++
		assert.Equal(t, "old-refresh", refreshToken)
		return &models.TokenPair{AccessToken: "fresh-access", RefreshToken: "fresh-refresh"}, nil
	})

	store := &fakeStore{pair: &models.TokenPair{AccessToken: "stale", RefreshToken: "old-refresh"}}
	g := New(srv.URL, store, logging.NewNopLogger(), WithRefresher(refresher))

	user, err := g.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, 2, requests)
	assert.Equal(t, 1, refreshCalls)
	require.NotNil(t, store.pair)
	assert.Equal(t, "fresh-access", store.pair.AccessToken)
}

func TestGateway_SecondDenialOnReplayIsFinal(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"detail":"still no"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	refreshCalls := 0
	refresher := RefresherFunc(func(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
		refreshCalls++
		return &models.TokenPair{AccessToken: "fresh", RefreshToken: "fresh-r"}, nil
	})

	store := &fakeStore{pair: &models.TokenPair{AccessToken: "stale", RefreshToken: "ref"}}
	g := New(srv.URL, store, logging.NewNopLogger(), WithRefresher(refresher))

	_, err := g.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 2, requests, "exactly one replay, never more")
	assert.Equal(t, 1, refreshCalls, "recovery must not run recursively")
}

func TestGateway_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	g := New(srv.URL, &fakeStore{}, logging.NewNopLogger())

	_, err := g.ListFiles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestAPIError_DetailAndSentinels(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, sentinel: common.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, sentinel: common.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, sentinel: common.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, sentinel: common.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"boom"}`, tt.status)
			}))
			defer srv.Close()

			g := New(srv.URL, &fakeStore{}, logging.NewNopLogger())

			_, err := g.ListFiles(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "boom", apiErr.Detail)
		})
	}
}

func TestAPIError_BadRequestKeepsDetailWithoutSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Username already registered"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	g := New(srv.URL, &fakeStore{}, logging.NewNopLogger())

	err := g.Signup(context.Background(), "alice", "pw")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Username already registered", apiErr.Detail)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
}
