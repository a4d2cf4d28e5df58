package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/common"
	"github.com/csvdesk/csvdesk/internal/logging"
)

// ---- fakes ----

type fakeStore struct {
	pair   *models.TokenPair
	clears int
}

func (f *fakeStore) Save(ctx context.Context, pair models.TokenPair) error {
	f.pair = &pair
	return nil
}

func (f *fakeStore) Load(ctx context.Context) (*models.TokenPair, error) {
	if f.pair == nil {
		return nil, nil
	}
	p := *f.pair
	return &p, nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.pair = nil
	f.clears++
	return nil
}

type fakeIdentity struct {
	loginPair *models.TokenPair
	loginErr  error
	signupErr error
	meUser    *models.UserRef
	meErr     error

	loginCalls  int
	signupCalls int
	meCalls     int

	lastLoginUser string
	lastLoginPass string
}

func (f *fakeIdentity) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	f.loginCalls++
	f.lastLoginUser = username
	f.lastLoginPass = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginPair, nil
}

func (f *fakeIdentity) Signup(ctx context.Context, username, password string) error {
	f.signupCalls++
	return f.signupErr
}

func (f *fakeIdentity) Me(ctx context.Context) (*models.UserRef, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.meUser, nil
}

func requireInvariant(t *testing.T, v View) {
	t.Helper()
	if v.Status == StatusAuthenticated {
		require.NotNil(t, v.User)
	} else {
		require.Nil(t, v.User)
	}
}

// ---- tests ----

func TestNew_InitialStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("loading when pair persisted", func(t *testing.T) {
		store := &fakeStore{pair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"}}
		m := New(ctx, &fakeIdentity{}, store, logging.NewNopLogger())
		assert.Equal(t, StatusLoading, m.Snapshot().Status)
	})

	t.Run("anonymous when nothing persisted", func(t *testing.T) {
		m := New(ctx, &fakeIdentity{}, &fakeStore{}, logging.NewNopLogger())
		assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
	})
}

func TestBootstrap_NoToken_SettlesAnonymous(t *testing.T) {
	ctx := context.Background()
	api := &fakeIdentity{}
	m := New(ctx, api, &fakeStore{}, logging.NewNopLogger())

	require.NoError(t, m.Bootstrap(ctx))
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
	assert.Zero(t, api.meCalls, "no identity fetch without a token")
}

func TestBootstrap_TokenValid_Authenticates(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{pair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	api := &fakeIdentity{meUser: &models.UserRef{ID: 1, Username: "alice", Role: models.RoleUser}}
	m := New(ctx, api, store, logging.NewNopLogger())

	var seen []Status
	m.Subscribe(func(v View) {
		requireInvariant(t, v)
		seen = append(seen, v.Status)
	})

	require.NoError(t, m.Bootstrap(ctx))

	v := m.Snapshot()
	assert.Equal(t, StatusAuthenticated, v.Status)
	assert.Equal(t, "alice", v.User.Username)
	assert.False(t, m.IsAdmin())
	assert.Equal(t, []Status{StatusLoading, StatusAuthenticated}, seen)
}

func TestBootstrap_TokenRejected_ClearsAndDegrades(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{pair: &models.TokenPair{AccessToken: "stale", RefreshToken: "r"}}
	api := &fakeIdentity{meErr: fmt.Errorf("identity: %w", common.ErrUnauthorized)}
	m := New(ctx, api, store, logging.NewNopLogger())

	err := m.Bootstrap(ctx)
	require.Error(t, err)
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
	assert.Nil(t, store.pair, "stale credentials must be cleared")
}

func TestBootstrap_ServerUnreachable_GoesGuestKeepsToken(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{pair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	api := &fakeIdentity{meErr: fmt.Errorf("dial: %w", common.ErrUnavailable)}
	m := New(ctx, api, store, logging.NewNopLogger())

	err := m.Bootstrap(ctx)
	require.Error(t, err)
	assert.Equal(t, StatusGuest, m.Snapshot().Status)
	assert.NotNil(t, store.pair, "token kept so a later start can retry")
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	api := &fakeIdentity{
		loginPair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		meUser:    &models.UserRef{ID: 2, Username: "bob", Role: models.RoleAdmin},
	}
	m := New(ctx, api, store, logging.NewNopLogger())

	require.NoError(t, m.Login(ctx, "bob", "pw"))

	v := m.Snapshot()
	assert.Equal(t, StatusAuthenticated, v.Status)
	assert.True(t, m.IsAdmin())
	require.NotNil(t, store.pair)
	assert.Equal(t, "a", store.pair.AccessToken)
}

func TestLogin_BadCredentials_LeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	api := &fakeIdentity{loginErr: fmt.Errorf("login: %w", common.ErrUnauthorized)}
	m := New(ctx, api, store, logging.NewNopLogger())

	err := m.Login(ctx, "bob", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
	assert.Nil(t, store.pair, "credential store stays empty")
	assert.Zero(t, api.meCalls)
}

func TestLoginThenLogout_EndsAnonymousWithEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	api := &fakeIdentity{
		loginPair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		meUser:    &models.UserRef{ID: 1, Username: "alice", Role: models.RoleUser},
	}
	m := New(ctx, api, store, logging.NewNopLogger())

	require.NoError(t, m.Login(ctx, "alice", "pw"))
	m.Logout(ctx)

	v := m.Snapshot()
	assert.Equal(t, StatusAnonymous, v.Status)
	assert.Nil(t, v.User)
	assert.Nil(t, store.pair)
}

func TestSignup_RunsLoginOnlyAfterSuccess(t *testing.T) {
	ctx := context.Background()
	api := &fakeIdentity{
		loginPair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		meUser:    &models.UserRef{ID: 3, Username: "carol", Role: models.RoleUser},
	}
	m := New(ctx, api, &fakeStore{}, logging.NewNopLogger())

	require.NoError(t, m.Signup(ctx, "carol", "pw"))
	assert.Equal(t, 1, api.signupCalls)
	assert.Equal(t, 1, api.loginCalls)
	assert.Equal(t, "carol", api.lastLoginUser)
	assert.Equal(t, "pw", api.lastLoginPass)
	assert.Equal(t, StatusAuthenticated, m.Snapshot().Status)
}

func TestSignup_DuplicateUsername_NoLoginAttempt(t *testing.T) {
	ctx := context.Background()
	api := &fakeIdentity{signupErr: errors.New("username already registered")}
	m := New(ctx, api, &fakeStore{}, logging.NewNopLogger())

	err := m.Signup(ctx, "carol", "pw")
	require.Error(t, err)
	assert.Zero(t, api.loginCalls)
	assert.Equal(t, StatusAnonymous, m.Snapshot().Status)
}

func TestSignup_EmbeddedLoginFails_UserStaysNil(t *testing.T) {
	ctx := context.Background()
	api := &fakeIdentity{loginErr: fmt.Errorf("login: %w", common.ErrUnauthorized)}
	m := New(ctx, api, &fakeStore{}, logging.NewNopLogger())

	err := m.Signup(ctx, "carol", "pw")
	require.Error(t, err)

	v := m.Snapshot()
	assert.Nil(t, v.User)
	requireInvariant(t, v)
}

func TestExpire_ResetsToAnonymous(t *testing.T) {
	ctx := context.Background()
	api := &fakeIdentity{
		loginPair: &models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		meUser:    &models.UserRef{ID: 1, Username: "alice", Role: models.RoleUser},
	}
	m := New(ctx, api, &fakeStore{}, logging.NewNopLogger())
	require.NoError(t, m.Login(ctx, "alice", "pw"))

	m.Expire()
	v := m.Snapshot()
	assert.Equal(t, StatusAnonymous, v.Status)
	assert.Nil(t, v.User)
}

func TestSubscribe_UnsubscribeStopsNotifications(t *testing.T) {
	ctx := context.Background()
	m := New(ctx, &fakeIdentity{}, &fakeStore{}, logging.NewNopLogger())

	calls := 0
	unsubscribe := m.Subscribe(func(View) { calls++ })

	m.Expire()
	require.Equal(t, 1, calls)

	unsubscribe()
	m.Expire()
	assert.Equal(t, 1, calls)
}

func TestSubscribe_NotifiesInSubscriptionOrder(t *testing.T) {
	ctx := context.Background()
	m := New(ctx, &fakeIdentity{}, &fakeStore{}, logging.NewNopLogger())

	var order []int
	for i := 0; i < 6; i++ {
		i := i
		m.Subscribe(func(View) { order = append(order, i) })
	}

	m.Expire()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
}
