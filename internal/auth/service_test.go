package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	resp     apiclient.AuthResponse
	err      error
	me       apiclient.User
	meErr    error
	logins   []apiclient.Credentials
	register []apiclient.RegisterRequest
}

func (s *stubAPI) Login(_ context.Context, creds apiclient.Credentials) (apiclient.AuthResponse, error) {
	s.logins = append(s.logins, creds)
	return s.resp, s.err
}

func (s *stubAPI) Register(_ context.Context, req apiclient.RegisterRequest) (apiclient.AuthResponse, error) {
	s.register = append(s.register, req)
	return s.resp, s.err
}

func (s *stubAPI) Me(context.Context) (apiclient.User, error) {
	return s.me, s.meErr
}

type stubCart struct {
	mu       sync.Mutex
	switches []bool
	clears   int
}

func (c *stubCart) SetAuthenticated(_ context.Context, authenticated bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switches = append(c.switches, authenticated)
	return nil
}

func (c *stubCart) ClearCart(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
	return nil
}

type harness struct {
	svc   *Service
	api   *stubAPI
	cart  *stubCart
	feed  *notifications.Feed
	local storage.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	local := storage.Scope(storage.NewMemoryBackend(), "sess")
	h := &harness{
		api:   &stubAPI{resp: apiclient.AuthResponse{Token: "opaque-token", User: apiclient.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}}},
		cart:  &stubCart{},
		feed:  notifications.NewFeed(10),
		local: local,
	}
	svc, err := NewService(ServiceParams{
		API:      h.api,
		Tokens:   NewTokenStore(local),
		Store:    local,
		Cart:     h.cart,
		Notifier: h.feed,
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestLoginStoresSessionAndSwitchesCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var seen []bool
	h.svc.OnChange(func(_ context.Context, authenticated bool) { seen = append(seen, authenticated) })

	user, err := h.svc.Login(ctx, LoginRequest{Email: " ada@example.com ", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ada@example.com", h.api.logins[0].Email)
	assert.True(t, h.svc.IsAuthenticated(ctx))
	token, err := h.svc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	current, ok := h.svc.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ada", current.Name)
	assert.Equal(t, []bool{true}, h.cart.switches)
	assert.Equal(t, []bool{true}, seen)

	toasts := h.feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, enums.NotificationLevelSuccess, toasts[0].Level)
	assert.Equal(t, "Welcome back, Ada", toasts[0].Message)
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Login(context.Background(), LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, h.api.logins)
	assert.Empty(t, h.cart.switches)
}

func TestLoginFailureSurfacesBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.api.err = pkgerrors.Wrap(pkgerrors.CodeUnauthorized, &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}, "Invalid credentials")

	_, err := h.svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)

	assert.False(t, h.svc.IsAuthenticated(context.Background()))
	toasts := h.feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, enums.NotificationLevelError, toasts[0].Level)
	assert.Equal(t, "Invalid credentials", toasts[0].Message)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	h := newHarness(t)
	h.api.resp.Token = "  "

	_, err := h.svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.False(t, h.svc.IsAuthenticated(context.Background()))
}

func TestRegisterCreatesSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "123"})
	require.Error(t, err, "short password")
	assert.Empty(t, h.api.register)

	_, err = h.svc.Register(context.Background(), RegisterRequest{Name: "   ", Email: " ada@example.com ", Password: "123456"})
	require.Error(t, err, "blank name")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, h.api.register)

	user, err := h.svc.Register(context.Background(), RegisterRequest{Name: " Ada ", Email: "ada@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ada", h.api.register[0].Name)
	assert.True(t, h.svc.IsAuthenticated(context.Background()))
	assert.Equal(t, "Account created successfully", h.feed.Drain()[0].Message)
}

func TestLogoutClearsSessionAndGuestCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
	h.feed.Drain()

	require.NoError(t, h.svc.Logout(ctx))

	assert.False(t, h.svc.IsAuthenticated(ctx))
	_, ok := h.svc.CurrentUser(ctx)
	assert.False(t, ok)
	_, err = h.local.Get(ctx, storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, []bool{true, false}, h.cart.switches)
	assert.Equal(t, 1, h.cart.clears)
	assert.Equal(t, "You have been logged out", h.feed.Drain()[0].Message)
}

func TestRefreshLogsOutOnRejectedToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	h.api.me = apiclient.User{ID: "u1", Email: "ada@example.com", Name: "Ada Lovelace"}
	user, err := h.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
	current, _ := h.svc.CurrentUser(ctx)
	assert.Equal(t, "Ada Lovelace", current.Name)

	h.api.meErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")
	_, err = h.svc.Refresh(ctx)
	require.Error(t, err)
	assert.False(t, h.svc.IsAuthenticated(ctx))
	assert.Equal(t, 1, h.cart.clears)
}

func TestRefreshRequiresSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Refresh(context.Background())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestExpiredTokenIsNotUsable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	raw, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	h.api.resp.Token = raw

	_, err = h.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.False(t, h.svc.IsAuthenticated(ctx))
	token, err := h.svc.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRestoreSwitchesCartOnlyWithToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Restore(ctx))
	assert.Empty(t, h.cart.switches)

	require.NoError(t, NewTokenStore(h.local).save(ctx, "opaque-token"))
	require.NoError(t, h.svc.Restore(ctx))
	assert.Equal(t, []bool{true}, h.cart.switches)
}
