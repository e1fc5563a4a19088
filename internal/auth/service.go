package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/apiclient"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/validation"
	"go.uber.org/multierr"
)

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r LoginRequest) normalized() LoginRequest {
	r.Email = strings.TrimSpace(r.Email)
	return r
}

func (r RegisterRequest) normalized() RegisterRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

// Listener observes auth transitions.
type Listener func(ctx context.Context, authenticated bool)

type authAPI interface {
	Login(ctx context.Context, creds apiclient.Credentials) (apiclient.AuthResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (apiclient.AuthResponse, error)
	Me(ctx context.Context) (apiclient.User, error)
}

// CartModeSwitcher is the cart engine surface auth drives.
type CartModeSwitcher interface {
	SetAuthenticated(ctx context.Context, authenticated bool) error
	ClearCart(ctx context.Context) error
}

// ServiceParams bundles the dependencies of a session's auth service.
type ServiceParams struct {
	API      authAPI
	Tokens   *TokenStore
	Store    storage.Store
	Cart     CartModeSwitcher
	Notifier notifications.Notifier
	Logger   *logger.Logger
}

// Service owns the token and user records of one session.
type Service struct {
	api      authAPI
	tokens   *TokenStore
	records  *storage.Records
	cart     CartModeSwitcher
	notifier notifications.Notifier
	logg     *logger.Logger

	mu        sync.Mutex
	listeners []Listener
}

func NewService(p ServiceParams) (*Service, error) {
	if p.API == nil {
		return nil, fmt.Errorf("auth api is required")
	}
	if p.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("local store is required")
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("cart is required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		api:      p.API,
		tokens:   p.Tokens,
		records:  storage.NewRecords(p.Store),
		cart:     p.Cart,
		notifier: p.Notifier,
		logg:     logg,
	}, nil
}

// OnChange registers a listener for login and logout.
func (s *Service) OnChange(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (apiclient.User, error) {
	req = req.normalized()
	if err := validation.Struct(req); err != nil {
		return apiclient.User{}, err
	}
	resp, err := s.api.Login(ctx, apiclient.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		notifications.Error(ctx, s.notifier, failureMessage(err, "Login failed"))
		return apiclient.User{}, err
	}
	if err := s.begin(ctx, resp); err != nil {
		return apiclient.User{}, err
	}
	notifications.Success(ctx, s.notifier, "Welcome back, "+displayName(resp.User))
	return resp.User, nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (apiclient.User, error) {
	req = req.normalized()
	if err := validation.Struct(req); err != nil {
		return apiclient.User{}, err
	}
	resp, err := s.api.Register(ctx, apiclient.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		notifications.Error(ctx, s.notifier, failureMessage(err, "Registration failed"))
		return apiclient.User{}, err
	}
	if err := s.begin(ctx, resp); err != nil {
		return apiclient.User{}, err
	}
	notifications.Success(ctx, s.notifier, "Account created successfully")
	return resp.User, nil
}

// begin stores the session records and switches the cart to the server.
func (s *Service) begin(ctx context.Context, resp apiclient.AuthResponse) error {
	if strings.TrimSpace(resp.Token) == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "auth response carried no token")
	}
	if err := s.tokens.save(ctx, resp.Token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store token")
	}
	if err := s.records.SaveJSON(ctx, storage.KeyUser, resp.User); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store user")
	}
	if err := s.cart.SetAuthenticated(ctx, true); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, resp.User.ID), "failed to load server cart after login", err)
	}
	s.emit(ctx, true)
	return nil
}

// Logout forgets the token and user, returns the cart to guest mode and empties it.
func (s *Service) Logout(ctx context.Context) error {
	err := multierr.Combine(
		s.tokens.clear(ctx),
		s.records.Delete(ctx, storage.KeyUser),
	)
	if switchErr := s.cart.SetAuthenticated(ctx, false); switchErr != nil {
		s.logg.Error(ctx, "failed to load guest cart after logout", switchErr)
	}
	err = multierr.Append(err, s.cart.ClearCart(ctx))
	s.emit(ctx, false)
	s.notifier.Notify(ctx, enums.NotificationLevelInfo, "You have been logged out")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "logout")
	}
	return nil
}

// CurrentUser returns the stored user of an authenticated session.
func (s *Service) CurrentUser(ctx context.Context) (apiclient.User, bool) {
	if !s.IsAuthenticated(ctx) {
		return apiclient.User{}, false
	}
	var user apiclient.User
	if err := s.records.LoadJSON(ctx, storage.KeyUser, &user); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logg.Error(ctx, "failed to read stored user", err)
		}
		return apiclient.User{}, false
	}
	return user, true
}

// Refresh re-reads the user from the backend. A rejected token logs the session out.
func (s *Service) Refresh(ctx context.Context) (apiclient.User, error) {
	if !s.IsAuthenticated(ctx) {
		return apiclient.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not logged in")
	}
	user, err := s.api.Me(ctx)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
			if logoutErr := s.Logout(ctx); logoutErr != nil {
				s.logg.Error(ctx, "logout after rejected token failed", logoutErr)
			}
		}
		return apiclient.User{}, err
	}
	if err := s.records.SaveJSON(ctx, storage.KeyUser, user); err != nil {
		return apiclient.User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store user")
	}
	return user, nil
}

// IsAuthenticated reports whether a usable token is stored.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logg.Error(ctx, "failed to read token", err)
		return false
	}
	return token != ""
}

// Token returns the bearer token for the API client.
func (s *Service) Token(ctx context.Context) (string, error) {
	return s.tokens.Token(ctx)
}

// Restore puts the cart in the mode matching the stored token and hydrates it.
func (s *Service) Restore(ctx context.Context) error {
	authenticated := s.IsAuthenticated(ctx)
	if !authenticated {
		return nil
	}
	return s.cart.SetAuthenticated(ctx, true)
}

func (s *Service) emit(ctx context.Context, authenticated bool) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, listener := range listeners {
		listener(ctx, authenticated)
	}
}

func displayName(user apiclient.User) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return user.Email
}

// failureMessage prefers the backend's message for rejected credentials.
func failureMessage(err error, fallback string) string {
	if apiclient.StatusOf(err) == 0 {
		return fallback
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return fallback
}
