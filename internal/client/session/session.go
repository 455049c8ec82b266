// Package session derives the signed-in user from the query cache entry
// for /auth/user and provides login seeding, logout and route guards.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gilab/labsite/internal/client/client"
	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/querycache"
	"github.com/gilab/labsite/internal/client/tokenstore"
	"github.com/gilab/labsite/internal/logging"
)

const (
	UserPath  = "/auth/user"
	HomeRoute = "/"
)

var (
	ErrNotAuthenticated = errors.New("login required")
	ErrForbidden        = errors.New("admin access required")
)

// UserKey is the cache key holding the current user.
func UserKey() querycache.Key {
	return querycache.NewKey(UserPath)
}

type API interface {
	Get(ctx context.Context, path string, opts ...client.RequestOption) (*client.Response, error)
}

// Navigator moves the front-end to another route.
type Navigator interface {
	Navigate(route string)
}

type State struct {
	User            *models.User
	IsLoading       bool
	Err             error
	IsAuthenticated bool
	IsAdmin         bool
}

func stateFrom(snap querycache.Snapshot) State {
	user, _ := snap.Data.(*models.User)
	st := State{
		User:            user,
		IsLoading:       snap.IsLoading(),
		IsAuthenticated: user != nil,
		IsAdmin:         user != nil && user.IsAdmin,
	}
	if snap.Status == querycache.StatusError {
		st.Err = snap.Err
	}
	return st
}

type Session struct {
	cache  *querycache.Cache
	api    API
	tokens tokenstore.Store
	nav    Navigator
	log    logging.Logger
}

func New(cache *querycache.Cache, api API, tokens tokenstore.Store, nav Navigator, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{cache: cache, api: api, tokens: tokens, nav: nav, log: log.With("component", "session")}
}

// fetchUser treats 401 as "nobody is signed in" rather than an error.
func (s *Session) fetchUser(ctx context.Context) (*models.User, error) {
	resp, err := s.api.Get(ctx, UserPath)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var u models.User
	if err := resp.Decode(&u); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if u.ID == "" && u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

// Load returns the current user, loading it once. Session loads are never
// retried.
func (s *Session) Load(ctx context.Context) (*models.User, error) {
	return querycache.FetchAs(ctx, s.cache, UserKey(), s.fetchUser, querycache.WithRetry(0))
}

// Refetch reloads the user even if the cached value is fresh.
func (s *Session) Refetch(ctx context.Context) (*models.User, error) {
	s.Invalidate()
	return s.Load(ctx)
}

func (s *Session) State() State {
	return stateFrom(s.cache.Get(UserKey()))
}

// Subscribe calls fn on every change of the session entry.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.cache.Subscribe(UserKey(), func(snap querycache.Snapshot) {
		fn(stateFrom(snap))
	})
}

// Seed stores user as the current session without a round trip.
func (s *Session) Seed(user *models.User) {
	s.cache.SetData(UserKey(), user)
}

// Invalidate marks the session stale so the next Load asks the server.
func (s *Session) Invalidate() {
	s.cache.Invalidate(UserKey())
}

// HandleUnauthorized is meant for client.Client.OnUnauthorized: once the
// server has rejected the token the session is anonymous.
func (s *Session) HandleUnauthorized(ctx context.Context) {
	s.log.Debug(ctx, "token rejected, session reset")
	s.Seed(nil)
}

// Logout forgets the token, shows the visitor as anonymous right away,
// marks the entry for a later reload and returns to the home route.
func (s *Session) Logout(ctx context.Context) {
	s.tokens.Clear(ctx)
	s.Seed(nil)
	s.Invalidate()
	if s.nav != nil {
		s.nav.Navigate(HomeRoute)
	}
	s.log.Info(ctx, "logged out")
}

// RequireAuth returns the signed-in user or ErrNotAuthenticated.
func (s *Session) RequireAuth(ctx context.Context) (*models.User, error) {
	user, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// RequireAdmin is RequireAuth plus an admin check.
func (s *Session) RequireAdmin(ctx context.Context) (*models.User, error) {
	user, err := s.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	return user, nil
}
