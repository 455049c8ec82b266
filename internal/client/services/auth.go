// Package services holds the flows behind the front-end pages: signing in
// and registering, the cached public content, and the admin authoring
// actions. Reads go through the query cache; writes go straight to the API
// and then invalidate the keys they affect.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gilab/labsite/internal/client/client"
	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/session"
	"github.com/gilab/labsite/internal/client/tokenstore"
	"github.com/gilab/labsite/internal/logging"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

// API is the subset of client.Client the services use.
type API interface {
	Get(ctx context.Context, path string, opts ...client.RequestOption) (*client.Response, error)
	Post(ctx context.Context, path string, body any, opts ...client.RequestOption) (*client.Response, error)
	Put(ctx context.Context, path string, body any, opts ...client.RequestOption) (*client.Response, error)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// AuthService signs visitors in and registers new accounts.
//
// Login stores the issued token and seeds the session with the returned
// user; the session entry is then marked stale so the next read confirms it
// with the server. Register only creates the account: it stays unusable
// until an admin approves it.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*models.User, error)
	Register(ctx context.Context, in RegisterInput) error
	Logout(ctx context.Context)
}

type authService struct {
	api     API
	tokens  tokenstore.Store
	session *session.Session
	log     logging.Logger
}

func NewAuthService(api API, tokens tokenstore.Store, sess *session.Session, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{api: api, tokens: tokens, session: sess, log: log.With("service", "auth")}
}

func (a *authService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := Validate(in); err != nil {
		return nil, err
	}

	resp, err := a.api.Post(ctx, loginPath, models.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var out models.LoginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login: no access token in response")
	}

	a.tokens.Set(ctx, out.AccessToken)
	user := out.User
	a.session.Seed(&user)
	a.session.Invalidate()

	a.log.Info(ctx, "logged in", "user", user.ID)
	return &user, nil
}

func (a *authService) Register(ctx context.Context, in RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := Validate(in); err != nil {
		return err
	}

	req := models.RegisterRequest{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if _, err := a.api.Post(ctx, registerPath, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	a.log.Info(ctx, "registration submitted", "email", in.Email)
	return nil
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}
