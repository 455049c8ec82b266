package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gilab/labsite/internal/client/services"
	"github.com/gilab/labsite/internal/client/session"
	"github.com/gilab/labsite/internal/client/tokenstore"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. On success the App moves to
// the home route.
func (a *App) Login(ctx context.Context) error {
	a.Navigate(RouteLogin)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, services.LoginInput{Email: email, Password: string(password)})
	clear(password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	a.success("Welcome, " + user.DisplayName())
	a.Navigate(RouteHome)
	return nil
}

// Register creates an account. It cannot be used until an admin approves
// it, so the visitor stays signed out.
func (a *App) Register(ctx context.Context) error {
	a.Navigate(RouteRegister)

	var in services.RegisterInput
	var err error
	if in.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if in.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if in.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	in.Password = string(password)
	clear(password)

	if err := a.auth.Register(ctx, in); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	a.success("Registered. Wait for an administrator to approve your account.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	a.success("Logged out")
	return nil
}

// WhoAmI shows the signed-in user, loading the session if needed.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.session.Load(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		a.println(subtleStyle.Render("Not logged in"))
		return nil
	}
	a.printf("%s <%s>\n", titleStyle.Render(user.DisplayName()), user.Email)
	switch {
	case user.IsAdmin:
		a.println(okStyle.Render(iconDot + " administrator"))
	case !user.IsApproved:
		a.println(warnStyle.Render(iconDot + " awaiting approval"))
	}
	return nil
}

// Token shows what the stored token claims about itself. The server's
// answer to /auth/user is what counts; this is informational only.
func (a *App) Token(ctx context.Context) error {
	tok, ok := a.tokens.Get(ctx)
	if !ok {
		a.println(subtleStyle.Render("No token stored"))
		return nil
	}
	claims, err := tokenstore.Inspect(tok)
	if errors.Is(err, tokenstore.ErrOpaqueToken) {
		a.println("Opaque token stored")
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("subject: %s\n", claims.Subject)
	if !claims.ExpiresAt.IsZero() {
		state := okStyle.Render("valid")
		if claims.Expired(time.Now()) {
			state = errStyle.Render("expired")
		}
		a.printf("expires: %s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
	}
	return nil
}

// guard runs the route guard for an admin page: anonymous visitors are
// sent to the login route.
func (a *App) guard(ctx context.Context, admin bool) error {
	var err error
	if admin {
		_, err = a.session.RequireAdmin(ctx)
	} else {
		_, err = a.session.RequireAuth(ctx)
	}
	if errors.Is(err, session.ErrNotAuthenticated) {
		a.Navigate(RouteLogin)
	}
	return err
}
