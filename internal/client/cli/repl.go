package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gilab/labsite/internal/client/client"
	"github.com/gilab/labsite/internal/client/services"
	"github.com/gilab/labsite/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Route() string
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Token(ctx context.Context) error
	Publications(ctx context.Context, args []string) error
	Recent(ctx context.Context, args []string) error
	Members(ctx context.Context) error
	News(ctx context.Context, args []string) error
	Lab(ctx context.Context) error
	Areas(ctx context.Context) error
	Refresh() error
	Pending(ctx context.Context) error
	Approve(ctx context.Context, args []string) error
	Publish(ctx context.Context) error
	Settings(ctx context.Context) error
	Stats() error
}

const (
	helpPublic = "Available commands: publications [year], recent [n], members, news [id], lab, areas, refresh, route, stats, login, register, whoami, token, exit"
	helpMember = "Available commands: publications [year], recent [n], members, news [id], lab, areas, refresh, route, stats, whoami, token, pending, approve <id>, publish, settings, logout, exit"
)

// runREPL reads one command per line and dispatches it to a. The loop
// exits on EOF or when the user types "exit" or "quit". Command errors are
// reported and the loop carries on.
//
// Commands prompt for more input on the same reader, so the loop must not
// read ahead of the current line.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("lab %s> ", statusFn()))
		line, rerr := reader.ReadString('\n')
		if rerr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpPublic)
			}
		case "login":
			err = a.Login(ctx)
		case "register":
			err = a.Register(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "token":
			err = a.Token(ctx)
		case "publications", "pubs":
			err = a.Publications(ctx, args)
		case "recent":
			err = a.Recent(ctx, args)
		case "members":
			err = a.Members(ctx)
		case "news":
			err = a.News(ctx, args)
		case "lab", "contact":
			err = a.Lab(ctx)
		case "areas":
			err = a.Areas(ctx)
		case "refresh":
			err = a.Refresh()
		case "pending":
			err = a.Pending(ctx)
		case "approve":
			err = a.Approve(ctx, args)
		case "publish":
			err = a.Publish(ctx)
		case "settings":
			err = a.Settings(ctx)
		case "route":
			printlnFn(a.Route())
		case "stats":
			err = a.Stats()
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(DescribeError(err))
		}
	}
}

// DescribeError turns a command error into the line shown to the user:
// the server's detail when there is one, a hint for guards and validation.
func DescribeError(err error) string {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return errStyle.Render(iconCross + " Please log in first")
	case errors.Is(err, session.ErrForbidden):
		return errStyle.Render(iconCross + " Admin access required")
	case errors.As(err, &verr):
		lines := []string{errStyle.Render(iconCross + " Please fix the following:")}
		for _, f := range verr.Fields {
			lines = append(lines, "  "+f.Field+": "+f.Message)
		}
		return strings.Join(lines, "\n")
	case errors.Is(err, client.ErrUnavailable):
		return errStyle.Render(iconCross + " Server unavailable")
	default:
		return errStyle.Render(iconCross + " " + client.MessageOf(err))
	}
}

// Run starts the REPL on the App's input and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	a.println(headingStyle.Render("Lab site") + " " + subtleStyle.Render("(type 'help' for commands)"))
	if _, err := a.session.Load(ctx); err != nil {
		a.log.Warn(ctx, "session check failed", "error", err)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
