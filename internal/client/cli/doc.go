// Package cli is the terminal front-end of the lab site.
//
// An App plays the part of the browser pages: it reads public content
// through the query cache, signs visitors in and out, and runs the admin
// flows (approving accounts, publishing papers, editing lab settings). It
// also acts as the session's Navigator, so the current route follows the
// same transitions the web pages make.
//
// The REPL is started via App.Run, which blocks until the user exits. The
// one-shot subcommands of labcli call the same App methods.
package cli
