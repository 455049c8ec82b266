// Command labcli is a terminal client for the lab site.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gilab/labsite/cmd/labcli/commands"
	"github.com/gilab/labsite/internal/client/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := commands.New(os.Stdin, os.Stdout, os.Stderr).Execute(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.DescribeError(err))
	}
	return commands.ExitCode(err)
}
