// Package commands implements the labcli command tree.
package commands

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/gilab/labsite/internal/buildinfo"
	"github.com/gilab/labsite/internal/client/cli"
	"github.com/gilab/labsite/internal/client/config"
	"github.com/gilab/labsite/internal/logging"
	"github.com/spf13/cobra"
)

// CLI is the labcli command line. The App behind the commands is built in
// the root's PersistentPreRunE, once flags are known.
type CLI struct {
	rootCmd *cobra.Command
	args    []string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	app *cli.App
}

// New creates the command tree reading from in and writing to out and errOut.
func New(in io.Reader, out, errOut io.Writer) *CLI {
	c := &CLI{
		in:     in,
		out:    out,
		errOut: errOut,
		args:   os.Args[1:],
	}

	rootCmd := &cobra.Command{
		Use:               "labcli",
		Short:             "Browse and administer the lab site from a terminal",
		Long:              "labcli reads the lab's publications, members and news. Without a command it starts an interactive shell.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           buildinfo.Version,
		Args:              cobra.NoArgs,
		PersistentPreRunE: c.setup,
		RunE:              c.runREPL,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	addConfigFlags(rootCmd)

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.contentCommands()...)
	rootCmd.AddCommand(c.accountCommands()...)
	rootCmd.AddCommand(c.adminCommands()...)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell (the default)",
		Args:  cobra.NoArgs,
		RunE:  c.runREPL,
	})
	rootCmd.AddCommand(c.newVersionCmd())
	return c
}

// addConfigFlags declares the flags config.Load understands so that cobra
// accepts them and lists them in help. The values themselves are read by
// config.Load from the raw argument list.
func addConfigFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "path to a JSON or YAML config file")
	pf.String("env-file", "", "path to a dotenv file (default ./.env)")
	pf.String("api-url", "", "base URL of the lab API")
	pf.String("source", "", "content source: api or static")
	pf.String("static-url", "", "base URL of the static export")
	pf.String("static-dir", "", "directory holding the static export")
	pf.String("s3-bucket", "", "bucket holding the static export")
	pf.String("s3-prefix", "", "key prefix inside the bucket")
	pf.String("s3-region", "", "bucket region")
	pf.String("s3-endpoint", "", "custom S3 endpoint")
	pf.String("db", "", "path of the local SQLite file")
	pf.Bool("no-persist", false, "keep the token in memory only")
	pf.Int("retry", 0, "retries for failed queries")
	pf.Duration("retry-base", 0, "first retry delay")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("log-level", "", "debug, info, warn or error")
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.args)
	if err != nil {
		return err
	}
	log := logging.New(c.errOut, cfg.LogLevel)
	app, err := cli.NewApp(cmd.Context(), cfg, log, c.in, c.out)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *CLI) runREPL(cmd *cobra.Command, _ []string) error {
	c.app.Run(cmd.Context())
	return nil
}

// Execute runs the command named by args and releases the App afterwards.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetArgs(c.args)
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()
	if c.app != nil {
		if cerr := c.app.Close(); err == nil {
			err = cerr
		}
		c.app = nil
	}
	return err
}

// SetArgs replaces the arguments, which otherwise come from os.Args.
func (c *CLI) SetArgs(args []string) {
	c.args = args
}

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage), errors.Is(err, config.ErrInvalid):
		return 2
	default:
		return 1
	}
}
