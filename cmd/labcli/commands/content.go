package commands

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (c *CLI) contentCommands() []*cobra.Command {
	pubs := &cobra.Command{
		Use:     "publications",
		Aliases: []string{"pubs"},
		Short:   "List publications grouped by year",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, _ := cmd.Flags().GetInt("year")
			var args []string
			if year != 0 {
				args = []string{strconv.Itoa(year)}
			}
			return c.app.Publications(cmd.Context(), args)
		},
	}
	pubs.Flags().IntP("year", "y", 0, "only show this year")

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the newest publications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("count")
			return c.app.Recent(cmd.Context(), []string{strconv.Itoa(n)})
		},
	}
	recent.Flags().IntP("count", "n", 5, "how many to show")

	return []*cobra.Command{
		pubs,
		recent,
		{
			Use:   "members",
			Short: "List lab members by group",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Members(cmd.Context())
			},
		},
		{
			Use:   "news [id]",
			Short: "List news, or show one item",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.News(cmd.Context(), args)
			},
		},
		{
			Use:     "lab",
			Aliases: []string{"contact"},
			Short:   "Show lab contact and access information",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Lab(cmd.Context())
			},
		},
		{
			Use:   "areas",
			Short: "List active research areas",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Areas(cmd.Context())
			},
		},
	}
}

func (c *CLI) accountCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "login",
			Short: "Sign in and keep the token for later commands",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Login(cmd.Context())
			},
		},
		{
			Use:   "register",
			Short: "Request an account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Register(cmd.Context())
			},
		},
		{
			Use:   "logout",
			Short: "Forget the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Logout(cmd.Context())
			},
		},
		{
			Use:   "whoami",
			Short: "Show the signed-in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.WhoAmI(cmd.Context())
			},
		},
		{
			Use:   "token",
			Short: "Show what the stored token claims",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Token(cmd.Context())
			},
		},
	}
}

func (c *CLI) adminCommands() []*cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}
	admin.AddCommand(
		&cobra.Command{
			Use:   "pending",
			Short: "List accounts awaiting approval",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Pending(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "approve <user-id>",
			Short: "Approve an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.Approve(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "publish",
			Short: "Create a publication interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Publish(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "settings",
			Short: "Edit the lab information interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Settings(cmd.Context())
			},
		},
	)
	return []*cobra.Command{admin}
}
