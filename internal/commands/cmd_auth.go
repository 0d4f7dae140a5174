package commands

import (
	"context"
	"fmt"

	"github.com/example/taskboard/pkg/client"
	"github.com/urfave/cli/v3"
)

type AuthCmd struct {
	flags *Flags

	// flags
	email    string
	password string
}

// NewAuthCmd creates the login, logout and whoami commands
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds the auth commands to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Log in and store the session token",
			UsageText: "taskctl login --email EMAIL --password PASSWORD",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "email",
					Aliases:     []string{"e"},
					Usage:       "account email",
					Sources:     cli.EnvVars("TASKCTL_EMAIL"),
					Required:    true,
					Destination: &cmd.email,
				},
				&cli.StringFlag{
					Name:        "password",
					Aliases:     []string{"p"},
					Usage:       "account password",
					Sources:     cli.EnvVars("TASKCTL_PASSWORD"),
					Required:    true,
					Destination: &cmd.password,
				},
			},
			Action: cmd.login,
		},
		&cli.Command{
			Name:   "logout",
			Usage:  "Forget the stored session",
			Action: cmd.logout,
		},
		&cli.Command{
			Name:   "whoami",
			Usage:  "Show the logged-in user",
			Action: cmd.whoami,
		},
	)
	return app
}

func (cmd *AuthCmd) login(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.Client.Login(ctx, cmd.email, cmd.password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if user == nil {
		_, _ = fmt.Fprintln(c.Root().Writer, "Logged in")
		return nil
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (cmd *AuthCmd) logout(_ context.Context, c *cli.Command) error {
	if err := cmd.flags.Client.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "Logged out")
	return nil
}

func (cmd *AuthCmd) whoami(_ context.Context, c *cli.Command) error {
	user := cmd.flags.Client.Session().User()
	if user == nil {
		return fmt.Errorf("%w: run 'taskctl login' first", client.ErrNotLoggedIn)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%d\t%s\t%s\n", user.ID, user.Email, user.Name)
	return nil
}
