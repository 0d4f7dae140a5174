package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/example/taskboard/internal/commands"
	"github.com/example/taskboard/pkg/client"
)

var version = "dev"

func main() {
	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskctl",
		Usage:     "Manage tasks on a taskboard server",
		UsageText: "taskctl [global options] command [command options]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "API base URL",
				Sources:     cli.EnvVars("TASKCTL_URL"),
				Value:       client.DefaultBaseURL,
				Destination: &flags.BaseURL,
			},
			&cli.StringFlag{
				Name:        "session",
				Usage:       "path to the session file",
				Sources:     cli.EnvVars("TASKCTL_SESSION"),
				Value:       commands.DefaultSessionPath(),
				Destination: &flags.SessionPath,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "request timeout",
				Sources:     cli.EnvVars("TASKCTL_TIMEOUT"),
				Value:       client.DefaultTimeout,
				Destination: &flags.Timeout,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			session, err := client.LoadSession(flags.SessionPath)
			if err != nil {
				return ctx, fmt.Errorf("load session: %w", err)
			}
			flags.Client = client.New(session,
				client.WithBaseURL(flags.BaseURL),
				client.WithTimeout(flags.Timeout),
			)
			return ctx, nil
		},
	}

	commands.NewAuthCmd(flags).Register(app)
	commands.NewLsCmd(flags).Register(app)
	commands.NewTaskCmd(flags).Register(app)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
