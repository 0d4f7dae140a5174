package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/example/taskboard/pkg/client"
	"github.com/urfave/cli/v3"
)

type LsCmd struct {
	flags *Flags

	// flags
	query      client.Query
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "taskctl ls [--status S] [--priority P] [--q TEXT] [--sort FIELD] [--order asc|desc] [--page N] [--limit N] [--json]",
		Description: `Lists one page of tasks. Filters combine; the search matches title and
description case-insensitively. The server defaults to newest first, 10 per page.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "pending, in-progress or completed", Destination: &cmd.query.Status},
			&cli.StringFlag{Name: "priority", Usage: "low, medium or high", Destination: &cmd.query.Priority},
			&cli.StringFlag{Name: "q", Usage: "search text", Destination: &cmd.query.Q},
			&cli.StringFlag{Name: "sort", Usage: "field to sort by (createdAt, dueDate, title, ...)", Destination: &cmd.query.Sort},
			&cli.StringFlag{Name: "order", Usage: "asc or desc", Destination: &cmd.query.Order},
			&cli.IntFlag{Name: "page", Usage: "page number, from 1", Destination: &cmd.query.Page},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "tasks per page, at most 100", Destination: &cmd.query.Limit},
			&cli.BoolFlag{Name: "json", Usage: "output the raw page as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	page, err := cmd.flags.Client.ListTasks(ctx, cmd.query)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	if len(page.Data) == 0 {
		_, _ = fmt.Fprintln(out, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range page.Data {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, t.DueDate.Format(time.DateOnly))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nPage %d of %d (%d tasks)\n", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	return nil
}
