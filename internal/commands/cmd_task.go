package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/taskboard/pkg/client"
	"github.com/urfave/cli/v3"
)

var taskFields = []string{"title", "description", "status", "priority", "due"}

type TaskCmd struct {
	flags *Flags
}

// NewTaskCmd creates the add, update and rm commands
func NewTaskCmd(flags *Flags) *TaskCmd {
	return &TaskCmd{flags: flags}
}

// Register adds the task commands to the application
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "add",
			Usage:     "Create a task",
			UsageText: "taskctl add TITLE [--description D] [--status S] [--priority P] [--due YYYY-MM-DD]",
			Flags:     fieldFlags(),
			Action:    cmd.add,
		},
		&cli.Command{
			Name:      "update",
			Usage:     "Change fields of a task",
			UsageText: "taskctl update ID [--title T] [--description D] [--status S] [--priority P] [--due YYYY-MM-DD]",
			Description: `Only the flags given are sent; every other field keeps its value.`,
			Flags: append(fieldFlags(), &cli.StringFlag{Name: "title", Usage: "new title"}),
			Action: cmd.update,
		},
		&cli.Command{
			Name:      "rm",
			Usage:     "Delete a task",
			UsageText: "taskctl rm ID",
			Action:    cmd.remove,
		},
	)
	return app
}

func fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "task description"},
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending, in-progress or completed"},
		&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium or high"},
		&cli.StringFlag{Name: "due", Usage: "due date, YYYY-MM-DD or RFC 3339"},
	}
}

// input collects the flags the user actually set.
func input(c *cli.Command) client.TaskInput {
	var in client.TaskInput
	for _, name := range taskFields {
		if !c.IsSet(name) {
			continue
		}
		v := c.String(name)
		switch name {
		case "title":
			in.Title = &v
		case "description":
			in.Description = &v
		case "status":
			in.Status = &v
		case "priority":
			in.Priority = &v
		case "due":
			in.DueDate = &v
		}
	}
	return in
}

func (cmd *TaskCmd) add(ctx context.Context, c *cli.Command) error {
	title := c.Args().First()
	if title == "" {
		return errors.New("a title is required")
	}

	in := input(c)
	in.Title = &title

	t, err := cmd.flags.Client.CreateTask(ctx, in)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Created task %d: %s\n", t.ID, t.Title)
	return nil
}

func (cmd *TaskCmd) update(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	in := input(c)
	if in == (client.TaskInput{}) {
		return errors.New("nothing to update; pass at least one field flag")
	}

	t, err := cmd.flags.Client.UpdateTask(ctx, id, in)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Updated task %d: %s [%s, %s]\n", t.ID, t.Title, t.Status, t.Priority)
	return nil
}

func (cmd *TaskCmd) remove(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	if err := cmd.flags.Client.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Deleted task %d\n", id)
	return nil
}

func taskIDArg(c *cli.Command) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, errors.New("a task id is required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
