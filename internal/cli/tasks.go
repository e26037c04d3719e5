package cli

import (
	"errors"
	"strings"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/model"
	"bonsai-cli/internal/tasklist"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksUndoneCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))

	return cmd
}

// taskTable renders tasks for --format plain.
type taskTable []model.Task

func (t taskTable) TabHeader() []string {
	return []string{"ID", "DONE", "PRI", "TITLE"}
}

func (t taskTable) TabRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, task := range t {
		done := " "
		if task.IsCompleted {
			done = "x"
		}
		rows = append(rows, []string{task.ID, done, model.PriorityLabel(task.Priority), task.Title})
	}
	return rows
}

func newTasksListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (server order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := c.ListTasks(cmdContext(cmd), status)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Format == "plain" {
				return writeOut(cmd, app, taskTable(tasks))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"tasks": tasks},
				"meta": map[string]any{"count": len(tasks)},
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter: completed|pending (forwarded to the server verbatim)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var description string
	var priority int
	var tags string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				// Local rejection: no network call for blank titles.
				return writeErr(cmd, &api.ValidationError{Field: "title", Reason: "must not be blank"})
			}
			c, _, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := c.CreateTask(cmdContext(cmd), api.CreateTaskInput{
				Title:       title,
				Description: description,
				Priority:    priority,
				Tags:        tags,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"task": task},
				"_hints": []string{"bonsai tasks list"},
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1..3 (low/medium/high; server default when omitted)")
	cmd.Flags().StringVar(&tags, "tags", "", "Optional tags")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// The API has no per-task GET; fetch the collection and pick.
			tasks, err := c.ListTasks(cmdContext(cmd), "")
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			for _, t := range tasks {
				if t.ID == id {
					return writeOut(cmd, app, map[string]any{"data": map[string]any{"task": t}})
				}
			}
			return writeErr(cmd, errors.New("task not found: "+id))
		},
	}
}

func newTasksToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task's completion state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmdContext(cmd)
			ctl := tasklist.New(c)
			if err := ctl.Refresh(ctx); err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := ctl.Toggle(ctx, id); err != nil {
				return writeErr(cmd, err)
			}
			t, _ := ctl.Find(id)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"task": t}})
		},
	}
}

func newTasksDoneCmd(app *App) *cobra.Command {
	return newTasksSetCompletedCmd(app, "done", true)
}

func newTasksUndoneCmd(app *App) *cobra.Command {
	return newTasksSetCompletedCmd(app, "undone", false)
}

func newTasksSetCompletedCmd(app *App, use string, completed bool) *cobra.Command {
	short := "Mark a task completed"
	if !completed {
		short = "Mark a task not completed"
	}
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := c.UpdateTask(cmdContext(cmd), strings.TrimSpace(args[0]), map[string]any{
				"is_completed": completed,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"task": task}})
		},
	}
}

func newTasksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := c.DeleteTask(cmdContext(cmd), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": id},
			})
		},
	}
}
