package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s1natex/tasks-comments-api/internal/tasks"
)

func newTaskCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks on a running server",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := root.client().ListTasks(cmd.Context())
				if err != nil {
					return err
				}
				if root.isJSON() {
					return printJSON(cmd.OutOrStdout(), list)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				}
				for _, t := range list {
					printTask(cmd.OutOrStdout(), t)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <title>",
			Short: "Create a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := root.client().CreateTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return root.outputTask(cmd.OutOrStdout(), t)
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "task")
				if err != nil {
					return err
				}
				t, err := root.client().GetTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				return root.outputTask(cmd.OutOrStdout(), t)
			},
		},
		newTaskUpdateCmd(root),
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a task (its comments are kept)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "task")
				if err != nil {
					return err
				}
				if err := root.client().DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
				return nil
			},
		},
	)
	return cmd
}

func newTaskUpdateCmd(root *rootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Long:  "Update a task. An empty --title leaves the stored title unchanged.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			var titlePtr *string
			if cmd.Flags().Changed("title") {
				titlePtr = &title
			}
			t, err := root.client().UpdateTask(cmd.Context(), id, titlePtr)
			if err != nil {
				return err
			}
			return root.outputTask(cmd.OutOrStdout(), t)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	return cmd
}

func (o *rootOptions) outputTask(w io.Writer, t tasks.Task) error {
	if o.isJSON() {
		return printJSON(w, t)
	}
	printTask(w, t)
	return nil
}

func printTask(w io.Writer, t tasks.Task) {
	fmt.Fprintf(w, "#%d  %s\n", t.ID, t.Title)
}

func parseID(s, kind string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, s)
	}
	return id, nil
}
