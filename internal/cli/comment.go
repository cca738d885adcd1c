package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s1natex/tasks-comments-api/internal/tasks"
)

func newCommentCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage comments on a running server",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <task-id>",
			Short: "List comments for a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				taskID, err := parseID(args[0], "task")
				if err != nil {
					return err
				}
				list, err := root.client().ListComments(cmd.Context(), taskID)
				if err != nil {
					return err
				}
				if root.isJSON() {
					return printJSON(cmd.OutOrStdout(), list)
				}
				if len(list) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No comments on task #%d.\n", taskID)
				}
				for _, c := range list {
					printComment(cmd.OutOrStdout(), c)
				}
				return nil
			},
		},
		newCommentAddCmd(root),
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a comment",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "comment")
				if err != nil {
					return err
				}
				c, err := root.client().GetComment(cmd.Context(), id)
				if err != nil {
					return err
				}
				return root.outputComment(cmd.OutOrStdout(), c)
			},
		},
		newCommentUpdateCmd(root),
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a comment",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "comment")
				if err != nil {
					return err
				}
				if err := root.client().DeleteComment(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment #%d\n", id)
				return nil
			},
		},
	)
	return cmd
}

func newCommentAddCmd(root *rootOptions) *cobra.Command {
	var author, content string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			c, err := root.client().AddComment(cmd.Context(), taskID, author, content)
			if err != nil {
				return err
			}
			return root.outputComment(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "comment author")
	cmd.Flags().StringVar(&content, "content", "", "comment text")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newCommentUpdateCmd(root *rootOptions) *cobra.Command {
	var author, content string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a comment",
		Long:  "Update a comment. Flags left out or set to an empty string keep the stored value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "comment")
			if err != nil {
				return err
			}
			var authorPtr, contentPtr *string
			if cmd.Flags().Changed("author") {
				authorPtr = &author
			}
			if cmd.Flags().Changed("content") {
				contentPtr = &content
			}
			c, err := root.client().UpdateComment(cmd.Context(), id, authorPtr, contentPtr)
			if err != nil {
				return err
			}
			return root.outputComment(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "new author")
	cmd.Flags().StringVar(&content, "content", "", "new text")
	return cmd
}

func (o *rootOptions) outputComment(w io.Writer, c tasks.Comment) error {
	if o.isJSON() {
		return printJSON(w, c)
	}
	printComment(w, c)
	return nil
}

func printComment(w io.Writer, c tasks.Comment) {
	fmt.Fprintf(w, "#%d  task #%d  %s: %s\n", c.ID, c.TaskID, c.Author, c.Content)
}
