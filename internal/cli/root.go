// Package cli defines the cobra command tree for the tasks API binary.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/s1natex/tasks-comments-api/internal/client"
)

type rootOptions struct {
	configPath string
	serverURL  string
	format     string
}

// NewRootCmd creates the root command with global flags.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tasks-api",
		Short:         "Tasks and comments REST API",
		Long:          "Serve the tasks and comments REST API, manage its schema, or talk to a running server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "API base URL for client commands (default $TASKS_SERVER_URL or http://localhost:8080)")
	root.PersistentFlags().StringVar(&opts.format, "format", "text", "client output format (text|json)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTaskCmd(opts),
		newCommentCmd(opts),
	)
	return root
}

func (o *rootOptions) client() *client.Client {
	url := o.serverURL
	if url == "" {
		url = os.Getenv("TASKS_SERVER_URL")
	}
	if url == "" {
		url = "http://localhost:8080"
	}
	return client.New(url)
}

func (o *rootOptions) isJSON() bool { return o.format == "json" }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
