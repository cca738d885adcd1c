package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s1natex/tasks-comments-api/internal/db"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var dbURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the task and comment tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root, dbURL)
			if err != nil {
				return err
			}

			d, err := db.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", d.Dialect)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "db", "", "database url (overrides config)")
	return cmd
}
