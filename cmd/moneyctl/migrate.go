package main

import (
	"fmt"

	"money-mate/pkg/postgres"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}
	cmd.Flags().Bool("list", false, "List embedded migrations without applying them")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		migrations, err := postgres.Migrations()
		if err != nil {
			return err
		}
		for _, m := range migrations {
			fmt.Fprintf(cmd.OutOrStdout(), "%04d  %s\n", m.Version, m.Name)
		}
		return nil
	}

	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	db, err := postgres.NewPool(cmd.Context(), &cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := postgres.Migrate(cmd.Context(), db, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
	return nil
}
