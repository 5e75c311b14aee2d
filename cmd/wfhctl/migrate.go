package main

import (
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/db/migrations"
	"github.com/cmlabs-hris/wfh-backend-go/internal/config"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				cfg, err := config.FromEnv()
				if err != nil {
					return err
				}
				dsn = cfg.DatabaseURL()
			}

			db, err := database.NewPostgreSQLDB(cmd.Context(), dsn, database.PoolOptions{MaxConns: 2, MinConns: 1})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			applied, err := database.Migrate(cmd.Context(), db, migrations.Files)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (defaults to DB_* environment)")
	return cmd
}
