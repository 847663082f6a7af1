package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhaven/matchgrid/internal/infrastructure/database/postgres"
)

const defaultMigrationsPath = "file://migrations"

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations", "",
		"migrations source URL (defaults to config, then "+defaultMigrationsPath+")")

	resolve := func() (dbURL, path string, err error) {
		cfg, err := opts.loadConfig()
		if err != nil {
			return "", "", err
		}
		path = migrationsPath
		if path == "" {
			path = cfg.Database.MigrationPath
		}
		if path == "" {
			path = defaultMigrationsPath
		}
		return postgres.DSN(cfg.Database), path, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dbURL, path, err := resolve()
				if err != nil {
					return err
				}
				if err := postgres.RunMigrations(dbURL, path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		func() *cobra.Command {
			var steps int
			down := &cobra.Command{
				Use:   "down",
				Short: "Roll back the most recent migrations",
				RunE: func(cmd *cobra.Command, _ []string) error {
					dbURL, path, err := resolve()
					if err != nil {
						return err
					}
					if err := postgres.RollbackMigrations(dbURL, path, steps); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
					return nil
				},
			}
			down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
			return down
		}(),
		&cobra.Command{
			Use:   "version",
			Short: "Show the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dbURL, path, err := resolve()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(dbURL, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%v\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}
