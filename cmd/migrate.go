package main

import (
	"github.com/spf13/cobra"

	"github.com/kovalyov-valentin/news-digest/internal/storage"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return storage.Migrate(a.db.DB, a.log.Named("migrate"))
		},
	}
}
