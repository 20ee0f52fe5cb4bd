package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ingestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch all feeds once and store relevant articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.fetcher()
			if err != nil {
				return err
			}

			done := a.observe("ingest")
			defer done()

			if _, err := f.Fetch(cmd.Context()); err != nil {
				a.log.Error("ingestion failed", zap.Error(err))
				return err
			}

			return nil
		},
	}
}
