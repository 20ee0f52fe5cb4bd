package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func digestCommand() *cobra.Command {
	var (
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Select today's rows and deliver the digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date, time.Now())
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun {
				_, doc, err := a.notifier(nil).Build(cmd.Context(), day)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.HTML)
				return err
			}

			channels, err := a.channels()
			if err != nil {
				return err
			}

			done := a.observe("digest")
			defer done()

			if _, err := a.notifier(channels).SendDigest(cmd.Context(), day); err != nil {
				a.log.Error("digest failed", zap.Error(err))
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "digest date, YYYY-MM-DD (default today, UTC)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the html digest to stdout instead of sending it")

	return cmd
}

// Пустая строка - сегодня по UTC
func parseDay(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.UTC(), nil
	}

	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", value, err)
	}

	return day, nil
}
