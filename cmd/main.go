package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Пути к конфигам, если не заданы - config.DefaultFiles
var configFiles []string

func main() {
	root := &cobra.Command{
		Use:           "news-digest",
		Short:         "Collects business news from feeds and sends a daily digest",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringSliceVar(&configFiles, "config", nil, "config files (default ./config.hcl, ./config.local.hcl)")

	root.AddCommand(
		migrateCommand(),
		ingestCommand(),
		digestCommand(),
		serveCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
