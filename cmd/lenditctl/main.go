package main

import (
	"fmt"
	"os"

	"lendit/config"
	"lendit/internal/util"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, "lenditctl"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer util.SyncLogger()

	if err := rootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		util.SyncLogger()
		os.Exit(1)
	}
}

func rootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "lenditctl",
		Short:         "Lendit schema and reporting tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("database-url", cfg.Database.URL, "Postgres connection URL")

	root.AddCommand(
		migrateCmd(),
		reportsCmd(),
		reportCmd(),
	)
	return root
}
