package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"lendit/internal/service"
	"lendit/internal/store"

	"github.com/spf13/cobra"
)

func openStore(cmd *cobra.Command) (*store.Store, error) {
	url, _ := cmd.Flags().GetString("database-url")

	db, err := store.NewStore(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, constraints and indexes if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func reportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List available reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range service.ReportNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <name>",
		Short: "Run a report and print its rows as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(service.ReportNames(), args[0]) {
				return fmt.Errorf("%w: %s", service.ErrUnknownReport, args[0])
			}

			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := service.NewReportService(db, time.Now).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
}
