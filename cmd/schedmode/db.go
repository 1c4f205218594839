package main

import (
	"fmt"
	"os"
	"os/signal"

	"genre-schedule/internal/analysis"
	"genre-schedule/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newDBCmd() *cobra.Command {
	var (
		table  string
		host   string
		dbName string
		user   string
	)

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Analyze a Postgres table instead of a CSV file",
		Long: `Reads every row of a table in the public schema and prints the most
common schedule per genre. Connection settings come from the "database"
section of the config file; flags override individual fields.

Text array columns (text[]) are accepted as genre lists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := a.cfg.Database
			if host != "" {
				dbCfg.Host = host
			}
			if dbName != "" {
				dbCfg.DBName = dbName
			}
			if user != "" {
				dbCfg.User = user
			}
			return a.runDB(cmd, dbCfg, table, &service.PostgresDataSource{})
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table to analyze")
	cmd.Flags().StringVar(&host, "host", "", "database host")
	cmd.Flags().StringVar(&dbName, "dbname", "", "database name")
	cmd.Flags().StringVar(&user, "user", "", "database user")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func (a *app) runDB(cmd *cobra.Command, dbCfg service.DataSourceConfig, table string, ds service.DataSource) error {
	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := ds.Connect(ctx, dbCfg); err != nil {
		return fmt.Errorf("connect to %s/%s: %w", dbCfg.Host, dbCfg.DBName, err)
	}
	defer ds.Close()

	rows, err := ds.FetchRows(ctx, table)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", table, err)
	}
	a.logger.Debug("fetched table", zap.String("table", table), zap.Int("rows", len(rows)))

	report, err := analysis.NewCSVService(a.logger).AnalyzeData(table, rows)
	if err != nil {
		return reportFailure(out, table, err)
	}
	printReport(out, report)
	return nil
}
