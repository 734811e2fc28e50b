package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/adapters/aihw"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/adapters/excel"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/adapters/postgres"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/app"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/transform"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/config"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ports"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ui"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "aihw-etl",
		Short: "ETL for AIHW Admitted Patient Care (Reasons for care) tables",
	}
	rootCmd.AddCommand(newRunCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var sourceURL string
	var filePath string
	var year int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the latest workbook, transform it and replace both tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := internal.NewDefaultLogger()

			if sourceURL == "" {
				sourceURL = cfg.Source.URL
			}
			if filePath == "" {
				filePath = cfg.Source.FilePath
			}
			if year == 0 {
				year = cfg.Source.Year
			}

			db, err := sqlx.Connect("postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			fetcher := buildFetcher(sourceURL, filePath, year)
			locator := transform.DefaultLocatorConfig()
			locator.MaxScanRows = cfg.Transform.HeaderScanRows
			locator.MinTokens = cfg.Transform.HeaderMinTokens

			pipeline := app.NewPipeline(
				fetcher,
				excel.NewReader(),
				postgres.NewAdmissionsRepository(db),
				locator,
				log,
			)

			report, err := pipeline.Run(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("ETL completed: run %s, %d staging rows, %d clean rows, %d sheets skipped\n",
				report.RunID, report.StagingRows, report.CleanRows, len(report.SheetsSkipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURL, "url", "", "Direct workbook URL (skips AIHW page discovery)")
	cmd.Flags().StringVar(&filePath, "file", "", "Local workbook path instead of a download")
	cmd.Flags().IntVar(&year, "year", 0, "Source vintage year override")

	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over the persisted tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := internal.NewDefaultLogger()

			db, err := sqlx.Connect("postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if port == "" {
				port = cfg.Server.Port
			}
			server := ui.NewServer(postgres.NewAdmissionsRepository(db), cfg.Server.GinMode, log)
			return server.Run(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from PORT env)")

	return cmd
}

// buildFetcher picks the local file source when a path is given, otherwise
// the AIHW download path
func buildFetcher(sourceURL, filePath string, year int) ports.SourceFetcher {
	if filePath != "" {
		return &aihw.FileFetcher{Path: filePath, Year: year}
	}
	return aihw.NewFetcher(sourceURL, year)
}
