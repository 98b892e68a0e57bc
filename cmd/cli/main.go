package main

import (
	"context"
	"fmt"
	"os"

	"epmstat/adapters/excel"
	"epmstat/adapters/postgres"
	reportwriter "epmstat/adapters/report"
	"epmstat/app"
	"epmstat/domain/epm"
	"epmstat/internal"
	"epmstat/internal/config"
	"epmstat/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for local runs; environment wins when both are set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "epmstat",
		Short: "Paired-stimulation EPM analysis pipeline",
		Long: `Runs the fixed elevated-plus-maze analysis protocol: paired tests per
parameter and group with normality-driven test selection, Holm correction
within each group, effect sizes, and supplementary report tables.`,
	}

	rootCmd.AddCommand(newRunCmd(), newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var input, outDir string
	var alpha, epsilon float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis and write report artifacts",
		Long: `Loads the measurement workbook, runs the analysis, and writes the
supplementary tables (S1-S5), the combined workbook, and the run summary.

Example: epmstat run --input EPM.xlsx --out ./epm_results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, input, outDir, alpha, epsilon)
			if err != nil {
				return err
			}

			rep, err := runAnalysis(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			writer := reportwriter.NewWriter(cfg.Data.OutDir)
			if err := writer.WriteReport(cmd.Context(), rep); err != nil {
				return err
			}

			if cfg.Database.Enabled {
				if err := persistReport(cmd.Context(), cfg, rep); err != nil {
					return err
				}
			}

			fmt.Printf("run %s complete: artifacts in %s\n", rep.RunID.String(), cfg.Data.OutDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Measurement workbook (xlsx or csv); overrides EPM_INPUT_FILE")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory; overrides EPM_OUT_DIR")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level for normality screen and Holm correction")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "Absolute tolerance for the subject-level unchanged label")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var input string
	var alpha, epsilon float64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Run the analysis and print the summary without writing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, input, "", alpha, epsilon)
			if err != nil {
				return err
			}

			rep, err := runAnalysis(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Print(reportwriter.SummaryMarkdown(rep))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Measurement workbook (xlsx or csv); overrides EPM_INPUT_FILE")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level for normality screen and Holm correction")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "Absolute tolerance for the subject-level unchanged label")

	return cmd
}

func loadConfig(cmd *cobra.Command, input, outDir string, alpha, epsilon float64) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if input != "" {
		cfg.Data.InputFile = input
	}
	if outDir != "" {
		cfg.Data.OutDir = outDir
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Analysis.Alpha = alpha
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Analysis.ResponseEpsilon = epsilon
	}

	if cfg.Data.InputFile == "" {
		return nil, errors.ConfigInvalid("input file required (--input or EPM_INPUT_FILE)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalysis(ctx context.Context, cfg *config.Config) (*epm.AnalysisReport, error) {
	table, err := excel.NewDataReader(cfg.Data.InputFile).ReadTable()
	if err != nil {
		return nil, err
	}

	service := app.NewAnalysisService(cfg.Analysis.Alpha, cfg.Analysis.ResponseEpsilon, internal.DefaultLogger)
	return service.Run(ctx, app.AnalysisRequest{Table: table})
}

func persistReport(ctx context.Context, cfg *config.Config, rep *epm.AnalysisReport) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	defer db.Close()

	repo := postgres.NewResultRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.SaveReport(ctx, rep)
}
