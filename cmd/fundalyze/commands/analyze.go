package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/internal/storage"
	"github.com/wonny/fundalyze/pkg/config"
	"github.com/wonny/fundalyze/pkg/database"
	"github.com/wonny/fundalyze/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one financial record",
	Long: `Computes every ratio for one record, scores the results against the
threshold table and prints the full report as JSON.

The record comes from a JSON file (--file) or from the database
(--entity with --period).

Examples:
  fundalyze analyze --file statements.json
  fundalyze analyze --entity ACME --period 2025-12-31 --type annual`,
	RunE: runAnalyze,
}

var (
	// Analyze flags
	analyzeFile   string
	analyzeEntity string
	analyzePeriod string
	analyzeType   string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "record JSON file")
	analyzeCmd.Flags().StringVar(&analyzeEntity, "entity", "", "entity identifier (database lookup)")
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "period end, YYYY-MM-DD (database lookup)")
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "annual", "period type (annual|quarterly)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	analyzer, _, err := buildAnalyzer(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	record, err := loadRecord(ctx, cfg, log)
	if err != nil {
		return err
	}

	report, err := analyzer.Analyze(ctx, record)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func loadRecord(ctx context.Context, cfg *config.Config, log *logger.Logger) (*contracts.FinancialRecord, error) {
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return nil, fmt.Errorf("read record file: %w", err)
		}
		var record contracts.FinancialRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("parse record file %s: %w", analyzeFile, err)
		}
		return &record, nil
	}

	if analyzeEntity == "" || analyzePeriod == "" {
		return nil, fmt.Errorf("either --file or both --entity and --period are required")
	}
	periodEnd, err := time.Parse("2006-01-02", analyzePeriod)
	if err != nil {
		return nil, fmt.Errorf("parse --period: %w", err)
	}
	periodType := contracts.PeriodType(analyzeType)
	if periodType != contracts.PeriodAnnual && periodType != contracts.PeriodQuarterly {
		return nil, fmt.Errorf("--type must be annual or quarterly, got %q", analyzeType)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	store := storage.NewStore(db, log)
	return store.Records.Get(ctx, analyzeEntity, periodEnd, periodType)
}
