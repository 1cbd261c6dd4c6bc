package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundalyze/internal/analysis"
	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/internal/storage"
	"github.com/wonny/fundalyze/pkg/database"
	"github.com/wonny/fundalyze/pkg/redis"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every record for one reporting period",
	Long: `Loads all records for a reporting period from the database, analyzes
them concurrently and stores the reports.

Previously analyzed records are served from the report cache when Redis
is enabled; the cache key includes the scoring config hash, so changing
thresholds always recomputes.

Examples:
  fundalyze batch --period 2025-12-31 --type annual
  fundalyze batch --period 2025-06-30 --type quarterly --workers 16`,
	RunE: runBatch,
}

var (
	// Batch flags
	batchPeriod  string
	batchType    string
	batchWorkers int
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchPeriod, "period", "", "period end, YYYY-MM-DD (required)")
	batchCmd.Flags().StringVar(&batchType, "type", "annual", "period type (annual|quarterly)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "worker count (default from BATCH_WORKERS)")
	_ = batchCmd.MarkFlagRequired("period")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	periodEnd, err := time.Parse("2006-01-02", batchPeriod)
	if err != nil {
		return fmt.Errorf("parse --period: %w", err)
	}
	periodType := contracts.PeriodType(batchType)
	if periodType != contracts.PeriodAnnual && periodType != contracts.PeriodQuarterly {
		return fmt.Errorf("--type must be annual or quarterly, got %q", batchType)
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Analysis.BatchWorkers
	}

	analyzer, _, err := buildAnalyzer(cfg, log)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	store := storage.NewStore(db, log)

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, running without report cache")
		redisClient = nil
	}
	opts := []analysis.BatchOption{analysis.WithRateLimit(cfg.Analysis.BatchRateLimit)}
	if redisClient != nil && redisClient.Enabled() {
		defer redisClient.Close()
		opts = append(opts, analysis.WithCache(redis.NewCache(redisClient, "fundalyze"), cfg.Analysis.CacheTTL))
	}

	ctx := cmd.Context()
	records, err := store.Records.ListByPeriod(ctx, periodEnd, periodType)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		log.WithField("period", batchPeriod).Warn("no records for period")
		return nil
	}

	runner := analysis.NewBatchRunner(analyzer, workers, log, opts...)
	results, err := runner.Run(ctx, records)
	if err != nil {
		return err
	}

	var saved, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.WithError(res.Err).WithField("entity", res.Entity).Error("analysis failed")
			continue
		}
		if err := store.Reports.Save(ctx, res.Report); err != nil {
			failed++
			log.WithError(err).WithField("entity", res.Entity).Error("report save failed")
			continue
		}
		saved++
	}

	log.WithFields(map[string]interface{}{
		"period": batchPeriod,
		"saved":  saved,
		"failed": failed,
	}).Info("batch finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(records))
	}
	return nil
}
