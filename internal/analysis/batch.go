package analysis

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/logger"
	"github.com/wonny/fundalyze/pkg/redis"
)

// BatchResult pairs one record's report with any pipeline error
type BatchResult struct {
	Entity string
	Report *contracts.Report
	Err    error
}

// BatchRunner analyzes many records concurrently. A rate limiter, when
// set, throttles job starts; the report cache, when set, skips records
// already analyzed under the same scoring configuration.
type BatchRunner struct {
	analyzer *Analyzer
	workers  int
	limiter  *rate.Limiter
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// BatchOption configures a BatchRunner
type BatchOption func(*BatchRunner)

// WithRateLimit throttles analysis starts to n per second
func WithRateLimit(n float64) BatchOption {
	return func(r *BatchRunner) {
		if n > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithCache reuses cached reports keyed by entity, period and config hash
func WithCache(cache *redis.Cache, ttl time.Duration) BatchOption {
	return func(r *BatchRunner) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// NewBatchRunner builds a runner with the given worker count; counts
// below one fall back to a single worker.
func NewBatchRunner(analyzer *Analyzer, workers int, log *logger.Logger, opts ...BatchOption) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	r := &BatchRunner{
		analyzer: analyzer,
		workers:  workers,
		cacheTTL: redis.TTLDaily,
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyzes all records and returns one result per record, in input
// order. A failed record does not stop the batch; its error rides in the
// result. Run itself fails only when the context is cancelled.
func (r *BatchRunner) Run(ctx context.Context, records []*contracts.FinancialRecord) ([]BatchResult, error) {
	results := make([]BatchResult, len(records))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.runOne(ctx, records[i])
			}
		}()
	}

	for i := range records {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"failed":  failed,
		"workers": r.workers,
	}).Info("batch analysis complete")

	return results, nil
}

func (r *BatchRunner) runOne(ctx context.Context, record *contracts.FinancialRecord) BatchResult {
	result := BatchResult{Entity: record.Entity}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			result.Err = err
			return result
		}
	}

	key := redis.ReportKey(record.Entity, record.PeriodEnd.Format("2006-01-02"), r.analyzer.ConfigHash())
	if r.cache != nil {
		var cached contracts.Report
		hit, err := r.cache.Get(ctx, key, &cached)
		if err != nil {
			r.logger.WithError(err).WithField("entity", record.Entity).Warn("report cache read failed")
		}
		if hit {
			result.Report = &cached
			return result
		}
	}

	report, err := r.analyzer.Analyze(ctx, record)
	if err != nil {
		result.Err = err
		return result
	}
	result.Report = report

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, report, r.cacheTTL); err != nil {
			r.logger.WithError(err).WithField("entity", record.Entity).Warn("report cache write failed")
		}
	}
	return result
}
