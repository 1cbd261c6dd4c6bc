package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/config"
	"github.com/wonny/fundalyze/pkg/logger"
	"github.com/wonny/fundalyze/pkg/redis"
)

func batchRecords(n int) []*contracts.FinancialRecord {
	records := make([]*contracts.FinancialRecord, n)
	for i := range records {
		r := testRecord()
		r.Entity = fmt.Sprintf("ENT-%03d", i)
		records[i] = r
	}
	return records
}

func TestBatchRunAllRecords(t *testing.T) {
	runner := NewBatchRunner(testAnalyzer(t), 4, logger.NewNop())

	records := batchRecords(25)
	results, err := runner.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(records) {
		t.Fatalf("got %d results, want %d", len(results), len(records))
	}

	// Results stay in input order regardless of worker scheduling.
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("record %d failed: %v", i, res.Err)
			continue
		}
		want := fmt.Sprintf("ENT-%03d", i)
		if res.Entity != want || res.Report.Entity != want {
			t.Errorf("result %d holds entity %s, want %s", i, res.Entity, want)
		}
	}
}

func TestBatchSingleWorkerFallback(t *testing.T) {
	runner := NewBatchRunner(testAnalyzer(t), 0, logger.NewNop())
	if runner.workers != 1 {
		t.Errorf("workers = %d, want 1", runner.workers)
	}

	results, err := runner.Run(context.Background(), batchRecords(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestBatchEmptyInput(t *testing.T) {
	runner := NewBatchRunner(testAnalyzer(t), 4, logger.NewNop())
	results, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty input", len(results))
	}
}

func TestBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewBatchRunner(testAnalyzer(t), 2, logger.NewNop())
	if _, err := runner.Run(ctx, batchRecords(10)); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestBatchRateLimited(t *testing.T) {
	runner := NewBatchRunner(testAnalyzer(t), 4, logger.NewNop(), WithRateLimit(100))
	if runner.limiter == nil {
		t.Fatal("limiter not installed")
	}

	start := time.Now()
	results, err := runner.Run(context.Background(), batchRecords(5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	// 5 jobs at 100/s with burst 1 need at least ~40ms.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("batch finished in %v, limiter not applied", elapsed)
	}
}

func TestBatchDisabledCachePassthrough(t *testing.T) {
	client, err := redis.New(&config.Config{})
	if err != nil {
		t.Fatalf("redis.New: %v", err)
	}
	cache := redis.NewCache(client, "fundalyze")

	runner := NewBatchRunner(testAnalyzer(t), 2, logger.NewNop(), WithCache(cache, time.Hour))
	results, err := runner.Run(context.Background(), batchRecords(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, res := range results {
		if res.Err != nil || res.Report == nil {
			t.Errorf("record %d: err=%v report=%v", i, res.Err, res.Report)
		}
	}
}

func TestBatchRateLimitZeroDisables(t *testing.T) {
	runner := NewBatchRunner(testAnalyzer(t), 4, logger.NewNop(), WithRateLimit(0))
	if runner.limiter != nil {
		t.Error("zero rate should leave the limiter off")
	}
}
