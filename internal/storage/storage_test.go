package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/config"
	"github.com/wonny/fundalyze/pkg/database"
	"github.com/wonny/fundalyze/pkg/logger"
)

// Column bookkeeping is the one thing that breaks silently; keep it
// checked even without a database.
func TestRecordColumnAlignment(t *testing.T) {
	names := recordColumnNames()
	record := &contracts.FinancialRecord{}

	assert.Equal(t, len(names), len(numericFields(record)), "columns vs insert values")
	assert.Equal(t, len(names), len(numericDests(record)), "columns vs scan destinations")
}

func testStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("short mode: skipping database integration test")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{}
	cfg.Database.URL = url
	cfg.Database.MaxConns = 4
	cfg.Database.MinConns = 1
	cfg.Database.MaxConnLifetime = time.Hour
	cfg.Database.MaxConnIdleTime = 30 * time.Minute

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	store := NewStore(db, logger.NewNop())
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func TestRecordRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	record := &contracts.FinancialRecord{
		Entity:     "STORE-TEST",
		PeriodEnd:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		PeriodType: contracts.PeriodAnnual,

		TotalRevenue: contracts.Float(1000),
		NetIncome:    contracts.Float(180),
		TotalAssets:  contracts.Float(2000),
		// Inventory deliberately left nil to check NULL round-trip.
	}
	require.NoError(t, store.Records.Save(ctx, record))

	got, err := store.Records.Get(ctx, record.Entity, record.PeriodEnd, record.PeriodType)
	require.NoError(t, err)

	assert.Equal(t, record.Entity, got.Entity)
	require.NotNil(t, got.TotalRevenue)
	assert.Equal(t, 1000.0, *got.TotalRevenue)
	assert.Nil(t, got.Inventory, "NULL must come back as nil, not zero")

	// Upsert replaces the old row.
	record.TotalRevenue = contracts.Float(1100)
	require.NoError(t, store.Records.Save(ctx, record))

	got, err = store.Records.Get(ctx, record.Entity, record.PeriodEnd, record.PeriodType)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, *got.TotalRevenue)
}

func TestRecordNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.Records.Get(context.Background(), "NO-SUCH-ENTITY",
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), contracts.PeriodAnnual)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByPeriod(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	period := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	for _, entity := range []string{"LIST-B", "LIST-A", "LIST-C"} {
		record := &contracts.FinancialRecord{
			Entity:       entity,
			PeriodEnd:    period,
			PeriodType:   contracts.PeriodQuarterly,
			TotalRevenue: contracts.Float(500),
		}
		require.NoError(t, store.Records.Save(ctx, record))
	}

	records, err := store.Records.ListByPeriod(ctx, period, contracts.PeriodQuarterly)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(records), 3)

	for i := 1; i < len(records); i++ {
		assert.LessOrEqual(t, records[i-1].Entity, records[i].Entity, "entity order")
	}
}

func TestReportRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	report := &contracts.Report{
		Entity:     "REPORT-TEST",
		PeriodEnd:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		PeriodType: contracts.PeriodAnnual,
		Scores: []contracts.ScoreResult{
			{Ratio: "current_ratio", Category: contracts.CategoryLiquidity, Score: 4, Tier: "good", TableID: "default_v1"},
		},
		Composite: contracts.CompositeScore{
			CategoryScores: map[contracts.Category]float64{contracts.CategoryLiquidity: 4.0},
			Overall:        75.0,
			Weights:        map[contracts.Category]float64{contracts.CategoryLiquidity: 1.0},
		},
		ConfigHash:  "testhash",
		GeneratedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Reports.Save(ctx, report))

	got, err := store.Reports.GetLatest(ctx, report.Entity)
	require.NoError(t, err)
	assert.Equal(t, report.Entity, got.Entity)
	assert.Equal(t, 75.0, got.Composite.Overall)

	score, found := got.Score("current_ratio")
	require.True(t, found)
	assert.Equal(t, 4, score.Score)
}

func TestReportNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.Reports.GetLatest(context.Background(), "NO-SUCH-ENTITY")
	assert.ErrorIs(t, err, ErrNotFound)
}
