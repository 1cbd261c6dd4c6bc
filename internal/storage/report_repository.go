package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/database"
	"github.com/wonny/fundalyze/pkg/logger"
)

// ReportRepository stores finished analysis reports as JSONB documents.
// The config hash is part of the key, so reruns under changed thresholds
// never overwrite earlier results.
type ReportRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewReportRepository(db *database.DB, log *logger.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: log}
}

func (r *ReportRepository) Save(ctx context.Context, report *contracts.Report) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", report.Entity, err)
	}

	query := `
		INSERT INTO analysis_reports (entity, period_end, period_type, config_hash, report, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entity, period_end, period_type, config_hash) DO UPDATE SET
			report = EXCLUDED.report,
			generated_at = EXCLUDED.generated_at`

	_, err = r.db.Pool.Exec(ctx, query,
		report.Entity, report.PeriodEnd, string(report.PeriodType),
		report.ConfigHash, doc, report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save report %s/%s: %w", report.Entity, report.PeriodEnd.Format("2006-01-02"), err)
	}
	return nil
}

// GetLatest returns the most recently generated report for an entity,
// or ErrNotFound.
func (r *ReportRepository) GetLatest(ctx context.Context, entity string) (*contracts.Report, error) {
	query := `
		SELECT report
		FROM analysis_reports
		WHERE entity = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	var doc []byte
	err := r.db.Pool.QueryRow(ctx, query, entity).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest report %s: %w", entity, err)
	}

	var report contracts.Report
	if err := json.Unmarshal(doc, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", entity, err)
	}
	return &report, nil
}
