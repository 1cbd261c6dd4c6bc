package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/internal/ratios"
	"github.com/wonny/fundalyze/internal/scoreconfig"
	"github.com/wonny/fundalyze/internal/scoring"
	"github.com/wonny/fundalyze/pkg/logger"
)

// Analyzer runs the full pipeline for one record: sanity checks, ratio
// computation, threshold scoring, composite aggregation. It is safe for
// concurrent use; all state is read-only after construction.
type Analyzer struct {
	engine     *ratios.Engine
	scorer     *scoring.Scorer
	weights    map[contracts.Category]float64
	configHash string
	logger     *logger.Logger
}

// NewAnalyzer builds an Analyzer from a validated scoring configuration
func NewAnalyzer(cfg *scoreconfig.Config, log *logger.Logger) (*Analyzer, error) {
	scorer, err := scoring.NewScorer(cfg.ToTable(), log)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	hash, err := scoreconfig.Hash(cfg)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		engine:     ratios.NewEngine(log),
		scorer:     scorer,
		weights:    cfg.CategoryWeights(),
		configHash: hash,
		logger:     log,
	}, nil
}

// NewDefaultAnalyzer builds an Analyzer on the built-in table with equal
// category weights. Used where no configuration file is in play.
func NewDefaultAnalyzer(log *logger.Logger) (*Analyzer, error) {
	scorer, err := scoring.NewScorer(scoring.DefaultTable(), log)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	categories := contracts.Categories()
	weights := make(map[contracts.Category]float64, len(categories))
	for _, c := range categories {
		weights[c] = 1.0 / float64(len(categories))
	}
	return &Analyzer{
		engine:  ratios.NewEngine(log),
		scorer:  scorer,
		weights: weights,
		logger:  log,
	}, nil
}

// ConfigHash returns the hash of the scoring configuration in use, empty
// for the built-in default table.
func (a *Analyzer) ConfigHash() string {
	return a.configHash
}

// Analyze produces a full report for one record. It never fails on data
// problems; those surface as warnings and non-ok ratio statuses. The error
// path is reserved for programming mistakes such as invalid weights.
func (a *Analyzer) Analyze(ctx context.Context, record *contracts.FinancialRecord) (*contracts.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	warnings := ratios.SanityCheck(record)

	ratioMap, err := a.engine.ComputeAll(record)
	if err != nil {
		return nil, err
	}

	scores := a.scorer.ScoreAll(ratioMap)
	composite, err := a.scorer.Aggregate(scores, a.weights)
	if err != nil {
		return nil, err
	}

	report := &contracts.Report{
		Entity:      record.Entity,
		PeriodEnd:   record.PeriodEnd,
		PeriodType:  record.PeriodType,
		Ratios:      ratioMap,
		Scores:      scores,
		Composite:   composite,
		Warnings:    warnings,
		Coverage:    coverage(scores),
		ConfigHash:  a.configHash,
		GeneratedAt: time.Now().UTC(),
	}

	a.logger.WithFields(map[string]interface{}{
		"entity":    record.Entity,
		"period":    record.PeriodEnd.Format("2006-01-02"),
		"scored":    len(scores),
		"computed":  ratioMap.CountOK(),
		"warnings":  len(warnings),
		"composite": composite.Overall,
	}).Debug("analysis complete")

	return report, nil
}

// coverage is the scored fraction of defined ratios per category. Every
// category appears, zero included, so consumers can tell "no data" from
// "not reported".
func coverage(scores []contracts.ScoreResult) map[contracts.Category]float64 {
	scored := make(map[contracts.Category]int)
	for _, s := range scores {
		scored[s.Category]++
	}

	defined := ratios.NamesByCategory()
	cov := make(map[contracts.Category]float64, len(defined))
	for category, names := range defined {
		if len(names) == 0 {
			continue
		}
		cov[category] = float64(scored[category]) / float64(len(names))
	}
	return cov
}
