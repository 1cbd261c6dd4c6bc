package scoring

import (
	"sort"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/logger"
)

// Scorer maps computed ratio values onto discrete scores using a threshold
// table. Like the ratio engine it is stateless after construction and safe
// for concurrent use.
type Scorer struct {
	table  Table
	logger *logger.Logger
}

// NewScorer creates a scorer for the given table. The table is validated
// once here; a malformed table is a configuration bug and fails fast.
func NewScorer(table Table, log *logger.Logger) (*Scorer, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{table: table, logger: log}, nil
}

// ScoreRatio scores one computed ratio. It returns nil when the ratio was
// not computed (status != ok) or the table has no bands for it: missing
// data is omitted from scoring, never synthesized into a worst-case score.
func (s *Scorer) ScoreRatio(rv contracts.RatioValue) *contracts.ScoreResult {
	if !rv.OK() {
		return nil
	}

	bands, exists := s.table.Bands[rv.Name]
	if !exists {
		return nil
	}

	// Bands ascend and open at -inf, so the last band at or below the
	// value always exists.
	chosen := bands[0]
	for _, b := range bands[1:] {
		if b.LowerBound <= *rv.Value {
			chosen = b
		} else {
			break
		}
	}

	return &contracts.ScoreResult{
		Ratio:    rv.Name,
		Category: rv.Category,
		Score:    chosen.Score,
		Tier:     chosen.Tier,
		TableID:  s.table.ID,
	}
}

// ScoreAll scores every computable ratio in the map. Output order is
// deterministic: categories in their fixed order, ratio names sorted.
func (s *Scorer) ScoreAll(ratios contracts.RatioMap) []contracts.ScoreResult {
	results := make([]contracts.ScoreResult, 0, ratios.Count())

	for _, category := range contracts.Categories() {
		byName, exists := ratios[category]
		if !exists {
			continue
		}

		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if result := s.ScoreRatio(byName[name]); result != nil {
				results = append(results, *result)
			}
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"table":    s.table.ID,
		"computed": ratios.Count(),
		"scored":   len(results),
	}).Debug("Scored ratios")

	return results
}

// Aggregate combines score results into a composite. Weights are caller
// configuration and must sum to 1.0 within 1e-6. Categories without a
// single scored ratio are dropped and the surviving weights renormalized,
// so "no data" never reads as "score zero".
func (s *Scorer) Aggregate(results []contracts.ScoreResult, weights map[contracts.Category]float64) (contracts.CompositeScore, error) {
	if err := ValidateWeights(weights); err != nil {
		return contracts.CompositeScore{}, err
	}

	sums := make(map[contracts.Category]float64)
	counts := make(map[contracts.Category]int)
	for _, r := range results {
		sums[r.Category] += float64(r.Score)
		counts[r.Category]++
	}

	composite := contracts.CompositeScore{
		CategoryScores: make(map[contracts.Category]float64),
		Weights:        make(map[contracts.Category]float64),
	}

	// Only categories with data participate in the weighted sum
	weightTotal := 0.0
	for category, weight := range weights {
		if counts[category] > 0 {
			weightTotal += weight
		}
	}
	if weightTotal == 0 {
		// Nothing scored at all; an empty composite, not a zero score
		return composite, nil
	}

	scaleSpan := float64(s.table.Scale.Max - s.table.Scale.Min)
	overall := 0.0
	for category, weight := range weights {
		if counts[category] == 0 {
			continue
		}
		avg := sums[category] / float64(counts[category])
		renormalized := weight / weightTotal

		composite.CategoryScores[category] = avg
		composite.Weights[category] = renormalized
		overall += avg * renormalized
	}

	composite.Overall = (overall - float64(s.table.Scale.Min)) / scaleSpan * 100
	return composite, nil
}

// Table returns the threshold table in use, for audit output
func (s *Scorer) Table() Table {
	return s.table
}
