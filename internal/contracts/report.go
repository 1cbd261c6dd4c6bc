package contracts

import "time"

// ScoreResult is the result of scoring one computed ratio against a
// threshold table. Ratios that could not be computed produce no ScoreResult
// at all; they are omitted from scoring rather than scored worst-case.
type ScoreResult struct {
	Ratio    string   `json:"ratio"`
	Category Category `json:"category"`
	Score    int      `json:"score"`
	Tier     string   `json:"tier"`
	// TableID identifies the threshold table the score came from, for audit
	TableID string `json:"table_id"`
}

// CompositeScore aggregates per-category averages into one weighted score.
// Categories with no scored ratios are excluded and the remaining weights
// renormalized, so missing data never drags the composite toward zero.
type CompositeScore struct {
	CategoryScores map[Category]float64 `json:"category_scores"`
	Overall        float64              `json:"overall"` // 0-100
	// Weights actually applied, after renormalization over categories
	// that had at least one scored ratio
	Weights map[Category]float64 `json:"weights"`
}

// Warning is a non-fatal data plausibility finding from a sanity check
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Report is the full analysis output for one record: every ratio result
// (failures included), the scores, the composite, and enough provenance to
// reproduce the run. It is a plain structure; rendering is the caller's
// concern.
type Report struct {
	Entity     string     `json:"entity"`
	PeriodEnd  time.Time  `json:"period_end"`
	PeriodType PeriodType `json:"period_type"`

	Ratios    RatioMap       `json:"ratios"`
	Scores    []ScoreResult  `json:"scores"`
	Composite CompositeScore `json:"composite"`
	Warnings  []Warning      `json:"warnings,omitempty"`

	// Coverage is the scored fraction of defined ratios per category.
	// It surfaces data completeness without contaminating the score.
	Coverage map[Category]float64 `json:"coverage"`

	// ConfigHash is the SHA-256 of the scoring configuration used
	ConfigHash  string    `json:"config_hash,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Score returns the score result for a ratio, if it was scored
func (r *Report) Score(ratio string) (ScoreResult, bool) {
	for _, s := range r.Scores {
		if s.Ratio == ratio {
			return s, true
		}
	}
	return ScoreResult{}, false
}
