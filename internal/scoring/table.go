package scoring

import (
	"fmt"
	"math"

	"github.com/wonny/fundalyze/internal/contracts"
)

// TableError reports a malformed threshold table. Configuration bugs are
// surfaced as errors immediately; they are never folded into scores.
type TableError struct {
	Ratio   string
	Message string
}

func (e TableError) Error() string {
	if e.Ratio == "" {
		return fmt.Sprintf("threshold table: %s", e.Message)
	}
	return fmt.Sprintf("threshold table %s: %s", e.Ratio, e.Message)
}

// InvalidWeightsError reports category weights that do not sum to 1.0
type InvalidWeightsError struct {
	Sum float64
}

func (e InvalidWeightsError) Error() string {
	return fmt.Sprintf("category weights must sum to 1.0, got %.6f", e.Sum)
}

// weightEpsilon is the tolerance for the weight sum check
const weightEpsilon = 1e-6

// Band is one scoring band: values at or above LowerBound (and below the
// next band's bound) map to Score/Tier.
type Band struct {
	LowerBound float64 `json:"lower_bound"`
	Score      int     `json:"score"`
	Tier       string  `json:"tier"`
}

// Scale bounds the discrete scores a table may assign
type Scale struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Table maps ratio names to ascending scoring bands. Tables are caller
// configuration: the built-in default is a starting point, not an oracle,
// and real deployments override it per industry.
type Table struct {
	ID    string            `json:"id"`
	Scale Scale             `json:"scale"`
	Bands map[string][]Band `json:"bands"`
}

// Validate checks table structure: every ratio needs a non-empty band list,
// strictly ascending bounds, an open first band (-Inf) so every value lands
// somewhere, and scores inside the scale.
func (t *Table) Validate() error {
	if t.Scale.Min >= t.Scale.Max {
		return TableError{Message: fmt.Sprintf("scale min %d must be below max %d", t.Scale.Min, t.Scale.Max)}
	}
	if len(t.Bands) == 0 {
		return TableError{Message: "no ratio bands defined"}
	}

	for ratio, bands := range t.Bands {
		if len(bands) == 0 {
			return TableError{Ratio: ratio, Message: "empty band list"}
		}
		if !math.IsInf(bands[0].LowerBound, -1) {
			return TableError{Ratio: ratio, Message: "first band must have lower bound -inf"}
		}
		for i, b := range bands {
			if i > 0 && bands[i-1].LowerBound >= b.LowerBound {
				return TableError{Ratio: ratio, Message: fmt.Sprintf("bands not strictly ascending at index %d", i)}
			}
			if b.Score < t.Scale.Min || b.Score > t.Scale.Max {
				return TableError{Ratio: ratio, Message: fmt.Sprintf("score %d outside scale [%d, %d]", b.Score, t.Scale.Min, t.Scale.Max)}
			}
			if b.Tier == "" {
				return TableError{Ratio: ratio, Message: fmt.Sprintf("band %d has no tier label", i)}
			}
		}
	}

	return nil
}

// ValidateWeights checks that weights sum to 1.0 within tolerance
func ValidateWeights(weights map[contracts.Category]float64) error {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return InvalidWeightsError{Sum: sum}
	}
	return nil
}

func neg() float64 { return math.Inf(-1) }

// higherIsBetter builds a five-band ascending table for ratios where bigger
// values score higher. Bounds are the thresholds for fair/good/good/excellent.
func higherIsBetter(fair, good, better, excellent float64) []Band {
	return []Band{
		{LowerBound: neg(), Score: 1, Tier: "poor"},
		{LowerBound: fair, Score: 2, Tier: "fair"},
		{LowerBound: good, Score: 3, Tier: "good"},
		{LowerBound: better, Score: 4, Tier: "good"},
		{LowerBound: excellent, Score: 5, Tier: "excellent"},
	}
}

// lowerIsBetter is the mirror image for ratios where smaller values score
// higher (leverage, valuation multiples).
func lowerIsBetter(excellent, good, fair, poor float64) []Band {
	return []Band{
		{LowerBound: neg(), Score: 5, Tier: "excellent"},
		{LowerBound: excellent, Score: 4, Tier: "good"},
		{LowerBound: good, Score: 3, Tier: "good"},
		{LowerBound: fair, Score: 2, Tier: "fair"},
		{LowerBound: poor, Score: 1, Tier: "poor"},
	}
}

// DefaultTable returns a general-purpose starting table on a 1-5 scale.
// The bounds are deliberately broad sector-agnostic conventions; callers
// with industry context should load their own table instead.
func DefaultTable() Table {
	return Table{
		ID:    "default_v1",
		Scale: Scale{Min: 1, Max: 5},
		Bands: map[string][]Band{
			// Liquidity
			"current_ratio": higherIsBetter(1.0, 1.2, 1.5, 2.0),
			"quick_ratio":   higherIsBetter(0.6, 0.8, 1.0, 1.5),
			"cash_ratio":    higherIsBetter(0.2, 0.35, 0.5, 1.0),

			// Profitability
			"gross_margin":     higherIsBetter(0.20, 0.30, 0.40, 0.55),
			"operating_margin": higherIsBetter(0.05, 0.10, 0.15, 0.25),
			"net_margin":       higherIsBetter(0.03, 0.07, 0.12, 0.20),
			"roa":              higherIsBetter(0.02, 0.05, 0.08, 0.12),
			"roe":              higherIsBetter(0.05, 0.10, 0.15, 0.20),

			// Solvency (lower leverage scores higher)
			"debt_to_equity":    lowerIsBetter(0.5, 1.0, 1.5, 2.0),
			"debt_to_assets":    lowerIsBetter(0.25, 0.40, 0.55, 0.70),
			"interest_coverage": higherIsBetter(1.5, 3.0, 5.0, 10.0),

			// Efficiency
			"asset_turnover":       higherIsBetter(0.3, 0.5, 0.8, 1.2),
			"inventory_turnover":   higherIsBetter(2.0, 4.0, 6.0, 10.0),
			"receivables_turnover": higherIsBetter(4.0, 6.0, 9.0, 12.0),

			// Valuation (cheaper multiples score higher)
			"price_to_earnings": lowerIsBetter(10.0, 15.0, 22.0, 30.0),
			"price_to_book":     lowerIsBetter(1.0, 2.0, 3.5, 5.0),
			"ev_to_ebitda":      lowerIsBetter(6.0, 9.0, 12.0, 16.0),

			// Cash flow
			"fcf":               higherIsBetter(0.0, 1.0, 10.0, 100.0),
			"fcf_yield":         higherIsBetter(0.01, 0.03, 0.05, 0.08),
			"ocf_to_net_income": higherIsBetter(0.6, 0.8, 1.0, 1.2),

			// Per share
			"eps":                  higherIsBetter(0.0, 0.5, 2.0, 5.0),
			"book_value_per_share": higherIsBetter(0.0, 1.0, 5.0, 20.0),
		},
	}
}
