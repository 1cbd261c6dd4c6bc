package contracts

// Category groups ratios by the aspect of the business they measure
type Category string

const (
	CategoryLiquidity     Category = "liquidity"
	CategoryProfitability Category = "profitability"
	CategorySolvency      Category = "solvency"
	CategoryEfficiency    Category = "efficiency"
	CategoryValuation     Category = "valuation"
	CategoryCashFlow      Category = "cash_flow"
	CategoryPerShare      Category = "per_share"
)

// Categories returns all ratio categories in a fixed, stable order
func Categories() []Category {
	return []Category{
		CategoryLiquidity,
		CategoryProfitability,
		CategorySolvency,
		CategoryEfficiency,
		CategoryValuation,
		CategoryCashFlow,
		CategoryPerShare,
	}
}

// RatioStatus tags the outcome of a single ratio computation. Anything other
// than ok is an expected data condition, not an error: the value is nil and
// Field names the input that triggered the status.
type RatioStatus string

const (
	StatusOK              RatioStatus = "ok"
	StatusMissingInput    RatioStatus = "missing_input"
	StatusDivisionByZero  RatioStatus = "division_by_zero"
	StatusInvalidNegative RatioStatus = "invalid_negative"
)

// RatioValue is the result of computing a single ratio
type RatioValue struct {
	Name     string      `json:"name"`
	Category Category    `json:"category"`
	Value    *float64    `json:"value,omitempty"`
	Status   RatioStatus `json:"status"`
	// Field names the input behind a non-ok status: the first missing input
	// in declared order, or the denominator that resolved to zero.
	Field string `json:"field,omitempty"`
}

// OK reports whether the ratio was computed successfully
func (rv RatioValue) OK() bool {
	return rv.Status == StatusOK
}

// RatioMap is the full output of a compute pass, grouped by category
type RatioMap map[Category]map[string]RatioValue

// Count returns the total number of ratio results, failures included
func (m RatioMap) Count() int {
	n := 0
	for _, ratios := range m {
		n += len(ratios)
	}
	return n
}

// CountOK returns the number of successfully computed ratios
func (m RatioMap) CountOK() int {
	n := 0
	for _, ratios := range m {
		for _, rv := range ratios {
			if rv.OK() {
				n++
			}
		}
	}
	return n
}

// Get returns the result for a single ratio
func (m RatioMap) Get(category Category, name string) (RatioValue, bool) {
	ratios, exists := m[category]
	if !exists {
		return RatioValue{}, false
	}
	rv, exists := ratios[name]
	return rv, exists
}
