package ratios

import (
	"fmt"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/logger"
)

// UnknownRatioError reports a ratio name that is not in the formula table.
// This is a caller bug, never a data condition.
type UnknownRatioError struct {
	Name string
}

func (e UnknownRatioError) Error() string {
	return fmt.Sprintf("unknown ratio: %s", e.Name)
}

// UnknownCategoryError reports a category filter that is not defined
type UnknownCategoryError struct {
	Category contracts.Category
}

func (e UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown ratio category: %s", e.Category)
}

// Engine computes financial ratios from a FinancialRecord. It is stateless:
// every method is a pure function over its arguments, so one Engine can be
// shared by any number of goroutines.
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new ratio engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// ComputeRatio computes exactly one named ratio. Data problems (missing
// inputs, zero denominators) come back as status tags on the RatioValue;
// the only error is UnknownRatioError for a name outside the formula table.
func (e *Engine) ComputeRatio(name string, record *contracts.FinancialRecord) (contracts.RatioValue, error) {
	f, exists := formulaIndex[name]
	if !exists {
		return contracts.RatioValue{}, UnknownRatioError{Name: name}
	}
	return e.evaluate(f, record), nil
}

// ComputeAll computes the full formula table, optionally filtered to a
// subset of categories, and returns every result including failures. It
// never errors on data; an unknown category filter is a caller bug and
// returns UnknownCategoryError.
func (e *Engine) ComputeAll(record *contracts.FinancialRecord, categories ...contracts.Category) (contracts.RatioMap, error) {
	include, err := categoryFilter(categories)
	if err != nil {
		return nil, err
	}

	result := make(contracts.RatioMap)
	for i := range formulaTable {
		f := &formulaTable[i]
		if !include[f.category] {
			continue
		}
		if result[f.category] == nil {
			result[f.category] = make(map[string]contracts.RatioValue)
		}
		result[f.category][f.name] = e.evaluate(f, record)
	}

	e.logger.WithFields(map[string]interface{}{
		"entity":   record.Entity,
		"period":   record.PeriodEnd.Format("2006-01-02"),
		"computed": result.CountOK(),
		"total":    result.Count(),
	}).Debug("Computed ratios")

	return result, nil
}

// evaluate resolves a formula's inputs and runs it. The first absent input,
// in declared argument order, decides the missing_input field name.
func (e *Engine) evaluate(f *formula, record *contracts.FinancialRecord) contracts.RatioValue {
	rv := contracts.RatioValue{
		Name:     f.name,
		Category: f.category,
	}

	args := make([]float64, len(f.inputs))
	for i, field := range f.inputs {
		v := fieldAccessors[field](record)
		if v == nil {
			rv.Status = contracts.StatusMissingInput
			rv.Field = field
			return rv
		}
		args[i] = *v
	}

	value, flt := f.compute(args)
	if flt != nil {
		rv.Status = flt.status
		rv.Field = flt.field
		return rv
	}

	rv.Status = contracts.StatusOK
	rv.Value = &value
	return rv
}

// categoryFilter expands an optional category list into a set. Empty means
// all categories.
func categoryFilter(categories []contracts.Category) (map[contracts.Category]bool, error) {
	known := make(map[contracts.Category]bool, 7)
	for _, c := range contracts.Categories() {
		known[c] = true
	}

	if len(categories) == 0 {
		return known, nil
	}

	include := make(map[contracts.Category]bool, len(categories))
	for _, c := range categories {
		if !known[c] {
			return nil, UnknownCategoryError{Category: c}
		}
		include[c] = true
	}
	return include, nil
}
