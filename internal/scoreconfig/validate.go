package scoreconfig

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/internal/ratios"
)

// ValidationError reports a single invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scoring config: %s: %s", e.Field, e.Message)
}

const weightTolerance = 1e-6

// Validate checks the configuration for structural errors. It returns the
// first problem found, walking fields in a stable order so failures are
// reproducible.
func Validate(cfg *Config) error {
	if cfg.Meta.TableID == "" {
		return &ValidationError{Field: "meta.table_id", Message: "must not be empty"}
	}
	if cfg.Scale.Min >= cfg.Scale.Max {
		return &ValidationError{
			Field:   "scale",
			Message: fmt.Sprintf("min (%d) must be less than max (%d)", cfg.Scale.Min, cfg.Scale.Max),
		}
	}

	if err := validateWeights(cfg.Weights); err != nil {
		return err
	}
	return validateBands(cfg)
}

func validateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return &ValidationError{Field: "weights", Message: "must not be empty"}
	}

	known := make(map[string]bool, len(contracts.Categories()))
	for _, c := range contracts.Categories() {
		known[string(c)] = true
	}

	var sum float64
	for _, name := range sortedKeys(weights) {
		if !known[name] {
			return &ValidationError{
				Field:   "weights." + name,
				Message: "unknown category",
			}
		}
		w := weights[name]
		if w < 0 {
			return &ValidationError{
				Field:   "weights." + name,
				Message: fmt.Sprintf("must not be negative, got %g", w),
			}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return &ValidationError{
			Field:   "weights",
			Message: fmt.Sprintf("must sum to 1.0, got %g", sum),
		}
	}
	return nil
}

func validateBands(cfg *Config) error {
	if len(cfg.Ratios) == 0 {
		return &ValidationError{Field: "ratios", Message: "must not be empty"}
	}

	for _, name := range sortedKeys(cfg.Ratios) {
		if !ratios.IsKnown(name) {
			return &ValidationError{
				Field:   "ratios." + name,
				Message: "unknown ratio",
			}
		}
		bands := cfg.Ratios[name].Bands
		if len(bands) == 0 {
			return &ValidationError{
				Field:   "ratios." + name,
				Message: "must define at least one band",
			}
		}
		if !math.IsInf(bands[0].Min, -1) {
			return &ValidationError{
				Field:   fmt.Sprintf("ratios.%s.bands[0].min", name),
				Message: "first band must be open (-.inf)",
			}
		}
		for i, b := range bands {
			if i > 0 && b.Min <= bands[i-1].Min {
				return &ValidationError{
					Field:   fmt.Sprintf("ratios.%s.bands[%d].min", name, i),
					Message: "bounds must be strictly ascending",
				}
			}
			if b.Score < cfg.Scale.Min || b.Score > cfg.Scale.Max {
				return &ValidationError{
					Field:   fmt.Sprintf("ratios.%s.bands[%d].score", name, i),
					Message: fmt.Sprintf("%d outside scale [%d, %d]", b.Score, cfg.Scale.Min, cfg.Scale.Max),
				}
			}
			if b.Tier == "" {
				return &ValidationError{
					Field:   fmt.Sprintf("ratios.%s.bands[%d].tier", name, i),
					Message: "must not be empty",
				}
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
