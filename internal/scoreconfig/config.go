package scoreconfig

import (
	"encoding/json"
	"math"
	"time"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/internal/scoring"
)

// Config is the full scoring configuration: the discrete scale, category
// weights for the composite, and per-ratio threshold bands. It is plain
// caller-supplied data; the engine ships a default file as a starting
// point, not as an authority.
type Config struct {
	Meta    Meta                  `yaml:"meta" json:"meta"`
	Scale   Scale                 `yaml:"scale" json:"scale"`
	Weights map[string]float64    `yaml:"weights" json:"weights"`
	Ratios  map[string]RatioBands `yaml:"ratios" json:"ratios"`
}

// Meta identifies a threshold table for audit trails
type Meta struct {
	TableID string `yaml:"table_id" json:"table_id"`
	Version string `yaml:"version" json:"version"`
}

// Scale bounds the discrete scores
type Scale struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// RatioBands holds the ordered scoring bands for one ratio
type RatioBands struct {
	Bands []Band `yaml:"bands" json:"bands"`
}

// Band is one scoring band. Min is the inclusive lower bound; write
// `-.inf` in YAML for the open first band.
type Band struct {
	Min   float64 `yaml:"min" json:"min"`
	Score int     `yaml:"score" json:"score"`
	Tier  string  `yaml:"tier" json:"tier"`
}

// ToTable converts the configuration into a scoring.Table
func (c *Config) ToTable() scoring.Table {
	table := scoring.Table{
		ID:    c.Meta.TableID,
		Scale: scoring.Scale{Min: c.Scale.Min, Max: c.Scale.Max},
		Bands: make(map[string][]scoring.Band, len(c.Ratios)),
	}
	for name, rb := range c.Ratios {
		bands := make([]scoring.Band, len(rb.Bands))
		for i, b := range rb.Bands {
			bands[i] = scoring.Band{LowerBound: b.Min, Score: b.Score, Tier: b.Tier}
		}
		table.Bands[name] = bands
	}
	return table
}

// CategoryWeights converts the string-keyed weight map to typed categories
func (c *Config) CategoryWeights() map[contracts.Category]float64 {
	weights := make(map[contracts.Category]float64, len(c.Weights))
	for category, weight := range c.Weights {
		weights[contracts.Category(category)] = weight
	}
	return weights
}

// Snapshot captures the exact configuration a report was produced with
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	TableID    string    `json:"table_id"`
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
}

// MarshalJSON encodes the open -inf bound as a string, since
// encoding/json rejects infinities. Only the canonical hash reads
// this form back.
func (b Band) MarshalJSON() ([]byte, error) {
	type alias struct {
		Min   any    `json:"min"`
		Score int    `json:"score"`
		Tier  string `json:"tier"`
	}
	a := alias{Min: b.Min, Score: b.Score, Tier: b.Tier}
	if math.IsInf(b.Min, -1) {
		a.Min = "-inf"
	}
	return json.Marshal(a)
}
