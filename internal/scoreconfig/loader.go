package scoreconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a scoring configuration from a YAML file.
// Unknown keys are rejected so typos fail loudly instead of silently
// falling back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scoring config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates raw YAML configuration bytes
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Hash returns the SHA-256 of the canonical JSON form of the
// configuration. Formatting and key order in the source YAML do not
// affect the hash; any semantic change does.
func Hash(cfg *Config) (string, error) {
	canonical, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("canonicalize scoring config: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// NewSnapshot records the configuration alongside its hash so a stored
// report can be traced back to the exact thresholds that produced it.
func NewSnapshot(cfg *Config) (*Snapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring config: %w", err)
	}
	return &Snapshot{
		ConfigHash: hash,
		ConfigYAML: string(raw),
		TableID:    cfg.Meta.TableID,
		Version:    cfg.Meta.Version,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
