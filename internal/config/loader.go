package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued tunables with the defaults named in the
// tunable table: these are the values the engine behaves sanely with even
// when an operator's YAML omits them entirely.
func applyDefaults(cfg *Config) {
	t := &cfg.Tuning
	if t.InactiveWindow == 0 {
		t.InactiveWindow = 10
	}
	if t.RecencyDecayFloor == 0 {
		t.RecencyDecayFloor = 0.3
	}
	if t.ImportanceThreshold == 0 {
		t.ImportanceThreshold = 50
	}
	if t.TierCap == 0 {
		t.TierCap = 10
	}
	if t.ExtractionConfidenceThreshold == 0 {
		t.ExtractionConfidenceThreshold = 0.6
	}
	if t.DefaultMaxContextTokens == 0 {
		t.DefaultMaxContextTokens = 8000
	}
	if t.RecentTurnsBudgetRatio == 0 {
		t.RecentTurnsBudgetRatio = 0.4
	}
	if t.CharsPerToken == 0 {
		t.CharsPerToken = 4
	}
	if t.SemanticSearchTurnThreshold == 0 {
		t.SemanticSearchTurnThreshold = 15
	}
	if t.SemanticSearchBudgetChars == 0 {
		t.SemanticSearchBudgetChars = 1500
	}
	if t.SummaryTurnThreshold == 0 {
		t.SummaryTurnThreshold = 30
	}
	if t.SummaryInterval == 0 {
		t.SummaryInterval = 20
	}
	if t.SummaryBatchSize == 0 {
		t.SummaryBatchSize = 20
	}
	if t.SummaryBudgetChars == 0 {
		t.SummaryBudgetChars = 800
	}

	r := &cfg.Recall
	if r.RRFK == 0 {
		r.RRFK = 60
	}
	if r.QualityGateThreshold == 0 {
		r.QualityGateThreshold = 0.60
	}
	if r.NeighborExpansionRadius == 0 {
		r.NeighborExpansionRadius = 1
	}
	if r.AgentMaxTurns == 0 {
		r.AgentMaxTurns = 8
	}
	if r.AgentTimeout == 0 {
		r.AgentTimeout = 45 * time.Second
	}
	if r.AgentObservationMaxChars == 0 {
		r.AgentObservationMaxChars = 6000
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every validation failure found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Providers.Main.Backend == "" {
		errs = append(errs, errors.New("providers.main.backend is required"))
	}
	if cfg.Providers.Extraction.Backend == "" {
		slog.Warn("providers.extraction.backend is empty; NPC mining and query decomposition will be unavailable")
	}

	if cfg.Providers.Embeddings.Backend != "" && cfg.Memory.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embeddings is configured but memory.embedding_dimensions is not set; defaulting to 1536")
		cfg.Memory.EmbeddingDimensions = 1536
	}

	if cfg.Tuning.RecencyDecayFloor < 0 || cfg.Tuning.RecencyDecayFloor > 1 {
		errs = append(errs, fmt.Errorf("tuning.recency_decay_floor %.2f is out of range [0, 1]", cfg.Tuning.RecencyDecayFloor))
	}
	if cfg.Tuning.RecentTurnsBudgetRatio <= 0 || cfg.Tuning.RecentTurnsBudgetRatio >= 1 {
		errs = append(errs, fmt.Errorf("tuning.recent_turns_budget_ratio %.2f is out of range (0, 1)", cfg.Tuning.RecentTurnsBudgetRatio))
	}
	if cfg.Recall.QualityGateThreshold < 0 || cfg.Recall.QualityGateThreshold > 1 {
		errs = append(errs, fmt.Errorf("recall.quality_gate_threshold %.2f is out of range [0, 1]", cfg.Recall.QualityGateThreshold))
	}
	if cfg.Recall.AgentMaxTurns <= 0 {
		errs = append(errs, errors.New("recall.agent_max_turns must be positive"))
	}

	return errors.Join(errs...)
}
