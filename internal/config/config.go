// Package config provides the configuration schema, loader, and provider
// registry for the narrative context engine.
package config

import "time"

// Config is the root configuration structure for the engine. It is
// typically loaded from a YAML file via [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Tuning    TuningConfig    `yaml:"tuning"`
	Recall    RecallConfig    `yaml:"recall"`
	Memory    MemoryConfig    `yaml:"memory"`
	Prompts   PromptsConfig   `yaml:"prompts"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// LogLevel controls verbosity: "debug", "info", "warn", or "error".
	LogLevel string `yaml:"log_level"`
}

// ProvidersConfig declares which LLM and embedding backends back each role
// in the pipeline. The main model drives story/dialogue generation, the
// extraction model mines NPC mentions and decomposes recall queries, and
// the recall-agent model runs the ReAct tool loop — these may all point at
// different, differently-sized models.
type ProvidersConfig struct {
	Main        ProviderEntry `yaml:"main"`
	Extraction  ProviderEntry `yaml:"extraction"`
	RecallAgent ProviderEntry `yaml:"recall_agent"`
	Embeddings  ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all provider
// roles.
type ProviderEntry struct {
	// Backend selects the registered provider implementation, e.g.
	// "openai" or an any-llm-go backend name ("anthropic", "ollama", ...).
	Backend string `yaml:"backend"`

	// APIKey is the authentication key for the provider's API. Empty
	// means fall back to the provider's conventional environment
	// variable.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the backend.
	Model string `yaml:"model"`

	// FallbackBackend, if set, names a secondary backend registered on
	// the same Router, tried when Backend's circuit breaker opens.
	FallbackBackend string `yaml:"fallback_backend"`
	FallbackModel   string `yaml:"fallback_model"`
}

// TuningConfig holds the numeric knobs governing NPC tracking and context
// assembly.
type TuningConfig struct {
	// InactiveWindow is the number of scenes since an NPC's last
	// appearance during which its importance score is not decayed; decay
	// then runs over a further InactiveWindow scenes. NPC tiering does not
	// read it.
	InactiveWindow int `yaml:"inactive_window"`

	// RecencyDecayFloor is the minimum multiplier applied to an NPC's
	// base importance score once it has aged past InactiveWindow.
	RecencyDecayFloor float64 `yaml:"recency_decay_floor"`

	// ImportanceThreshold is the importance score (0-100, after recency
	// decay) an NPC must reach, at least once, to trigger a one-time
	// full-profile extraction.
	ImportanceThreshold float64 `yaml:"importance_threshold"`

	// TierCap bounds how many NPCs are included in each of the active
	// and inactive tiers when building context.
	TierCap int `yaml:"tier_cap"`

	// ExtractionConfidenceThreshold discards extracted NPC mentions and
	// character moments below this confidence.
	ExtractionConfidenceThreshold float64 `yaml:"extraction_confidence_threshold"`

	// DefaultMaxContextTokens is the total token budget for an assembled
	// prompt when the caller does not override it.
	DefaultMaxContextTokens int `yaml:"default_max_context_tokens"`

	// RecentTurnsBudgetRatio is the fraction of the context budget
	// reserved for the most recent transcript turns.
	RecentTurnsBudgetRatio float64 `yaml:"recent_turns_budget_ratio"`

	// CharsPerToken is the fallback character-to-token ratio used when
	// no provider tokenizer is available.
	CharsPerToken int `yaml:"chars_per_token"`

	// SemanticSearchTurnThreshold is the minimum turn count in the
	// current scene before semantic recall is invoked at all.
	SemanticSearchTurnThreshold int `yaml:"semantic_search_turn_threshold"`

	// SemanticSearchBudgetChars bounds the recalled-context message.
	SemanticSearchBudgetChars int `yaml:"semantic_search_budget_chars"`

	// SummaryTurnThreshold is the minimum turn count before a rolling
	// summary is generated at all.
	SummaryTurnThreshold int `yaml:"summary_turn_threshold"`

	// SummaryInterval is how many turns must pass between summary
	// regenerations.
	SummaryInterval int `yaml:"summary_interval"`

	// SummaryBatchSize is how many transcript turns are folded into the
	// summary per regeneration.
	SummaryBatchSize int `yaml:"summary_batch_size"`

	// SummaryBudgetChars bounds the rolling-summary message.
	SummaryBudgetChars int `yaml:"summary_budget_chars"`
}

// RecallConfig tunes the semantic recall subsystem, both the deterministic
// dense+sparse pipeline and the ReAct recall agent.
type RecallConfig struct {
	// RRFK is the rank-fusion constant (score = sum 1/(RRFK+rank)).
	RRFK int `yaml:"rrf_k"`

	// QualityGateThreshold discards recall results entirely when the
	// best candidate's rerank score (or, without a reranker, its raw dense
	// similarity) falls below this value. RRF scores are not compared.
	QualityGateThreshold float64 `yaml:"quality_gate_threshold"`

	// NeighborExpansionRadius is how many adjacent scenes are pulled in
	// around each matched scene.
	NeighborExpansionRadius int `yaml:"neighbor_expansion_radius"`

	// UseCrossEncoderRerank enables the optional rerank pass.
	UseCrossEncoderRerank bool `yaml:"use_cross_encoder_rerank"`

	// AgentMaxTurns bounds the ReAct loop's Thought/Action iterations.
	AgentMaxTurns int `yaml:"agent_max_turns"`

	// AgentTimeout bounds the ReAct loop's total wall-clock budget.
	AgentTimeout time.Duration `yaml:"agent_timeout"`

	// AgentObservationMaxChars truncates tool output fed back to the
	// agent model.
	AgentObservationMaxChars int `yaml:"agent_observation_max_chars"`

	// AgentTraceDir, if non-empty, enables writing JSON trace files for
	// every agent run to this directory.
	AgentTraceDir string `yaml:"agent_trace_dir"`
}

// MemoryConfig holds settings for the persistence layer backing the branch
// store, NPC tracking snapshots, and the semantic index.
type MemoryConfig struct {
	// PostgresDSN is the connection string for the pgvector-backed store.
	// Empty means use the in-memory store (suitable for tests and CLI
	// demos, not for multi-process deployments).
	PostgresDSN string `yaml:"postgres_dsn"`

	// EmbeddingDimensions must match Providers.Embeddings' model.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
}

// PromptsConfig points at the hot-reloadable prompt template catalog.
type PromptsConfig struct {
	// CatalogPath is the YAML file holding named prompt templates (system
	// prompts, extraction prompts, recall-agent tool descriptions). The
	// engine re-reads it on each poll interval so template edits take
	// effect without a restart.
	CatalogPath string `yaml:"catalog_path"`
}
