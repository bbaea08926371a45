package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  log_level: info
providers:
  main:
    backend: openai
    model: gpt-4o
`

func TestLoadFromReader_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Tuning.InactiveWindow)
	assert.Equal(t, 0.3, cfg.Tuning.RecencyDecayFloor)
	assert.Equal(t, 8000, cfg.Tuning.DefaultMaxContextTokens)
	assert.Equal(t, 60, cfg.Recall.RRFK)
	assert.Equal(t, 0.60, cfg.Recall.QualityGateThreshold)
	assert.Equal(t, 8, cfg.Recall.AgentMaxTurns)
}

func TestLoadFromReader_RequiresMainProvider(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("server:\n  log_level: info\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers.main.backend is required")
}

func TestLoadFromReader_RejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(minimalYAML + "\nbogus_field: true\n"))
	require.Error(t, err)
}

func TestValidate_RangeChecks(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(minimalYAML))
	require.NoError(t, err)

	cfg.Tuning.RecencyDecayFloor = 1.5
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recency_decay_floor")
}
