package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProvidersYAML = `
providers:
  simulated:
    priority: 1
    rate_limit_per_hour: 1000
    requires_api_key: false
    base_url: "https://example.invalid"
    circuit:
      failure_threshold: 5
global:
  user_agent: "marketanalysis/1.0"
`

func writeProvidersFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testProvidersYAML), 0o644))
	return path
}

func TestWire_BuildsEveryComponentWithoutPersistence(t *testing.T) {
	cfg := Config{ProvidersPath: writeProvidersFixture(t)}

	a, err := Wire(cfg, zerolog.Nop())

	require.NoError(t, err)
	assert.NotNil(t, a.Market)
	assert.NotNil(t, a.Orchestrator)
	assert.NotNil(t, a.Workflow)
	assert.NotNil(t, a.Engine)
	assert.NotNil(t, a.Optimizer)
	assert.NotNil(t, a.Telemetry)
	assert.NotNil(t, a.Router)
	assert.NoError(t, a.Close())
}

func TestWire_MissingProvidersFileIsError(t *testing.T) {
	_, err := Wire(Config{ProvidersPath: filepath.Join(t.TempDir(), "missing.yaml")}, zerolog.Nop())
	assert.Error(t, err)
}
