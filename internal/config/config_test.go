package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, "pipeline", cfg.Workflow.Mode)
	assert.Equal(t, []string{"executor"}, cfg.Workflow.InterruptBefore)
	assert.Equal(t, 50, cfg.Workflow.MaxSteps)
	assert.Equal(t, ".troupe/skills", cfg.Skills.Dir)
	assert.Equal(t, ".troupe/checkpoints.db", cfg.Checkpoints.Path)
	assert.Equal(t, "127.0.0.1:8787", cfg.Gateway.Address())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, TroupeDir), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("llm:\n  provider: ollama\n  model: qwen2.5\nworkflow:\n  mode: orchestrated\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	assert.Equal(t, "orchestrated", cfg.Workflow.Mode)
	// Untouched sections keep their defaults.
	assert.Equal(t, ".troupe/checkpoints.db", cfg.Checkpoints.Path)
	assert.Equal(t, 50, cfg.Workflow.MaxSteps)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, TroupeDir), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("llm:\n  provider: telepathy\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telepathy")
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, TroupeDir), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("workflow:\n  mode: freestyle\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, TroupeDir), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte(":\n  - ["), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestInitWritesTemplateOnce(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, Path(dir), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: none")

	// A second init leaves an edited file alone.
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	_, err = Init(dir)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestAPIKeyReadsEnv(t *testing.T) {
	t.Setenv("TROUPE_TEST_KEY", "sk-123")
	cfg := LLMConfig{APIKeyEnv: "TROUPE_TEST_KEY"}
	assert.Equal(t, "sk-123", cfg.APIKey())
	assert.Empty(t, LLMConfig{}.APIKey())
}
