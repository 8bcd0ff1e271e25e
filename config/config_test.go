package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/atlas/pipeline"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Pipelines.Enabled)
	assert.Empty(t, cfg.Pipelines.Disabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.True(t, cfg.Pipelines.Enabled)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.True(t, cfg.Pipelines.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	content := "pipelines:\n  enabled: true\n  disabled:\n    - text.before_text\n    - image.after_image\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.True(t, cfg.Pipelines.Enabled)
	assert.Equal(t, []string{"text.before_text", "image.after_image"}, cfg.Pipelines.Disabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipelines:\n  enabled: true\n"), 0o600))
	t.Setenv("ATLAS_PIPELINES_ENABLED", "false")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.False(t, cfg.Pipelines.Enabled)
}

func TestApply_GlobalDisable(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.Define("text.before_text")
	reg.Define("text.after_text")

	cfg := &Config{Pipelines: PipelinesConfig{Enabled: false}}
	require.NoError(t, cfg.Apply(reg))

	assert.False(t, reg.Active("text.before_text"))
	assert.False(t, reg.Active("text.after_text"))
}

func TestApply_SelectiveDisable(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.Define("text.before_text")
	reg.Define("text.after_text")

	cfg := &Config{Pipelines: PipelinesConfig{Enabled: true, Disabled: []string{"text.after_text"}}}
	require.NoError(t, cfg.Apply(reg))

	assert.True(t, reg.Active("text.before_text"))
	assert.False(t, reg.Active("text.after_text"))
}

func TestApply_UnknownDisabledName(t *testing.T) {
	reg := pipeline.NewRegistry()

	cfg := &Config{Pipelines: PipelinesConfig{Enabled: true, Disabled: []string{"missing"}}}
	err := cfg.Apply(reg)

	var notDefined *pipeline.NotDefinedError
	require.ErrorAs(t, err, &notDefined)
}
