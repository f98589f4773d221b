package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "transit-routing-service", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "Yakutsk", cfg.Region.HubCityName)
	assert.Equal(t, 3, cfg.Search.KAlternatives)
}

func TestLoaderLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: custom-service
  environment: staging
http:
  port: 9000
log:
  level: debug
region:
  hub_city_name: Moscow
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	require.NoError(t, err)

	assert.Equal(t, "custom-service", cfg.App.Name)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "Moscow", cfg.Region.HubCityName)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("app:\n  name: file-service\nhttp:\n  port: 9001\n"), 0644))

	t.Setenv("TRANSIT_APP_NAME", "env-override")

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	require.NoError(t, err)

	assert.Equal(t, "env-override", cfg.App.Name)
	assert.Equal(t, 9001, cfg.HTTP.Port)
}

func TestLoaderWithEnvPrefix(t *testing.T) {
	t.Setenv("CUSTOM_APP_NAME", "custom-prefix-service")

	cfg, err := NewLoader(WithEnvPrefix("CUSTOM_")).Load()
	require.NoError(t, err)
	assert.Equal(t, "custom-prefix-service", cfg.App.Name)
}

func TestMustLoadSuccess(t *testing.T) {
	assert.NotPanics(t, func() {
		cfg := MustLoad()
		assert.NotNil(t, cfg)
	})
}

func TestLoaderConfigEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("app:\n  name: config-env-var-service\n"), 0644))

	t.Setenv("CONFIG_PATH", configPath)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "config-env-var-service", cfg.App.Name)
}
