package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadGlobalConfig_Defaults(t *testing.T) {
	cfg, err := LoadGlobalConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkflowBaseURL, cfg.WorkflowConfig.BaseURL)
	assert.Equal(t, DefaultRetryMaxAttempts, cfg.RetryConfig.MaxAttempts)
	assert.Equal(t, DefaultPostContentDir, cfg.PostConfig.ContentDir)
	assert.Equal(t, DefaultPostTimezone, cfg.PostConfig.Timezone)
	assert.True(t, cfg.HistoryConfig.Enabled)
}

func TestLoadGlobalConfig_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
workflow_config:
  base_url: "https://api.example.com"
retry_config:
  max_attempts: 5
post_config:
  content_dir: "content/posts/Live"
  filename_charset: "hex"
`)

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.WorkflowConfig.BaseURL)
	assert.Equal(t, 5, cfg.RetryConfig.MaxAttempts)
	assert.Equal(t, "content/posts/Live", cfg.PostConfig.ContentDir)
	assert.Equal(t, "hex", cfg.PostConfig.FilenameCharset)

	// Untouched sections keep their defaults
	assert.Equal(t, DefaultPostTimezone, cfg.PostConfig.Timezone)
	assert.Equal(t, DefaultRetryExponentialBase, cfg.RetryConfig.ExponentialBase)
}

func TestLoadGlobalConfig_JSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"post_config":{"categories":["Notes"]}}`)

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, cfg.PostConfig.Categories)
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "workflow_config: [not a map")

	_, err := LoadGlobalConfig(path)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		wantErr bool
	}{
		{"defaults are valid", func(cfg *GlobalConfig) {}, false},
		{"bad log level", func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "verbose" }, true},
		{"bad log format", func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" }, true},
		{"bad charset", func(cfg *GlobalConfig) { cfg.PostConfig.FilenameCharset = "emoji" }, true},
		{"bad base url", func(cfg *GlobalConfig) { cfg.WorkflowConfig.BaseURL = "not a url" }, true},
		{"retry attempts over cap", func(cfg *GlobalConfig) { cfg.RetryConfig.MaxAttempts = 99 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadEnvCredentials_FromEnvFile(t *testing.T) {
	t.Setenv(EnvAPIToken, "")
	t.Setenv(EnvWorkflowID, "")
	os.Unsetenv(EnvAPIToken)
	os.Unsetenv(EnvWorkflowID)

	envFile := writeConfigFile(t, ".env", EnvAPIToken+"=file-token\n"+EnvWorkflowID+"=wf-from-file\n")

	creds, err := LoadEnvCredentials(envFile, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "file-token", creds.APIToken)
	assert.Equal(t, "wf-from-file", creds.WorkflowID)
}

func TestLoadEnvCredentials_MissingVariables(t *testing.T) {
	t.Setenv(EnvAPIToken, "token-only")
	t.Setenv(EnvWorkflowID, "")
	os.Unsetenv(EnvWorkflowID)

	_, err := LoadEnvCredentials(filepath.Join(t.TempDir(), "no-such.env"), zerolog.Nop())

	var valErr *errorwrapper.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, EnvWorkflowID, valErr.Field)
}

func TestLoadEnvCredentials_ProcessEnvWins(t *testing.T) {
	t.Setenv(EnvAPIToken, "process-token")
	t.Setenv(EnvWorkflowID, "wf-process")

	creds, err := LoadEnvCredentials(filepath.Join(t.TempDir(), "no-such.env"), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "process-token", creds.APIToken)
	assert.Equal(t, "wf-process", creds.WorkflowID)
}
