package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Scan.Store)
	assert.Equal(t, 2*time.Second, cfg.Scan.StartDelay)
	assert.Equal(t, 3*time.Second, cfg.Scan.ProgressDelay)
	assert.Equal(t, 2*time.Second, cfg.Scan.FinishDelay)
	assert.Equal(t, 64, cfg.Scan.MaxConcurrent)
	assert.False(t, cfg.Scan.EnforceOwnership)
	assert.Equal(t, "1.0.0", cfg.Server.Version)
	assert.False(t, cfg.Auth.SocialLogin)
	assert.Empty(t, cfg.Webhook.Secret)
	assert.Equal(t, []string{"main", "master"}, cfg.Webhook.Branches)
	assert.Equal(t, []string{"semgrep", "trivy"}, cfg.Webhook.Checks)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
scan:
  store: database
  start_delay: 100ms
  progress_delay: 200ms
  finish_delay: 300ms
  max_lifetime: 5s
  max_concurrent: 4
  enforce_ownership: true
report:
  sink: local
  local_dir: /tmp/reports
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "database", cfg.Scan.Store)
	assert.Equal(t, 100*time.Millisecond, cfg.Scan.StartDelay)
	assert.Equal(t, 4, cfg.Scan.MaxConcurrent)
	assert.True(t, cfg.Scan.EnforceOwnership)
	assert.Equal(t, "local", cfg.Report.Sink)
	assert.Equal(t, "/tmp/reports", cfg.Report.LocalDir)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("CYBERIO_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_WebhookSecretFromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("CYBERIO_WEBHOOK_SECRET", "s3cr3t")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Webhook.Secret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown store", "scan:\n  store: etcd\n", "scan.store"},
		{"zero concurrency", "scan:\n  max_concurrent: 0\n", "max_concurrent"},
		{"short lifetime", "scan:\n  max_lifetime: 1s\n", "max_lifetime"},
		{"unknown sink", "report:\n  sink: ftp\n", "report.sink"},
		{"s3 without bucket", "report:\n  sink: s3\n", "bucket"},
		{"sftp without host", "report:\n  sink: sftp\n", "report.sftp.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
