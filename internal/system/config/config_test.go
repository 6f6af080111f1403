package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_CSVBackendWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  backend: csv
  csv_path: /tmp/intake.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StorageBackendCSV, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/intake.csv", cfg.Storage.CSVPath)
	assert.Equal(t, "Task", cfg.Tracker.IssueType)
	assert.Equal(t, "https://revenue-intake-app.pages.dev", cfg.CORS.AllowedOrigin)
	assert.False(t, cfg.Tracker.IsConfigured())
	assert.Same(t, cfg, Get())
}

func TestLoad_TrackerFromLegacyEnvironment(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_EMAIL", "ops@example.com")
	t.Setenv("JIRA_API_TOKEN", "token")
	t.Setenv("JIRA_PROJECT_KEY", "REV")

	path := writeConfig(t, `
storage:
  backend: csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.atlassian.net", cfg.Tracker.BaseURL)
	assert.Equal(t, "REV", cfg.Tracker.ProjectKey)
	assert.True(t, cfg.Tracker.IsConfigured())
}

func TestLoad_RejectsSQLBackendWithoutHost(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: mysql
database:
  database: intake
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database hostname is required")
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: dynamo
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage backend")
}

func TestTrackerConfig_IsConfiguredNeedsAllFour(t *testing.T) {
	full := TrackerConfig{BaseURL: "u", AccountEmail: "e", APIToken: "t", ProjectKey: "p"}
	assert.True(t, full.IsConfigured())

	missing := full
	missing.APIToken = ""
	assert.False(t, missing.IsConfigured())
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	mysql := DatabaseConfig{Type: "mysql", User: "u", Password: "p", Hostname: "db", Port: 3306, Database: "intake"}
	assert.Equal(t, "u:p@tcp(db:3306)/intake?parseTime=true&clientFoundRows=true", mysql.GetDSN())

	pg := DatabaseConfig{Type: "postgres", User: "u", Password: "p", Hostname: "db", Port: 5432, Database: "intake"}
	assert.Equal(t, "postgres://u:p@db:5432/intake?sslmode=disable", pg.GetDSN())
}
