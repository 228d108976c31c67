package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EXPENSES_SENDERS", "")
	t.Setenv("EXPENSES_CLIENT_SECRET", "")
	t.Setenv("EXPENSES_API_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ClientSecretFile, cfg.SecretsFile)
	assert.Equal(t, ":5000", cfg.APIAddr)
	assert.Equal(t, DefaultSenders, cfg.SenderList())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EXPENSES_SENDERS", "alerts@bank.example, other@bank.example")
	t.Setenv("EXPENSES_USD_COP_RATE", "3950.5")
	t.Setenv("EXPENSES_FETCH_LIMIT", "25")
	t.Setenv("EXPENSES_CLIENT_SECRET", "/etc/expenses/secret.json")
	t.Setenv("EXPENSES_API_ADDR", ":8080")
	t.Setenv("EXPENSES_API_TOKEN", "s3cret")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "expenses")
	t.Setenv("POSTGRES_USER", "expenses")
	t.Setenv("POSTGRES_PASSWORD", "hunter2")
	t.Setenv("POSTGRES_SSLMODE", "require")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"alerts@bank.example", "other@bank.example"}, cfg.SenderList())
	assert.Equal(t, 3950.5, cfg.ForeignRate)
	assert.Equal(t, 25, cfg.FetchLimit)
	assert.Equal(t, "/etc/expenses/secret.json", cfg.SecretsFile)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, "s3cret", cfg.APIToken)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5433, cfg.Postgres.Port)
	assert.Equal(t, "expenses", cfg.Postgres.Database)
	assert.Equal(t, "require", cfg.Postgres.SSLMode)
}

func TestSenderList(t *testing.T) {
	tests := []struct {
		name    string
		senders string
		want    []string
	}{
		{"empty falls back", "", DefaultSenders},
		{"whitespace falls back", "   ", DefaultSenders},
		{"single", "a@x.example", []string{"a@x.example"}},
		{"trims and drops empties", " a@x.example ,, b@y.example", []string{"a@x.example", "b@y.example"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Senders: tc.senders}
			assert.Equal(t, tc.want, cfg.SenderList())
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPENSES_API_TOKEN=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("EXPENSES_API_TOKEN") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIToken)
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.env"))
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.APIAddr)
}
