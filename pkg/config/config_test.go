package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/civic")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.DocumentStore)
	assert.Equal(t, "civicconnect", cfg.MongoDatabase)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.ReportLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/civic")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")
	t.Setenv("DOCUMENT_STORE", StoreFirestore)
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REPORT_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreFirestore, cfg.DocumentStore)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.ReportLimit)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/civic")
	// Setenv registers the restore; Unsetenv makes the variable absent.
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}
