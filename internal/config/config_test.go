package config

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDBConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "market")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "market")

	cfg, err := LoadDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 user=market password=secret dbname=market sslmode=disable", cfg.DSN)

	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/market")
	cfg, err = LoadDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/market", cfg.DSN)
}

func TestLoadDBConfig_Missing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	_, err := LoadDBConfig()
	assert.Error(t, err)
}

func TestLoadAppConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadAppConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "nope")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("PAGE_SIZE", "20")
	t.Setenv("SERVER_PORT", "")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(24), cfg.JWTExpirationHours)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "marketplace.events", cfg.KafkaTopic)
}

func TestAutoMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, AutoMigrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
