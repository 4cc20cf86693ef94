package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tiffin-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "tiffin", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 0, cfg.Allocator.AutoSelectLimit)
	assert.Equal(t, 30*time.Second, cfg.Allocator.LockTTL)
	assert.Equal(t, "Tiffin Service", cfg.Company.Name)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TIFFIN_DATABASE_HOST", "db.internal")
	t.Setenv("TIFFIN_DATABASE_PORT", "5433")
	t.Setenv("TIFFIN_ALLOCATOR_AUTO_SELECT_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 5, cfg.Allocator.AutoSelectLimit)
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires password", func(t *testing.T) {
		t.Setenv("TIFFIN_APP_ENV", "production")
		t.Setenv("TIFFIN_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("rejects disabled ssl", func(t *testing.T) {
		t.Setenv("TIFFIN_APP_ENV", "production")
		t.Setenv("TIFFIN_DATABASE_PASSWORD", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("passes with password and ssl", func(t *testing.T) {
		t.Setenv("TIFFIN_APP_ENV", "production")
		t.Setenv("TIFFIN_DATABASE_PASSWORD", "secret")
		t.Setenv("TIFFIN_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "tiffin",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "localhost:5432/tiffin")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
