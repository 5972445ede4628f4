package main

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("server", flag.ContinueOnError)
}

func TestParseFlags(t *testing.T) {
	t.Run("Значения по умолчанию и обязательные из окружения", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "postgres://env")
		t.Setenv(envJWTSecret, "env-secret")

		cfg, err := parseFlags(newFlagSet(), nil)
		require.NoError(t, err)
		assert.Equal(t, ":8090", cfg.Addr)
		assert.Equal(t, "local", cfg.Env)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
		assert.Equal(t, "env-secret", cfg.JWTSecret)
		assert.Equal(t, 60*time.Minute, cfg.TokenTTL)
		assert.Equal(t, 10, cfg.BcryptCost)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
		assert.Empty(t, cfg.Minio.Endpoint)
	})

	t.Run("Флаги переопределяют окружение", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "postgres://env")
		t.Setenv(envJWTSecret, "env-secret")
		t.Setenv("SERVER_ADDR", ":9000")

		cfg, err := parseFlags(newFlagSet(), []string{
			"-addr", ":7000",
			"-database-dsn", "postgres://flag",
			"-jwt-secret", "flag-secret",
			"-env", "prod",
		})
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Addr)
		assert.Equal(t, "postgres://flag", cfg.DatabaseDSN)
		assert.Equal(t, "flag-secret", cfg.JWTSecret)
		assert.Equal(t, "prod", cfg.Env)
	})

	t.Run("Переменные окружения MinIO", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "postgres://env")
		t.Setenv(envJWTSecret, "env-secret")
		t.Setenv("MINIO_ENDPOINT", "localhost:9000")
		t.Setenv("MINIO_USE_SSL", "true")
		t.Setenv("TOKEN_TTL", "15m")

		cfg, err := parseFlags(newFlagSet(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
		assert.True(t, cfg.Minio.UseSSL)
		assert.Equal(t, "gophtodo-static", cfg.Minio.Bucket)
		assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	})

	t.Run("Нет строки подключения к БД", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "")
		t.Setenv(envJWTSecret, "env-secret")

		_, err := parseFlags(newFlagSet(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), envDatabaseDSN)
	})

	t.Run("Нет секрета", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "postgres://env")
		t.Setenv(envJWTSecret, "")

		_, err := parseFlags(newFlagSet(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), envJWTSecret)
	})

	t.Run("Неизвестный флаг", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "postgres://env")
		t.Setenv(envJWTSecret, "env-secret")

		fs := newFlagSet()
		fs.SetOutput(io.Discard)
		_, err := parseFlags(fs, []string{"-unknown"})
		require.Error(t, err)
	})
}
