package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/procurement-mock/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv() injector.Option {
	return injector.WithLookup(func(string) (string, bool) { return "", false })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), noEnv())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: sales-mock
  port: 4000
  logging:
    enabled: true
    level: debug
    format: console
store:
  source: s3://fixtures/db.json
  region: sa-east-1
rewrites:
  - from: /legacy/*
    to: /$1
`)

	cfg, err := Load(context.Background(), path, noEnv())
	require.NoError(t, err)

	assert.Equal(t, "sales-mock", cfg.Service.Name)
	assert.Equal(t, 4000, cfg.Service.Port)
	assert.Equal(t, "local", cfg.Service.Runtime, "padrão preservado")
	assert.Equal(t, "debug", cfg.Service.Logging.Level)
	assert.Equal(t, "s3://fixtures/db.json", cfg.Store.Source)
	assert.Equal(t, "*", cfg.CORS.AllowOrigin)
	assert.Equal(t, []RewriteRule{{From: "/legacy/*", To: "/$1"}}, cfg.Rewrites)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 4000
store:
  source: ${env.SEED_FILE}
`)
	vars := map[string]string{"PORT": "5050", "SEED_FILE": "fixtures/seed.yaml"}
	lookup := injector.WithLookup(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})

	cfg, err := Load(context.Background(), path, lookup)
	require.NoError(t, err)
	assert.Equal(t, 5050, cfg.Service.Port, "PORT vence o arquivo")
	assert.Equal(t, "fixtures/seed.yaml", cfg.Store.Source)

	vars["DB_SOURCE"] = "redis://localhost:6379/seed"
	cfg, err = Load(context.Background(), path, lookup)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/seed", cfg.Store.Source)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(context.Background(), writeConfig(t, "service: [broken"), noEnv())
	assert.ErrorContains(t, err, "falha parse yaml")

	_, err = Load(context.Background(), writeConfig(t, "unknown_section: true"), noEnv())
	assert.ErrorContains(t, err, "falha parse yaml")

	_, err = Load(context.Background(), writeConfig(t, "service:\n  runtime: kubernetes\n"), noEnv())
	assert.ErrorContains(t, err, "validação estrutural")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, DefaultConfigPath, Path())

	t.Setenv(EnvConfigPath, "/etc/mock/config.yaml")
	assert.Equal(t, "/etc/mock/config.yaml", Path())
}

func TestServiceDetails_Durations(t *testing.T) {
	s := ServiceDetails{Timeout: "2s", ShutdownTimeout: "bad"}
	assert.Equal(t, "2s", s.GetTimeout().String())
	assert.Equal(t, "10s", s.GetShutdownTimeout().String())
}
