package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "inmemory", cfg.Cache.Type)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 5*time.Second, cfg.LockTimeout())
	assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 5, cfg.Billing.RefundRetries)
}

func TestLoadConfig_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  env: test
database:
  driver: mysql
  url: "user:pass@tcp(localhost:3306)/portal"
cache:
  type: redis
  ttl_seconds: 60
billing:
  default_currency: EUR
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "")

	LoadConfig()
	cfg := GetConfig()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/portal", cfg.Database.DSN)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, "EUR", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute, "незаданные значения берутся по умолчанию")
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://portal@localhost/portal")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "s3cret")

	LoadConfig()
	cfg := GetConfig()

	assert.Equal(t, "postgres://portal@localhost/portal", cfg.Database.DSN)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.True(t, cfg.Workers.Enabled)
}
