package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TENANTRY_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "tenantry.db", cfg.DatabaseDSN)
	require.Equal(t, 7*24*time.Hour, cfg.InviteTTL)
	require.Equal(t, "memory", cfg.TokenStoreMode)
	require.Equal(t, "tenantry", cfg.JWTIssuer)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TENANTRY_JWT_SECRET", "s3cret")
	t.Setenv("TENANTRY_DATABASE_DRIVER", "postgres")
	t.Setenv("TENANTRY_DATABASE_DSN", "postgres://u:p@db:5432/tenantry")
	t.Setenv("TENANTRY_INVITE_TTL", "72h")
	t.Setenv("TENANTRY_TOKEN_STORE_MODE", "durable")
	t.Setenv("TENANTRY_BOOTSTRAP_ADMIN_ID", "u-root")
	t.Setenv("TENANTRY_BOOTSTRAP_ADMIN_EMAIL", "root@x.com")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 72*time.Hour, cfg.InviteTTL)
	require.Equal(t, "durable", cfg.TokenStoreMode)
	require.Equal(t, "u-root", cfg.BootstrapAdminID)
	require.Equal(t, 9090, cfg.Port)
}

func TestLoadConfigMalformedDuration(t *testing.T) {
	t.Setenv("TENANTRY_JWT_SECRET", "s3cret")
	t.Setenv("TENANTRY_INVITE_TTL", "a week")

	_, err := LoadConfig()
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		DatabaseDriver:       DriverSQLite,
		DatabaseDSN:          ":memory:",
		InviteTTL:            time.Hour,
		TokenStoreMode:       "memory",
		JWTSecret:            "s3cret",
		JWTIssuer:            "idp",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "TENANTRY_DATABASE_DRIVER"},
		{"unknown token mode", func(c *Config) { c.TokenStoreMode = "redis" }, "TENANTRY_TOKEN_STORE_MODE"},
		{"zero ttl", func(c *Config) { c.InviteTTL = 0 }, "TENANTRY_INVITE_TTL"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "TENANTRY_JWT_SECRET"},
		{"half bootstrap", func(c *Config) { c.BootstrapAdminID = "u-root" }, "set together"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, ":memory:", sqliteDSN(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	require.Equal(t, "file:data/t.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("data/t.db"))
}
