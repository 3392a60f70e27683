package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/tokens"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DatabaseDriver string `env:"TENANTRY_DATABASE_DRIVER" envDefault:"sqlite"`      // sqlite or postgres
	DatabaseDSN    string `env:"TENANTRY_DATABASE_DSN"    envDefault:"tenantry.db"` // file path for sqlite, URL for postgres

	InviteTTL      time.Duration `env:"TENANTRY_INVITE_TTL"        envDefault:"168h"`
	TokenStoreMode string        `env:"TENANTRY_TOKEN_STORE_MODE" envDefault:"memory"` // memory or durable

	// Identity tokens are issued by the platform IdP and verified with a
	// shared HS256 secret.
	JWTSecret string `env:"TENANTRY_JWT_SECRET,unset"`
	JWTIssuer string `env:"TENANTRY_JWT_ISSUER" envDefault:"tenantry"`

	BootstrapAdminID    string `env:"TENANTRY_BOOTSTRAP_ADMIN_ID"`
	BootstrapAdminEmail string `env:"TENANTRY_BOOTSTRAP_ADMIN_EMAIL"`

	Env                  string        `env:"ENV"                   envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("TENANTRY_DATABASE_DRIVER: unsupported driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("TENANTRY_DATABASE_DSN is required"))
	}

	switch tokens.Mode(c.TokenStoreMode) {
	case tokens.ModeMemory, tokens.ModeDurable:
	default:
		errs = append(errs, fmt.Errorf("TENANTRY_TOKEN_STORE_MODE: unsupported mode %q", c.TokenStoreMode))
	}

	if c.InviteTTL <= 0 {
		errs = append(errs, errors.New("TENANTRY_INVITE_TTL must be positive"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("TENANTRY_JWT_SECRET is required"))
	}
	if (c.BootstrapAdminID == "") != (c.BootstrapAdminEmail == "") {
		errs = append(errs, errors.New("TENANTRY_BOOTSTRAP_ADMIN_ID and TENANTRY_BOOTSTRAP_ADMIN_EMAIL must be set together"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}
