package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// minSessionSecretLength is the floor for the configured signing secret.
// The secret feeds the HKDF that derives both the signing and sealing keys,
// so a weak secret weakens every session artifact at once.
const minSessionSecretLength = 32

var ErrSessionSecretTooShort = errors.New("SESSION_SECRET must be at least 32 bytes")

type Config struct {
	// UpstreamAPIURL is the marketplace REST API base. May be empty in
	// which case every auth call fails with a configuration error rather
	// than a confusing network one.
	UpstreamAPIURL string `env:"UPSTREAM_API_URL"`

	// SessionSecret signs and seals every session artifact.
	SessionSecret string `env:"SESSION_SECRET,required"`

	Issuer string `env:"SESSION_ISSUER" envDefault:"nestmarket-authgate"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"authgate.db"`

	CookieName    string `env:"SESSION_COOKIE" envDefault:"nestmarket_session"`
	SecureCookies bool   `env:"SECURE_COOKIES" envDefault:"true"`

	// Guard route policy. See guard.UnmatchedPolicy.
	GuardUnmatchedPolicy string `env:"GUARD_UNMATCHED_POLICY" envDefault:"allow"`
	SignInPath           string `env:"GUARD_SIGNIN_PATH" envDefault:"/auth/signin"`
	LandingPath          string `env:"GUARD_LANDING_PATH" envDefault:"/dashboard"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// EventRetention bounds the auth trail. Events older than this are
	// pruned by housekeeping.
	EventRetention time.Duration `env:"EVENT_RETENTION" envDefault:"720h"`
}

// LoadConfig reads configuration from the environment and validates the
// parts that must fail fast.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if len(cfg.SessionSecret) < minSessionSecretLength {
		return Config{}, ErrSessionSecretTooShort
	}
	return cfg, nil
}
