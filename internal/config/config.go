package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAppName         = "BackChair"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultIdentityURL     = "https://thebackchairapp.com/app/action.php"
	defaultIdentityTimeout = 10 * time.Second
	defaultSessionTTL      = 7 * 24 * time.Hour
	defaultFlowTTL         = 30 * time.Minute
	defaultLoginAttempts   = 5
	defaultBcryptCost      = 12
	devSessionSecret       = "dev-session-secret-change-me"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	idempotencyTTLEnvVar   = "IDEMPOTENCY_TTL"
	identityTimeoutEnvVar  = "IDENTITY_TIMEOUT"
	sessionTTLEnvVar       = "SESSION_TTL"
	flowTTLEnvVar          = "FLOW_TTL"
)

// Config captures application runtime configuration loaded from the environment
// (and an optional .env file).
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// IdentityServiceURL is the single action endpoint of the remote identity/commerce backend.
	IdentityServiceURL string
	IdentityTimeout    time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	FlowTTL       time.Duration

	LoginAttemptsPerMinute int
	BcryptCost             int

	// AllowAnonymousSkip enables the "skip & login" escape hatch during password creation.
	AllowAnonymousSkip bool
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", defaultAppName)
	v.SetDefault("APP_ENV", defaultAppEnv)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("LOG_FORMAT", defaultLogFormat)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("IDENTITY_SERVICE_URL", defaultIdentityURL)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("LOGIN_ATTEMPTS_PER_MINUTE", defaultLoginAttempts)
	v.SetDefault("ALLOW_ANONYMOUS_SKIP", false)
	v.SetDefault("BCRYPT_COST", defaultBcryptCost)

	cfg := Config{
		AppName:                v.GetString("APP_NAME"),
		AppEnv:                 strings.ToLower(v.GetString("APP_ENV")),
		Port:                   v.GetString("PORT"),
		LogLevel:               strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:              strings.ToLower(v.GetString("LOG_FORMAT")),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		RedisURL:               v.GetString("REDIS_URL"),
		IdentityServiceURL:     v.GetString("IDENTITY_SERVICE_URL"),
		SessionSecret:          v.GetString("SESSION_SECRET"),
		LoginAttemptsPerMinute: v.GetInt("LOGIN_ATTEMPTS_PER_MINUTE"),
		AllowAnonymousSkip:     v.GetBool("ALLOW_ANONYMOUS_SKIP"),
		BcryptCost:             v.GetInt("BCRYPT_COST"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{shutdownDurationEnvVar, defaultShutdownDelay, &cfg.ShutdownPeriod},
		{idempotencyTTLEnvVar, defaultIdempotencyTTL, &cfg.IdempotencyTTL},
		{identityTimeoutEnvVar, defaultIdentityTimeout, &cfg.IdentityTimeout},
		{sessionTTLEnvVar, defaultSessionTTL, &cfg.SessionTTL},
		{flowTTLEnvVar, defaultFlowTTL, &cfg.FlowTTL},
	}
	for _, d := range durations {
		parsed, err := parseDuration(v.GetString(d.key), d.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if cfg.IdentityServiceURL == "" {
		return Config{}, fmt.Errorf("IDENTITY_SERVICE_URL must be set")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.LoginAttemptsPerMinute <= 0 {
		cfg.LoginAttemptsPerMinute = defaultLoginAttempts
	}

	if cfg.IsDev() {
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = devSessionSecret
		}
		return cfg, nil
	}

	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in a local/development environment,
// where Postgres and Redis are optional.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// parseDuration accepts Go durations ("90s") or a bare number of seconds ("90").
func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	d, err := time.ParseDuration(raw + "s")
	if err != nil {
		return 0, err
	}
	return d, nil
}
