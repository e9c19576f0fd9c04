package authgate

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names recognized by the cookie policy and config loader.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the engine's full configuration. Construct it with
// DefaultConfig or FromEnv, adjust fields, and pass it to the builder;
// it is copied at Build time and never mutated afterwards.
type Config struct {
	Environment    string
	ValidationMode ValidationMode

	JWT      JWTConfig
	Session  SessionConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// JWTConfig configures the token codec. A zero TTL inherits the session
// TTL so token and ledger row always expire together unless explicitly
// split.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// SessionConfig configures the Redis session ledger.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

// PasswordConfig holds Argon2id cost parameters, the sign-up minimum
// length, and the bound on concurrent hash operations.
type PasswordConfig struct {
	Memory        uint32 // in KB
	Time          uint32
	Parallelism   uint8
	SaltLength    uint32
	KeyLength     uint32
	MinLength     int
	MaxConcurrent int
}

// SecurityConfig governs sign-in throttling.
type SecurityConfig struct {
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles counter collection and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the settings a production deployment starts
// from. The signing secret has no default and must be provided.
func DefaultConfig() Config {
	return Config{
		Environment:    EnvProduction,
		ValidationMode: ModeSignatureOnly,
		JWT: JWTConfig{
			Issuer:   "authgate",
			Audience: "authgate",
		},
		Session: SessionConfig{
			RedisPrefix: "authgate",
			TTL:         24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:        64 * 1024,
			Time:          3,
			Parallelism:   2,
			SaltLength:    16,
			KeyLength:     32,
			MinLength:     8,
			MaxConcurrent: 0,
		},
		Security: SecurityConfig{
			EnableIPThrottle: true,
			MaxLoginAttempts: 10,
			LoginCooldown:    15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for internal consistency and fills
// the few fields that inherit from others.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	case "":
		c.Environment = EnvProduction
	default:
		return errors.New("environment must be development or production")
	}

	switch c.ValidationMode {
	case ModeSignatureOnly, ModeLedger:
	default:
		return errors.New("invalid validation mode")
	}

	if len(c.JWT.Secret) < 32 {
		return errors.New("signing secret must be at least 32 bytes")
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return errors.New("token issuer and audience required")
	}

	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}

	if c.JWT.TTL == 0 {
		c.JWT.TTL = c.Session.TTL
	}
	if c.JWT.TTL < 0 {
		return errors.New("token TTL must be positive")
	}
	if c.JWT.TTL > c.Session.TTL {
		return errors.New("token TTL must not outlive the session TTL")
	}

	if c.Password.MinLength < 8 {
		return errors.New("password minimum length must be >= 8")
	}

	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("max login attempts must be positive")
	}
	if c.Security.LoginCooldown <= 0 {
		return errors.New("login cooldown must be positive")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}

	return nil
}

// FromEnv loads configuration from AUTHGATE_* environment variables on
// top of DefaultConfig. A .env file in the working directory is merged
// when present; real environment variables win. The signing secret is
// mandatory.
//
// Recognized variables:
//
//	AUTHGATE_SECRET            signing secret (required, >= 32 bytes)
//	AUTHGATE_ENV               development | production
//	AUTHGATE_ISSUER            token issuer
//	AUTHGATE_AUDIENCE          token audience
//	AUTHGATE_TOKEN_TTL         e.g. 24h
//	AUTHGATE_SESSION_TTL       e.g. 24h
//	AUTHGATE_REDIS_PREFIX      ledger key prefix
//	AUTHGATE_VALIDATION_MODE   signature | ledger
//	AUTHGATE_MAX_LOGIN_ATTEMPTS
//	AUTHGATE_LOGIN_COOLDOWN    e.g. 15m
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AUTHGATE")
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// .env is optional; only a parse failure is fatal.
		if _, ok := err.(viper.ConfigParseError); ok {
			return Config{}, err
		}
	}

	cfg := DefaultConfig()

	secret := v.GetString("SECRET")
	if secret == "" {
		return Config{}, errors.New("AUTHGATE_SECRET is required")
	}
	cfg.JWT.Secret = []byte(secret)

	if env := v.GetString("ENV"); env != "" {
		cfg.Environment = strings.ToLower(env)
	}
	if iss := v.GetString("ISSUER"); iss != "" {
		cfg.JWT.Issuer = iss
	}
	if aud := v.GetString("AUDIENCE"); aud != "" {
		cfg.JWT.Audience = aud
	}
	if ttl := v.GetDuration("TOKEN_TTL"); ttl > 0 {
		cfg.JWT.TTL = ttl
	}
	if ttl := v.GetDuration("SESSION_TTL"); ttl > 0 {
		cfg.Session.TTL = ttl
	}
	if prefix := v.GetString("REDIS_PREFIX"); prefix != "" {
		cfg.Session.RedisPrefix = prefix
	}

	switch strings.ToLower(v.GetString("VALIDATION_MODE")) {
	case "", "signature":
		cfg.ValidationMode = ModeSignatureOnly
	case "ledger":
		cfg.ValidationMode = ModeLedger
	default:
		return Config{}, errors.New("AUTHGATE_VALIDATION_MODE must be signature or ledger")
	}

	if n := v.GetInt("MAX_LOGIN_ATTEMPTS"); n > 0 {
		cfg.Security.MaxLoginAttempts = n
	}
	if d := v.GetDuration("LOGIN_COOLDOWN"); d > 0 {
		cfg.Security.LoginCooldown = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	return out
}
