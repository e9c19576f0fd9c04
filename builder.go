package authgate

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/narinote/authgate/internal/audit"
	"github.com/narinote/authgate/internal/metrics"
	"github.com/narinote/authgate/internal/rate"
	"github.com/narinote/authgate/jwt"
	"github.com/narinote/authgate/password"
	"github.com/narinote/authgate/session"
)

// Builder assembles an Engine. Chain the With* setters and call Build
// exactly once; a Builder is not safe for concurrent use and cannot be
// reused.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	userStore UserStore
	auditSink AuditSink
	logger    *slog.Logger
	built     bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the session ledger and the
// sign-in rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the account persistence boundary.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithAuditSink sets the destination for audit events. Without one,
// enabled auditing discards events through a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidationMode overrides the engine-wide token validation mode.
func (b *Builder) WithValidationMode(mode ValidationMode) *Builder {
	b.config.ValidationMode = mode
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles verify-latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the subsystems, and returns
// a ready Engine. The dummy verification hash used for timing symmetry
// on unknown identifiers is derived here, once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:        cfg.Password.Memory,
		Time:          cfg.Password.Time,
		Parallelism:   cfg.Password.Parallelism,
		SaltLength:    cfg.Password.SaltLength,
		KeyLength:     cfg.Password.KeyLength,
		MaxConcurrent: cfg.Password.MaxConcurrent,
	})
	if err != nil {
		return nil, err
	}

	// Hash a throwaway value so failed lookups verify against a real
	// PHC string and take as long as a wrong password does.
	dummyHash, err := hasher.Hash("authgate-dummy-credential")
	if err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		return nil, err
	}

	ledger, err := session.NewLedger(b.redis, cfg.Session.RedisPrefix, cfg.Session.TTL)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:     cfg,
		userStore:  b.userStore,
		hasher:     hasher,
		dummyHash:  dummyHash,
		jwtManager: jwtManager,
		ledger:     ledger,
		logger:     logger,
		limiter: rate.New(b.redis, rate.Config{
			EnableIPThrottle: cfg.Security.EnableIPThrottle,
			MaxAttempts:      cfg.Security.MaxLoginAttempts,
			Cooldown:         cfg.Security.LoginCooldown,
		}),
		metrics: metrics.New(metrics.Config{
			Enabled:       cfg.Metrics.Enabled,
			EnableLatency: cfg.Metrics.EnableLatencyHistograms,
		}),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	return engine, nil
}
