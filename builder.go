package goTodo

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/goTodo/account"
	internalaudit "github.com/MrEthical07/goTodo/internal/audit"
	"github.com/MrEthical07/goTodo/internal/rate"
	"github.com/MrEthical07/goTodo/jwt"
	"github.com/MrEthical07/goTodo/password"
	"github.com/MrEthical07/goTodo/todo"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configure it during initialization, call
// Build once, and discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	accountStore AccountStore
	todoStore    TodoStore
	auditSink    AuditSink
	logger       *slog.Logger
	now          func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. cfg is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the default stores and the login throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore overrides the Redis account store.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.accountStore = store
	return b
}

// WithTodoStore overrides the Redis task store.
func (b *Builder) WithTodoStore(store TodoStore) *Builder {
	b.todoStore = store
	return b
}

// WithAuditSink sets where audit events go when Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the logger used for operational warnings. Defaults to
// slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for token iat, completion timestamps, and
// creation times.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine. A Builder
// can be built only once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		if b.accountStore == nil || b.todoStore == nil {
			return nil, errors.New("redis client required")
		}
		if cfg.Security.EnableLoginThrottle || cfg.Security.MaxRegistrationsPerIP > 0 {
			return nil, errors.New("Security throttling requires redis client")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config: cloneConfig(cfg),
		redis:  b.redis,
		logger: logger,
		now:    now,
	}

	// -------- STORES --------
	engine.accounts = b.accountStore
	if engine.accounts == nil {
		engine.accounts = account.NewStore(b.redis, cfg.Store.KeyPrefix)
	}
	engine.todos = b.todoStore
	if engine.todos == nil {
		engine.todos = todo.NewStore(b.redis, cfg.Store.KeyPrefix)
	}

	if b.redis != nil {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			Prefix:                cfg.Store.KeyPrefix,
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration: cfg.Security.LoginCooldownDuration,
			MaxRegistrationsPerIP: cfg.Security.MaxRegistrationsPerIP,
			RegistrationCooldown:  cfg.Security.RegistrationCooldown,
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	ph, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MinLength:        cfg.Password.MinLength,
		MaxPasswordBytes: cfg.Password.MaxLength,
	})
	if err != nil {
		engine.Close()
		return nil, err
	}
	engine.passwordHash = ph

	jm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		MaxFutureIAT:  cfg.Token.MaxFutureIAT,
		KeyID:         cfg.Token.KeyID,
		VerifyKeys:    cloneConfig(cfg).Token.VerifyKeys,
		Now:           now,
	})
	if err != nil {
		engine.Close()
		return nil, err
	}
	engine.jwtManager = jm

	engine.flows = engine.buildFlowDeps()

	b.built = true

	return engine, nil
}
