package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goTodo "github.com/MrEthical07/goTodo"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML tuning file. Secrets and the listen port
// come from the environment only.
type fileConfig struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Store struct {
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"store"`

	Password struct {
		MemoryKB    uint32 `yaml:"memory_kb"`
		Time        uint32 `yaml:"time"`
		Parallelism uint8  `yaml:"parallelism"`
	} `yaml:"password"`

	Security struct {
		LoginThrottle         bool          `yaml:"login_throttle"`
		IPThrottle            bool          `yaml:"ip_throttle"`
		MaxLoginAttempts      int           `yaml:"max_login_attempts"`
		LoginCooldown         time.Duration `yaml:"login_cooldown"`
		MaxRegistrationsPerIP int           `yaml:"max_registrations_per_ip"`
		RegistrationCooldown  time.Duration `yaml:"registration_cooldown"`
	} `yaml:"security"`

	Audit struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
	} `yaml:"audit"`

	Metrics struct {
		Enabled      bool          `yaml:"enabled"`
		Latency      bool          `yaml:"latency"`
		OTelInterval time.Duration `yaml:"otel_interval"`
	} `yaml:"metrics"`

	HTTP struct {
		MaxBodyBytes      int64         `yaml:"max_body_bytes"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
		TrustForwardedFor bool          `yaml:"trust_forwarded_for"`
	} `yaml:"http"`
}

// serverConfig is everything main needs after startup resolution.
type serverConfig struct {
	Port     int
	StoreURL string

	LogLevel  slog.Level
	LogFormat string

	Engine goTodo.Config

	MaxBodyBytes      int64
	ShutdownTimeout   time.Duration
	TrustForwardedFor bool

	// OTelInterval enables the OpenTelemetry log export when > 0.
	OTelInterval time.Duration
}

var errMissingEnv = errors.New("missing required environment variable")

func loadFileConfig(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// resolveConfig merges the file, the environment, and flag overrides. The
// flags win for logging; the environment is the only source of PORT,
// STORE_URL and TOKEN_SECRET.
func resolveConfig(fc *fileConfig, getenv func(string) string, logLevel, logFormat string) (serverConfig, error) {
	var missing []string
	for _, name := range []string{"PORT", "STORE_URL", "TOKEN_SECRET"} {
		if strings.TrimSpace(getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return serverConfig{}, fmt.Errorf("%w: %s", errMissingEnv, strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(getenv("PORT"))
	if err != nil || port <= 0 || port > 65535 {
		return serverConfig{}, fmt.Errorf("invalid PORT %q", getenv("PORT"))
	}

	cfg := serverConfig{
		Port:            port,
		StoreURL:        getenv("STORE_URL"),
		LogFormat:       "text",
		Engine:          goTodo.DefaultConfig(),
		ShutdownTimeout: 10 * time.Second,
	}

	level := fc.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return serverConfig{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	format := fc.Log.Format
	if logFormat != "" {
		format = logFormat
	}
	switch format {
	case "", "text":
	case "json":
		cfg.LogFormat = "json"
	default:
		return serverConfig{}, fmt.Errorf("invalid log format %q", format)
	}

	e := &cfg.Engine
	e.Token.PrivateKey = []byte(getenv("TOKEN_SECRET"))
	if fc.Store.KeyPrefix != "" {
		e.Store.KeyPrefix = fc.Store.KeyPrefix
	}
	if fc.Password.MemoryKB != 0 {
		e.Password.Memory = fc.Password.MemoryKB
	}
	if fc.Password.Time != 0 {
		e.Password.Time = fc.Password.Time
	}
	if fc.Password.Parallelism != 0 {
		e.Password.Parallelism = fc.Password.Parallelism
	}

	s := fc.Security
	e.Security.EnableLoginThrottle = s.LoginThrottle
	e.Security.EnableIPThrottle = s.IPThrottle
	if s.MaxLoginAttempts != 0 {
		e.Security.MaxLoginAttempts = s.MaxLoginAttempts
	}
	if s.LoginCooldown != 0 {
		e.Security.LoginCooldownDuration = s.LoginCooldown
	}
	e.Security.MaxRegistrationsPerIP = s.MaxRegistrationsPerIP
	if s.RegistrationCooldown != 0 {
		e.Security.RegistrationCooldown = s.RegistrationCooldown
	}

	e.Audit.Enabled = fc.Audit.Enabled
	if fc.Audit.BufferSize != 0 {
		e.Audit.BufferSize = fc.Audit.BufferSize
	}
	e.Metrics.Enabled = fc.Metrics.Enabled
	e.Metrics.EnableLatencyHistograms = fc.Metrics.Enabled && fc.Metrics.Latency

	if fc.Metrics.OTelInterval < 0 {
		return serverConfig{}, fmt.Errorf("invalid metrics otel_interval %s", fc.Metrics.OTelInterval)
	}
	if fc.Metrics.Enabled {
		cfg.OTelInterval = fc.Metrics.OTelInterval
	}

	cfg.MaxBodyBytes = fc.HTTP.MaxBodyBytes
	cfg.TrustForwardedFor = fc.HTTP.TrustForwardedFor
	if fc.HTTP.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = fc.HTTP.ShutdownTimeout
	}

	if err := e.Validate(); err != nil {
		return serverConfig{}, fmt.Errorf("engine config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg serverConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

const readHeaderTimeout = 5 * time.Second
