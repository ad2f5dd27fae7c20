// todo-server serves the goTodo REST API over HTTP.
//
// Required environment: PORT, STORE_URL (redis://...), TOKEN_SECRET. An
// optional .env file is loaded first without overriding variables that are
// already set. Non-secret tuning lives in an optional YAML file named by
// --config or TODO_CONFIG.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/api"
	"github.com/MrEthical07/goTodo/metrics/export/prometheus"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "todo-server: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath string
		envFile    string
		logLevel   string
		logFormat  string
	)

	flags := pflag.NewFlagSet("todo-server", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to YAML config file (default: $TODO_CONFIG)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config file)")
	flags.StringVar(&logFormat, "log-format", "", "text or json (overrides config file)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if configPath == "" {
		configPath = os.Getenv("TODO_CONFIG")
	}

	fc, err := loadFileConfig(configPath)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(fc, os.Getenv, logLevel, logFormat)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	opts, err := redis.ParseURL(cfg.StoreURL)
	if err != nil {
		return fmt.Errorf("parse STORE_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	builder := goTodo.New().
		WithConfig(cfg.Engine).
		WithRedis(rdb).
		WithLogger(logger)
	if cfg.Engine.Audit.Enabled {
		builder = builder.WithAuditSink(goTodo.NewSlogSink(logger.With("component", "audit")))
	}
	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if latency, err := engine.Health(ctx); err != nil {
		logger.Warn("store not reachable at startup", "error", err)
	} else {
		logger.Info("store reachable", "latency", latency)
	}

	routerOpts := api.Options{
		Logger:            logger,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		TrustForwardedFor: cfg.TrustForwardedFor,
	}
	if cfg.Engine.Metrics.Enabled {
		routerOpts.Metrics = prometheus.NewPrometheusExporter(engine).Handler()
	}
	if cfg.OTelInterval > 0 {
		stopOTel, err := startOTel(engine, logger.With("component", "otel"), cfg.OTelInterval)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := stopOTel(flushCtx); err != nil {
				logger.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           api.NewRouter(engine, routerOpts),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
