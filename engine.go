package goTodo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goTodo/account"
	internalaudit "github.com/MrEthical07/goTodo/internal/audit"
	internalflows "github.com/MrEthical07/goTodo/internal/flows"
	"github.com/MrEthical07/goTodo/internal/rate"
	"github.com/MrEthical07/goTodo/jwt"
	"github.com/MrEthical07/goTodo/password"
	"github.com/redis/go-redis/v9"
)

// Engine serves account and task operations. It is immutable after Build and
// safe for concurrent use.
type Engine struct {
	config       Config
	redis        redis.UniversalClient
	accounts     AccountStore
	todos        TodoStore
	rateLimiter  *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	logger       *slog.Logger
	now          func() time.Time
	flows        internalflows.Deps
}

// Close flushes and stops the audit dispatcher. The Redis client is owned by
// the caller and is not closed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the current counters. A nil Engine or
// disabled metrics yield empty maps.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Metrics exposes the live metrics for exporters.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

type pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Health pings the account store when it supports it and reports the
// round-trip latency.
func (e *Engine) Health(ctx context.Context) (time.Duration, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	p, ok := e.accounts.(pinger)
	if !ok {
		return 0, nil
	}
	latency, err := p.Ping(ctx)
	if err != nil {
		return latency, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return latency, nil
}

// Authenticate accepts token only if it verifies cryptographically with
// purpose "auth" and is still listed on the account it names. Every failure
// is reported as [ErrUnauthorized]; a store outage fails closed.
func (e *Engine) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}()
	}

	res := internalflows.RunAuthenticate(ctx, token, e.flows.Authenticate)
	if res.Failure != internalflows.AuthenticateFailureNone {
		e.metricInc(MetricAuthenticateRejected)
		if res.Failure == internalflows.AuthenticateFailureStore {
			e.metricInc(MetricStoreFailure)
			e.logger.Warn("goTodo: token list lookup failed", "error", res.Err)
		}
		e.emitAudit(ctx, auditEventAuthRejected, false, "", ErrUnauthorized, func() map[string]string {
			return map[string]string{
				"reason": res.Failure.String(),
			}
		})
		return nil, ErrUnauthorized
	}

	e.metricInc(MetricAuthenticateSuccess)
	return &Principal{AccountID: res.AccountID, Token: token}, nil
}

func (e *Engine) warn(msg string, args ...any) {
	e.logger.Warn(msg, args...)
}

// buildFlowDeps wires the stores, token manager, limiter, audit and metrics
// into the flow dependency sets.
func (e *Engine) buildFlowDeps() internalflows.Deps {
	metricInc := func(id int) {
		e.metricInc(MetricID(id))
	}

	deps := internalflows.Deps{
		Authenticate: internalflows.AuthenticateDeps{
			ParseToken:    e.jwtManager.Parse,
			Purpose:       jwt.PurposeAuth,
			Accounts:      e.accounts,
			StoreNotFound: account.ErrNotFound,
		},
		Account: internalflows.AccountDeps{
			ClientIPFromContext:  ClientIPFromContext,
			Now:                  e.now,
			NewID:                newID,
			ValidateEmail:        validateEmail,
			HashPassword:         e.passwordHash.Hash,
			VerifyPassword:       e.passwordHash.Verify,
			VerifyDummy:          e.passwordHash.VerifyDummy,
			PasswordNeedsUpgrade: e.passwordHash.NeedsUpgrade,
			IssueToken:           e.jwtManager.Issue,
			TokenPurpose:         jwt.PurposeAuth,
			Accounts:             e.accounts,
			RateLimited:          rate.ErrRateLimited,
			StoreNotFound:        account.ErrNotFound,
			StoreDuplicate:       account.ErrDuplicateEmail,
			MetricInc:            metricInc,
			EmitAudit:            e.emitAudit,
			Warn:                 e.warn,
			Metrics: internalflows.AccountMetrics{
				RegisterSuccess:   int(MetricRegisterSuccess),
				RegisterDuplicate: int(MetricRegisterDuplicate),
				RegisterRejected:  int(MetricRegisterRejected),
				LoginSuccess:      int(MetricLoginSuccess),
				LoginFailure:      int(MetricLoginFailure),
				LoginRateLimited:  int(MetricLoginRateLimited),
				StoreFailure:      int(MetricStoreFailure),
			},
			Events: internalflows.AccountEvents{
				Registered:            auditEventAccountRegistered,
				RegistrationDuplicate: auditEventAccountRegistrationDuplicate,
				LoginSuccess:          auditEventLoginSuccess,
				LoginFailure:          auditEventLoginFailure,
				LoginRateLimited:      auditEventLoginRateLimited,
			},
			Errors: internalflows.AccountErrors{
				EngineNotReady:          ErrEngineNotReady,
				Validation:              ErrValidation,
				DuplicateEmail:          ErrDuplicateEmail,
				InvalidCredentials:      ErrInvalidCredentials,
				Persistence:             ErrPersistence,
				LoginRateLimited:        ErrLoginRateLimited,
				RegistrationRateLimited: ErrRegistrationRateLimited,
			},
		},
		Logout: internalflows.LogoutDeps{
			TokenPurpose: jwt.PurposeAuth,
			Accounts:     e.accounts,
		},
		Todo: internalflows.TodoDeps{
			Todos:         e.todos,
			Now:           e.now,
			NewID:         newID,
			StoreNotFound: todoNotFound,
			MetricInc:     metricInc,
			Warn:          e.warn,
			Metrics: internalflows.TodoMetrics{
				Created:      int(MetricTodoCreated),
				Updated:      int(MetricTodoUpdated),
				Deleted:      int(MetricTodoDeleted),
				NotFound:     int(MetricTodoNotFound),
				StoreFailure: int(MetricStoreFailure),
			},
			Errors: internalflows.TodoErrors{
				EngineNotReady: ErrEngineNotReady,
				Validation:     ErrValidation,
				NotFound:       ErrNotFound,
				Persistence:    ErrPersistence,
			},
		},
	}

	if e.rateLimiter != nil {
		if e.config.Security.EnableLoginThrottle {
			deps.Account.CheckLoginRate = e.rateLimiter.CheckLogin
			deps.Account.IncrementLoginRate = e.rateLimiter.IncrementLogin
			deps.Account.ResetLoginRate = e.rateLimiter.ResetLogin
		}
		if e.config.Security.MaxRegistrationsPerIP > 0 {
			deps.Account.EnforceRegistrationRate = e.rateLimiter.EnforceRegistration
		}
	}

	return deps
}
