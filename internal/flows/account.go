package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goTodo/account"
)

// AccountMetrics carries metric IDs needed by register/login flows.
type AccountMetrics struct {
	RegisterSuccess   int
	RegisterDuplicate int
	RegisterRejected  int
	LoginSuccess      int
	LoginFailure      int
	LoginRateLimited  int
	StoreFailure      int
}

// AccountEvents carries audit event names used by register/login flows.
type AccountEvents struct {
	Registered            string
	RegistrationDuplicate string
	LoginSuccess          string
	LoginFailure          string
	LoginRateLimited      string
}

// AccountErrors carries host-level sentinel errors used by register/login flows.
type AccountErrors struct {
	EngineNotReady          error
	Validation              error
	DuplicateEmail          error
	InvalidCredentials      error
	Persistence             error
	LoginRateLimited        error
	RegistrationRateLimited error
}

// AccountStore is the account persistence used by register and login.
type AccountStore interface {
	Create(ctx context.Context, rec account.Record) error
	FindByEmail(ctx context.Context, email string) (*account.Record, error)
	AppendToken(ctx context.Context, id string, entry account.TokenEntry) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// AccountDeps captures register+login dependencies.
type AccountDeps struct {
	ClientIPFromContext func(context.Context) string
	Now                 func() time.Time
	NewID               func() string
	ValidateEmail       func(string) error

	HashPassword         func(string) (string, error)
	VerifyPassword       func(string, string) (bool, error)
	VerifyDummy          func(string)
	PasswordNeedsUpgrade func(string) (bool, error)

	IssueToken   func(string) (string, error)
	TokenPurpose string
	Accounts     AccountStore

	CheckLoginRate          func(context.Context, string, string) error
	IncrementLoginRate      func(context.Context, string, string) error
	ResetLoginRate          func(context.Context, string, string) error
	EnforceRegistrationRate func(context.Context, string) error
	RateLimited             error

	StoreNotFound  error
	StoreDuplicate error

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics AccountMetrics
	Events  AccountEvents
	Errors  AccountErrors
}

// RegisterRequest is the flow-local registration input.
type RegisterRequest struct {
	Email    string
	Password string
}

// SessionResult is the account plus the freshly listed token.
type SessionResult struct {
	Account *account.Record
	Token   string
}

func normalizeAccountDeps(deps *AccountDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.VerifyDummy == nil {
		deps.VerifyDummy = func(string) {}
	}
}

// RunRegister validates req, creates the account, and lists its first token.
func RunRegister(ctx context.Context, req RegisterRequest, deps AccountDeps) (*SessionResult, error) {
	normalizeAccountDeps(&deps)

	if deps.Accounts == nil || deps.HashPassword == nil || deps.IssueToken == nil || deps.NewID == nil {
		return nil, deps.Errors.EngineNotReady
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, fmt.Errorf("%w: email is required", deps.Errors.Validation)
	}
	if deps.ValidateEmail != nil {
		if err := deps.ValidateEmail(email); err != nil {
			deps.MetricInc(deps.Metrics.RegisterRejected)
			return nil, fmt.Errorf("%w: %v", deps.Errors.Validation, err)
		}
	}
	if req.Password == "" {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, fmt.Errorf("%w: password is required", deps.Errors.Validation)
	}

	if deps.EnforceRegistrationRate != nil {
		if err := deps.EnforceRegistrationRate(ctx, deps.ClientIPFromContext(ctx)); err != nil {
			if deps.RateLimited != nil && errors.Is(err, deps.RateLimited) {
				deps.MetricInc(deps.Metrics.RegisterRejected)
				return nil, deps.Errors.RegistrationRateLimited
			}
			deps.MetricInc(deps.Metrics.StoreFailure)
			return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
		}
	}

	passwordHash, err := deps.HashPassword(req.Password)
	if err != nil {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, fmt.Errorf("%w: %v", deps.Errors.Validation, err)
	}

	rec := account.Record{
		ID:           deps.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    deps.Now(),
	}
	if err := deps.Accounts.Create(ctx, rec); err != nil {
		if deps.StoreDuplicate != nil && errors.Is(err, deps.StoreDuplicate) {
			deps.MetricInc(deps.Metrics.RegisterDuplicate)
			deps.EmitAudit(ctx, deps.Events.RegistrationDuplicate, false, "", deps.Errors.DuplicateEmail, func() map[string]string {
				return map[string]string{
					"email": account.NormalizeEmail(email),
				}
			})
			return nil, deps.Errors.DuplicateEmail
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		deps.Warn("goTodo: account create failed", "error", err)
		return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	token, err := listNewToken(ctx, rec.ID, deps)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.EmitAudit(ctx, deps.Events.Registered, true, rec.ID, nil, nil)

	return &SessionResult{Account: &rec, Token: token}, nil
}

// listNewToken signs a token for accountID and appends it to the account's list.
func listNewToken(ctx context.Context, accountID string, deps AccountDeps) (string, error) {
	token, err := deps.IssueToken(accountID)
	if err != nil {
		deps.Warn("goTodo: token issue failed", "account_id", accountID, "error", err)
		return "", fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	if err := deps.Accounts.AppendToken(ctx, accountID, account.TokenEntry{
		Value:   token,
		Purpose: deps.TokenPurpose,
	}); err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		deps.Warn("goTodo: token append failed", "account_id", accountID, "error", err)
		return "", fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	return token, nil
}
