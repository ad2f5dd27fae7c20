package goTodo

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goTodo/account"
	internalflows "github.com/MrEthical07/goTodo/internal/flows"
)

// Register creates an account and returns it together with its first session
// token. The token is already listed, so it authenticates immediately.
//
// Errors: [ErrValidation], [ErrDuplicateEmail], [ErrRegistrationRateLimited],
// [ErrPersistence].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*Account, string, error) {
	if e == nil {
		return nil, "", ErrEngineNotReady
	}

	res, err := internalflows.RunRegister(ctx, internalflows.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	}, e.flows.Account)
	if err != nil {
		return nil, "", err
	}
	return toAccount(res.Account), res.Token, nil
}

// Login verifies credentials and lists a new session token. Tokens from
// earlier logins remain valid. Unknown email and wrong password both return
// [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, password string) (*Account, string, error) {
	if e == nil {
		return nil, "", ErrEngineNotReady
	}

	res, err := internalflows.RunLogin(ctx, email, password, e.flows.Account)
	if err != nil {
		return nil, "", err
	}
	return toAccount(res.Account), res.Token, nil
}

// CurrentAccount returns the public view of an authenticated account.
func (e *Engine) CurrentAccount(ctx context.Context, accountID string) (*Account, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		e.metricInc(MetricStoreFailure)
		e.logger.Warn("goTodo: account lookup failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return toAccount(rec), nil
}

// Logout removes one occurrence of token from the account's token list. It
// succeeds when the token was already removed.
func (e *Engine) Logout(ctx context.Context, accountID, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := internalflows.RunLogout(ctx, accountID, token, e.flows.Logout); err != nil {
		e.metricInc(MetricStoreFailure)
		e.logger.Warn("goTodo: token removal failed", "account_id", accountID, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, accountID, nil, nil)
	return nil
}

func toAccount(rec *account.Record) *Account {
	return &Account{
		ID:    rec.ID,
		Email: rec.Email,
	}
}
