package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goTodo/account"
)

// RunLogin verifies email and password and lists a new token on success.
// Earlier tokens of the account stay valid. Unknown email and wrong password
// produce the same error.
func RunLogin(ctx context.Context, email, password string, deps AccountDeps) (*SessionResult, error) {
	normalizeAccountDeps(&deps)

	if deps.Accounts == nil || deps.VerifyPassword == nil || deps.IssueToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	email = strings.TrimSpace(email)
	ip := deps.ClientIPFromContext(ctx)

	if email == "" || password == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.InvalidCredentials
	}

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, email, ip); err != nil {
			if deps.RateLimited != nil && errors.Is(err, deps.RateLimited) {
				deps.MetricInc(deps.Metrics.LoginRateLimited)
				deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, "", deps.Errors.LoginRateLimited, func() map[string]string {
					return map[string]string{
						"email": account.NormalizeEmail(email),
					}
				})
				return nil, deps.Errors.LoginRateLimited
			}
			deps.MetricInc(deps.Metrics.StoreFailure)
			return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
		}
	}

	fail := func(reason string) (*SessionResult, error) {
		if deps.IncrementLoginRate != nil {
			if err := deps.IncrementLoginRate(ctx, email, ip); err != nil && !errors.Is(err, deps.RateLimited) {
				deps.Warn("goTodo: login limiter increment failed", "error", err)
			}
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{
				"email":  account.NormalizeEmail(email),
				"reason": reason,
			}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	rec, err := deps.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if deps.StoreNotFound != nil && errors.Is(err, deps.StoreNotFound) {
			deps.VerifyDummy(password)
			return fail("unknown_email")
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		deps.Warn("goTodo: account lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	ok, err := deps.VerifyPassword(password, rec.PasswordHash)
	if err != nil || !ok {
		return fail("password_mismatch")
	}

	if deps.PasswordNeedsUpgrade != nil && deps.HashPassword != nil {
		rehashPassword(ctx, rec, password, deps)
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email, ip); err != nil {
			deps.Warn("goTodo: login limiter reset failed", "error", err)
		}
	}

	token, err := listNewToken(ctx, rec.ID, deps)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, rec.ID, nil, nil)

	return &SessionResult{Account: rec, Token: token}, nil
}

// rehashPassword replaces a hash produced with weaker parameters than the
// current ones. Failures are logged and never fail the login.
func rehashPassword(ctx context.Context, rec *account.Record, password string, deps AccountDeps) {
	upgrade, err := deps.PasswordNeedsUpgrade(rec.PasswordHash)
	if err != nil || !upgrade {
		return
	}
	upgraded, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn("goTodo: password rehash failed", "error", err)
		return
	}
	if err := deps.Accounts.UpdatePasswordHash(ctx, rec.ID, upgraded); err != nil {
		deps.Warn("goTodo: password rehash update failed", "error", err)
		return
	}
	rec.PasswordHash = upgraded
}
