package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goTodo/account"
	"github.com/MrEthical07/goTodo/jwt"
)

// AuthenticateFailureKind classifies authentication failures for root-level mapping.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureMissingToken
	AuthenticateFailureInvalidToken
	AuthenticateFailureRevoked
	AuthenticateFailureStore
)

// String returns the audit reason for k.
func (k AuthenticateFailureKind) String() string {
	switch k {
	case AuthenticateFailureNone:
		return "none"
	case AuthenticateFailureMissingToken:
		return "missing_token"
	case AuthenticateFailureInvalidToken:
		return "invalid_token"
	case AuthenticateFailureRevoked:
		return "revoked"
	case AuthenticateFailureStore:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// AuthenticateResult returns either the caller's account id or a classified failure.
type AuthenticateResult struct {
	Failure   AuthenticateFailureKind
	Err       error
	AccountID string
}

// AuthenticateAccountStore resolves an account through a listed token.
type AuthenticateAccountStore interface {
	FindByToken(ctx context.Context, id string, entry account.TokenEntry) (*account.Record, error)
}

// AuthenticateDeps captures the two trust layers: signature and token list.
type AuthenticateDeps struct {
	ParseToken    func(string) (*jwt.SessionClaims, error)
	Purpose       string
	Accounts      AuthenticateAccountStore
	StoreNotFound error
}

// RunAuthenticate accepts tokenStr only when it verifies and is still listed
// on the account it names.
func RunAuthenticate(ctx context.Context, tokenStr string, deps AuthenticateDeps) AuthenticateResult {
	if tokenStr == "" {
		return AuthenticateResult{Failure: AuthenticateFailureMissingToken}
	}

	claims, err := deps.ParseToken(tokenStr)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureInvalidToken, Err: err}
	}

	purpose := deps.Purpose
	if purpose == "" {
		purpose = jwt.PurposeAuth
	}

	rec, err := deps.Accounts.FindByToken(ctx, claims.AccountID, account.TokenEntry{
		Value:   tokenStr,
		Purpose: purpose,
	})
	if err != nil {
		if deps.StoreNotFound != nil && errors.Is(err, deps.StoreNotFound) {
			return AuthenticateResult{Failure: AuthenticateFailureRevoked, Err: err}
		}
		return AuthenticateResult{Failure: AuthenticateFailureStore, Err: err}
	}

	return AuthenticateResult{AccountID: rec.ID}
}
