package flows

import (
	"context"

	"github.com/MrEthical07/goTodo/account"
)

// LogoutTokenStore removes a single token entry.
type LogoutTokenStore interface {
	RemoveToken(ctx context.Context, id string, entry account.TokenEntry) error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	TokenPurpose string
	Accounts     LogoutTokenStore
}

// RunLogout removes one occurrence of tokenStr from the account's token list.
// A token that is no longer listed is not an error.
func RunLogout(ctx context.Context, accountID, tokenStr string, deps LogoutDeps) error {
	return deps.Accounts.RemoveToken(ctx, accountID, account.TokenEntry{
		Value:   tokenStr,
		Purpose: deps.TokenPurpose,
	})
}
