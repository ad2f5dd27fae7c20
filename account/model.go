package account

import (
	"errors"
	"strings"
	"time"
)

// Record is a persisted account.
type Record struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TokenEntry is one element of an account's token list. Duplicates are
// allowed; logout removes a single matching entry.
type TokenEntry struct {
	Value   string
	Purpose string
}

func (t TokenEntry) encode() string {
	return t.Purpose + ":" + t.Value
}

func decodeTokenEntry(raw string) (TokenEntry, error) {
	purpose, value, ok := strings.Cut(raw, ":")
	if !ok || purpose == "" {
		return TokenEntry{}, errors.New("malformed token entry")
	}
	return TokenEntry{Purpose: purpose, Value: value}, nil
}

// NormalizeEmail returns the index form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
