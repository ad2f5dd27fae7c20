package goTodo

import (
	"context"

	"github.com/MrEthical07/goTodo/account"
	"github.com/MrEthical07/goTodo/todo"
)

// AccountStore persists accounts and their token lists. Implementations must
// return [account.ErrNotFound] for missing accounts or unlisted tokens and
// [account.ErrDuplicateEmail] when an email is already taken. The default
// implementation is [account.Store].
type AccountStore interface {
	Create(ctx context.Context, rec account.Record) error
	FindByID(ctx context.Context, id string) (*account.Record, error)
	FindByEmail(ctx context.Context, email string) (*account.Record, error)
	FindByToken(ctx context.Context, id string, entry account.TokenEntry) (*account.Record, error)
	AppendToken(ctx context.Context, id string, entry account.TokenEntry) error
	RemoveToken(ctx context.Context, id string, entry account.TokenEntry) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// TodoStore persists tasks. Every read and write is filtered by owner, and
// [todo.ErrNotFound] covers both missing and foreign tasks. The default
// implementation is [todo.Store].
type TodoStore interface {
	Create(ctx context.Context, rec *todo.Record) error
	ListByOwner(ctx context.Context, ownerID string) ([]*todo.Record, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*todo.Record, error)
	UpdateByOwner(ctx context.Context, ownerID, id string, ch todo.Changes) (*todo.Record, error)
	DeleteByOwner(ctx context.Context, ownerID, id string) (*todo.Record, error)
}

var (
	_ AccountStore = (*account.Store)(nil)
	_ TodoStore    = (*todo.Store)(nil)
)
