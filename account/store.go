package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps any transport or server failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrNotFound is returned when no account (or no matching token) exists.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned by Create when the email is already indexed.
	ErrDuplicateEmail = errors.New("email already registered")
)

const createAccountScript = `
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[2], "email", ARGV[2], "password_hash", ARGV[3], "created_at", ARGV[4])
return 1
`

var createAccountLua = redis.NewScript(createAccountScript)

const updatePasswordScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`

var updatePasswordLua = redis.NewScript(updatePasswordScript)

// Store persists accounts and their session token lists in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] using prefix as the key namespace.
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "todo"
	}
	return &Store{redis: rdb, prefix: prefix}
}

func (s *Store) accountKey(id string) string {
	return s.prefix + ":acct:" + id
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":acct:email:" + NormalizeEmail(email)
}

func (s *Store) tokensKey(id string) string {
	return s.prefix + ":acct:" + id + ":tokens"
}

// Create inserts rec and claims its email in the index in one script.
//
//	Performance: 1 Redis round-trip (EVALSHA).
func (s *Store) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" || rec.Email == "" || rec.PasswordHash == "" {
		return errors.New("account record incomplete")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := createAccountLua.Run(
		ctx,
		s.redis,
		[]string{s.emailKey(rec.Email), s.accountKey(rec.ID)},
		rec.ID,
		rec.Email,
		rec.PasswordHash,
		strconv.FormatInt(created.UnixMilli(), 10),
	).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

// FindByID loads the account with the given id.
func (s *Store) FindByID(ctx context.Context, id string) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.accountKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return recordFromHash(id, fields)
}

// FindByEmail resolves the email index (case-insensitive) and loads the account.
//
//	Performance: 2 Redis commands (GET + HGETALL).
func (s *Store) FindByEmail(ctx context.Context, email string) (*Record, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.FindByID(ctx, id)
}

// FindByToken loads the account only if entry is present on its token list.
// A revoked token or an unknown account yields ErrNotFound.
//
//	Performance: 1 pipelined round-trip (HGETALL + LPOS).
func (s *Store) FindByToken(ctx context.Context, id string, entry TokenEntry) (*Record, error) {
	pipe := s.redis.Pipeline()
	hashCmd := pipe.HGetAll(ctx, s.accountKey(id))
	posCmd := pipe.LPos(ctx, s.tokensKey(id), entry.encode(), redis.LPosArgs{})

	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if _, err := posCmd.Result(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	fields, err := hashCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return recordFromHash(id, fields)
}

// AppendToken pushes entry onto the account's token list.
func (s *Store) AppendToken(ctx context.Context, id string, entry TokenEntry) error {
	if err := s.redis.RPush(ctx, s.tokensKey(id), entry.encode()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RemoveToken removes exactly one occurrence of entry. Removing an entry
// that is not present is not an error.
func (s *Store) RemoveToken(ctx context.Context, id string, entry TokenEntry) error {
	if err := s.redis.LRem(ctx, s.tokensKey(id), 1, entry.encode()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// UpdatePasswordHash replaces the stored hash of an existing account.
//
//	Performance: 1 Redis round-trip (EVALSHA).
func (s *Store) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if passwordHash == "" {
		return errors.New("password hash empty")
	}
	res, err := updatePasswordLua.Run(ctx, s.redis, []string{s.accountKey(id)}, passwordHash).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res == 0 {
		return ErrNotFound
	}
	return nil
}

// Tokens returns the account's token list in insertion order. The load-test
// command reads it to report how many sessions each account holds.
func (s *Store) Tokens(ctx context.Context, id string) ([]TokenEntry, error) {
	raw, err := s.redis.LRange(ctx, s.tokensKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	out := make([]TokenEntry, 0, len(raw))
	for _, r := range raw {
		entry, err := decodeTokenEntry(r)
		if err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func recordFromHash(id string, fields map[string]string) (*Record, error) {
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := &Record{
		ID:           id,
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
	}
	if ms, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		rec.CreatedAt = time.UnixMilli(ms)
	}
	return rec, nil
}
