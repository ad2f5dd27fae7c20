package todo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps any transport or server failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrNotFound is returned when no task with the id is owned by the caller.
	ErrNotFound = errors.New("todo not found")
)

const updateTodoScript = `
local owner = redis.call("HGET", KEYS[1], "owner")
if not owner or owner ~= ARGV[1] then
  return false
end
redis.call("HSET", KEYS[1], "completed", ARGV[2], "completed_at", ARGV[3])
if ARGV[4] == "1" then
  redis.call("HSET", KEYS[1], "text", ARGV[5])
end
return redis.call("HGETALL", KEYS[1])
`

var updateTodoLua = redis.NewScript(updateTodoScript)

const deleteTodoScript = `
local owner = redis.call("HGET", KEYS[1], "owner")
if not owner or owner ~= ARGV[1] then
  return false
end
local snapshot = redis.call("HGETALL", KEYS[1])
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[2])
return snapshot
`

var deleteTodoLua = redis.NewScript(deleteTodoScript)

// Store persists tasks in Redis hashes with a per-owner id index.
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

func (s *Store) key(id string) string {
	return s.prefix + ":todo:" + id
}

func (s *Store) ownerKey(ownerID string) string {
	return s.prefix + ":owner:" + ownerID + ":todos"
}

// Create persists rec and indexes it under its owner.
//
//	Performance: 1 MULTI/EXEC round-trip (HSET + SADD).
func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" || rec.OwnerID == "" {
		return errors.New("todo record incomplete")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(rec.ID),
			"text", rec.Text,
			"completed", encodeBool(rec.Completed),
			"completed_at", encodeMillis(rec.CompletedAt),
			"owner", rec.OwnerID,
			"created_at", strconv.FormatInt(rec.CreatedAt, 10),
		)
		pipe.SAdd(ctx, s.ownerKey(rec.OwnerID), rec.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetByOwner returns the task only when it exists and is owned by ownerID.
func (s *Store) GetByOwner(ctx context.Context, ownerID, id string) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	rec, ok := recordFromHash(id, fields)
	if !ok || rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// ListByOwner returns every task owned by ownerID, oldest first.
//
//	Performance: 1 SMEMBERS + 1 pipelined round-trip of HGETALL.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*Record, error) {
	ids, err := s.redis.SMembers(ctx, s.ownerKey(ownerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(ids) == 0 {
		return []*Record{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	out := make([]*Record, 0, len(ids))
	for i, cmd := range cmds {
		fields, cmdErr := cmd.Result()
		if cmdErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, cmdErr)
		}
		rec, ok := recordFromHash(ids[i], fields)
		if !ok || rec.OwnerID != ownerID {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateByOwner applies ch to the task and returns the updated record. The
// owner check and the write run in one script.
func (s *Store) UpdateByOwner(ctx context.Context, ownerID, id string, ch Changes) (*Record, error) {
	hasText := "0"
	text := ""
	if ch.Text != nil {
		hasText = "1"
		text = *ch.Text
	}
	completedAt := ch.CompletedAt
	if !ch.Completed {
		completedAt = nil
	}

	reply, err := updateTodoLua.Run(
		ctx,
		s.redis,
		[]string{s.key(id)},
		ownerID,
		encodeBool(ch.Completed),
		encodeMillis(completedAt),
		hasText,
		text,
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec, ok := recordFromReply(id, reply)
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// DeleteByOwner removes the task and returns its last state.
func (s *Store) DeleteByOwner(ctx context.Context, ownerID, id string) (*Record, error) {
	reply, err := deleteTodoLua.Run(
		ctx,
		s.redis,
		[]string{s.key(id), s.ownerKey(ownerID)},
		ownerID,
		id,
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec, ok := recordFromReply(id, reply)
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}
