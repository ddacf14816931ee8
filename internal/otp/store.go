package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Entry is a pending code. Only the hash of the code is kept.
type Entry struct {
	Hash         string
	AttemptsLeft int
	ExpiresAt    time.Time
}

// Store keeps one pending code per email.
type Store interface {
	Put(ctx context.Context, email string, e Entry) error
	Get(ctx context.Context, email string) (Entry, bool, error)
	// Reserve atomically spends one attempt and returns the entry with the
	// attempts left after that spend. ok is false when no code is pending or
	// every attempt was already spent; the entry is then discarded.
	Reserve(ctx context.Context, email string) (Entry, bool, error)
	Delete(ctx context.Context, email string) error
}

func storeKey(email string) string { return "otp:code:" + email }

// reserveScript decrements the attempt counter and reads the entry in one step,
// so concurrent guesses never share an attempt.
var reserveScript = redis.NewScript(`
local hash = redis.call('HGET', KEYS[1], 'hash')
if not hash then
	return false
end
local left = redis.call('HINCRBY', KEYS[1], 'attempts', -1)
if left < 0 then
	redis.call('DEL', KEYS[1])
	return false
end
return {left, hash, redis.call('HGET', KEYS[1], 'expires_at')}
`)

// RedisStore shares pending codes across API instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed code store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("otp: redis client required")
	}
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, email string, e Entry) error {
	ttl := time.Until(e.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, email)
	}
	key := storeKey(email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"hash", e.Hash,
			"attempts", e.AttemptsLeft,
			"expires_at", e.ExpiresAt.UnixNano(),
		)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("otp: redis put: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, storeKey(email)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("otp: redis get: %w", err)
	}
	if len(fields) == 0 {
		return Entry{}, false, nil
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return Entry{}, false, fmt.Errorf("otp: decode attempts: %w", err)
	}
	expires, err := parseUnixNano(fields["expires_at"])
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Hash: fields["hash"], AttemptsLeft: attempts, ExpiresAt: expires}, true, nil
}

func (s *RedisStore) Reserve(ctx context.Context, email string) (Entry, bool, error) {
	res, err := reserveScript.Run(ctx, s.client, []string{storeKey(email)}).Slice()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("otp: redis reserve: %w", err)
	}
	if len(res) != 3 {
		return Entry{}, false, fmt.Errorf("otp: redis reserve: unexpected reply %v", res)
	}
	left, _ := res[0].(int64)
	hash, _ := res[1].(string)
	raw, _ := res[2].(string)
	expires, err := parseUnixNano(raw)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Hash: hash, AttemptsLeft: int(left), ExpiresAt: expires}, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, storeKey(email)).Err(); err != nil {
		return fmt.Errorf("otp: redis del: %w", err)
	}
	return nil
}

func parseUnixNano(raw string) (time.Time, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("otp: decode expiry: %w", err)
	}
	return time.Unix(0, n), nil
}

// MemoryStore keeps codes in process memory; suitable for a single instance.
type MemoryStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemoryStore creates an in-process code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (s *MemoryStore) Put(ctx context.Context, email string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ttl := time.Until(e.ExpiresAt)
	if ttl <= 0 {
		s.c.Delete(storeKey(email))
		return nil
	}
	s.c.Set(storeKey(email), e, ttl)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, email string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.get(email)
	return e, ok, nil
}

func (s *MemoryStore) Reserve(ctx context.Context, email string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(email)
	e, ok := s.get(email)
	if !ok {
		return Entry{}, false, nil
	}
	e.AttemptsLeft--
	if e.AttemptsLeft < 0 {
		s.c.Delete(key)
		return Entry{}, false, nil
	}
	ttl := time.Until(e.ExpiresAt)
	if ttl <= 0 {
		s.c.Delete(key)
		return Entry{}, false, nil
	}
	s.c.Set(key, e, ttl)
	return e, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Delete(storeKey(email))
	return nil
}

func (s *MemoryStore) get(email string) (Entry, bool) {
	v, ok := s.c.Get(storeKey(email))
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}
