package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshTokenUnknown means the refresh token was never issued, already
// used, or has expired.
var ErrRefreshTokenUnknown = errors.New("refresh token not found")

// RefreshStore tracks issued refresh tokens so each can be used once.
type RefreshStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the owner of token and removes it.
	Consume(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type RedisRefreshStore struct {
	rdb *redis.Client
}

func NewRedisRefreshStore(rdb *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{rdb: rdb}
}

func refreshKey(token string) string {
	return fmt.Sprintf("refresh_token:%s", token)
}

func (s *RedisRefreshStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKey(token), userID, ttl).Err()
}

func (s *RedisRefreshStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, refreshKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRefreshTokenUnknown
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *RedisRefreshStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, refreshKey(token)).Err()
}

type memoryEntry struct {
	userID  string
	expires time.Time
}

// MemoryRefreshStore keeps refresh tokens in process memory. It serves
// tests and single-instance development without Redis.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]memoryEntry
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{tokens: make(map[string]memoryEntry)}
}

func (s *MemoryRefreshStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryEntry{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Consume(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	delete(s.tokens, token)
	if !ok || time.Now().After(entry.expires) {
		return "", ErrRefreshTokenUnknown
	}
	return entry.userID, nil
}

func (s *MemoryRefreshStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *MemoryRefreshStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
