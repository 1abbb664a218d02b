package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by a Storage when no cart exists under the given
// identity. The store treats it as an empty cart.
var ErrNotFound = errors.New("cart not found")

// Storage is the external cart-durability contract: get/set a serialized line
// list keyed by a stable cart identity.
type Storage interface {
	Load(ctx context.Context, cartID string) ([]Line, error)
	Save(ctx context.Context, cartID string, lines []Line) error
	Delete(ctx context.Context, cartID string) error
}

type redisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage builds a Storage backed by redis. A zero ttl keeps carts
// forever; guest carts should carry a ttl so abandoned ones expire.
func NewRedisStorage(client *redis.Client, ttl time.Duration) Storage {
	return &redisStorage{client: client, ttl: ttl}
}

func (s *redisStorage) key(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

func (s *redisStorage) Load(ctx context.Context, cartID string) ([]Line, error) {
	raw, err := s.client.Get(ctx, s.key(cartID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("storage: corrupt cart payload: %w", err)
	}
	return lines, nil
}

func (s *redisStorage) Save(ctx context.Context, cartID string, lines []Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("storage: failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(cartID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage: failed to save cart: %w", err)
	}
	return nil
}

func (s *redisStorage) Delete(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, s.key(cartID)).Err(); err != nil {
		return fmt.Errorf("storage: failed to delete cart: %w", err)
	}
	return nil
}

type memoryStorage struct {
	backend *gocache.Cache
}

// NewMemoryStorage builds a process-local Storage. It backs tests and the
// in-memory-only degradation when redis is unreachable.
func NewMemoryStorage(ttl time.Duration) Storage {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &memoryStorage{backend: gocache.New(ttl, 10*time.Minute)}
}

func (s *memoryStorage) Load(_ context.Context, cartID string) ([]Line, error) {
	raw, ok := s.backend.Get(cartID)
	if !ok {
		return nil, ErrNotFound
	}
	payload, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("storage: corrupt cart payload for %s", cartID)
	}

	var lines []Line
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, fmt.Errorf("storage: corrupt cart payload: %w", err)
	}
	return lines, nil
}

func (s *memoryStorage) Save(_ context.Context, cartID string, lines []Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("storage: failed to encode cart: %w", err)
	}
	s.backend.SetDefault(cartID, payload)
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, cartID string) error {
	s.backend.Delete(cartID)
	return nil
}
