// Package settings holds the store-wide business configuration the admin
// console edits: a versioned struct with named fields, not an open map, since
// humans read and write this surface.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// CurrentVersion is bumped whenever the StoreSettings shape changes.
const CurrentVersion = 1

// ErrUnknownVersion means a newer process wrote the settings; this build
// refuses to reinterpret them.
var ErrUnknownVersion = errors.New("unknown settings version")

// StoreSettings is the store-wide configuration.
type StoreSettings struct {
	Version              int    `json:"version"`
	Currency             string `json:"currency"`
	PickupAddress        string `json:"pickup_address"`
	PayOnPickupEnabled   bool   `json:"pay_on_pickup_enabled"`
	GuestCheckoutEnabled bool   `json:"guest_checkout_enabled"`
	CartTTLHours         int    `json:"cart_ttl_hours"`
}

// Defaults are used until an admin saves settings for the first time.
func Defaults() StoreSettings {
	return StoreSettings{
		Version:              CurrentVersion,
		Currency:             "PEN",
		PayOnPickupEnabled:   true,
		GuestCheckoutEnabled: true,
		CartTTLHours:         24 * 14,
	}
}

// CartTTL is the retention for persisted guest carts.
func (s StoreSettings) CartTTL() time.Duration {
	return time.Duration(s.CartTTLHours) * time.Hour
}

// Repository persists the settings in the same key-value store as carts.
type Repository interface {
	Load(ctx context.Context) (StoreSettings, error)
	Save(ctx context.Context, s StoreSettings) error
}

const key = "settings:store"

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

func (r *redisRepository) Load(ctx context.Context) (StoreSettings, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return Defaults(), nil
	}
	if err != nil {
		return StoreSettings{}, fmt.Errorf("settings: failed to load: %w", err)
	}
	return decode([]byte(raw))
}

func (r *redisRepository) Save(ctx context.Context, s StoreSettings) error {
	payload, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("settings: failed to save: %w", err)
	}
	return nil
}

type memoryRepository struct {
	backend *gocache.Cache
}

// NewMemoryRepository is the process-local fallback used in tests and when
// redis is not configured.
func NewMemoryRepository() Repository {
	return &memoryRepository{backend: gocache.New(gocache.NoExpiration, gocache.NoExpiration)}
}

func (r *memoryRepository) Load(_ context.Context) (StoreSettings, error) {
	raw, ok := r.backend.Get(key)
	if !ok {
		return Defaults(), nil
	}
	return decode(raw.([]byte))
}

func (r *memoryRepository) Save(_ context.Context, s StoreSettings) error {
	payload, err := encode(s)
	if err != nil {
		return err
	}
	r.backend.SetDefault(key, payload)
	return nil
}

func encode(s StoreSettings) ([]byte, error) {
	s.Version = CurrentVersion
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("settings: failed to encode: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (StoreSettings, error) {
	var s StoreSettings
	if err := json.Unmarshal(payload, &s); err != nil {
		return StoreSettings{}, fmt.Errorf("settings: corrupt payload: %w", err)
	}
	if s.Version > CurrentVersion {
		return StoreSettings{}, fmt.Errorf("%w: %d", ErrUnknownVersion, s.Version)
	}
	return s, nil
}
