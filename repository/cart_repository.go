package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Sentinel errors for cart lookups.
var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
)

// CartStore is the consistency boundary around one user's cart. Every
// mutation must be atomic per (user, product) line so that concurrent
// requests for the same user cannot lose updates; read-modify-write
// over the whole cart is not allowed.
type CartStore interface {
	// AddItem increments the line for productID by 1, creating the cart
	// and the line as needed, and returns the new quantity.
	AddItem(ctx context.Context, userID, productID string) (int64, error)
	// Get returns productID -> quantity. A missing cart yields an empty
	// map, not an error.
	Get(ctx context.Context, userID string) (map[string]int64, error)
	// SetQuantity overwrites an existing line. ErrCartNotFound /
	// ErrItemNotFound when the cart or the line is absent; absent lines
	// are never created.
	SetQuantity(ctx context.Context, userID, productID string, quantity int64) error
	// RemoveItem deletes the line if present. ErrCartNotFound when the
	// user has no cart; removing an absent line is a silent no-op.
	RemoveItem(ctx context.Context, userID, productID string) error
	// Clear empties the cart. Idempotent.
	Clear(ctx context.Context, userID string) error
}

// RedisCartStore keeps each cart in one hash keyed by user id, one
// field per product. A single key per user makes "at most one live
// cart per user" structural, and HINCRBY gives the per-line atomicity
// the contract requires.
type RedisCartStore struct {
	client *redis.Client
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func (s *RedisCartStore) key(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (s *RedisCartStore) AddItem(ctx context.Context, userID, productID string) (int64, error) {
	return s.client.HIncrBy(ctx, s.key(userID), productID, 1).Result()
}

func (s *RedisCartStore) Get(ctx context.Context, userID string) (map[string]int64, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, err
	}

	items := make(map[string]int64, len(fields))
	for productID, raw := range fields {
		qty, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity for product %s: %w", productID, err)
		}
		items[productID] = qty
	}
	return items, nil
}

// setQuantityScript overwrites a hash field only if it already exists,
// so a concurrent remove cannot be resurrected by a stale update.
// Returns -1 when the key is missing, 0 when the field is missing,
// 1 on success.
var setQuantityScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

func (s *RedisCartStore) SetQuantity(ctx context.Context, userID, productID string, quantity int64) error {
	res, err := setQuantityScript.Run(ctx, s.client, []string{s.key(userID)}, productID, quantity).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return ErrCartNotFound
	case 0:
		return ErrItemNotFound
	}
	return nil
}

func (s *RedisCartStore) RemoveItem(ctx context.Context, userID, productID string) error {
	exists, err := s.client.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrCartNotFound
	}
	// HDEL of an absent field is the required no-op.
	return s.client.HDel(ctx, s.key(userID), productID).Err()
}

func (s *RedisCartStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
