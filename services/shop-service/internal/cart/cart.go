// Package cart keeps per-user shopping carts in Redis. A cart is a hash of
// product id to quantity; it is working state, not an order, and expires if
// untouched.
package cart

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 7 * 24 * time.Hour

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return "cart:" + userID
}

// Items returns product id to quantity. Corrupt fields are dropped rather
// than failing the whole cart.
func (s *Store) Items(ctx context.Context, userID string) (map[string]int, error) {
	raw, err := s.rdb.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, err
	}
	items := make(map[string]int, len(raw))
	for productID, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil || qty <= 0 {
			continue
		}
		items[productID] = qty
	}
	return items, nil
}

// SetQuantity sets the absolute quantity for a product. Zero or negative
// removes the line. Every write refreshes the cart's TTL.
func (s *Store) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	k := key(userID)
	if qty <= 0 {
		return s.rdb.HDel(ctx, k, productID).Err()
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, productID, qty)
	pipe.Expire(ctx, k, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	return s.rdb.HDel(ctx, key(userID), productID).Err()
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

// ReadyCheck pings Redis for the service readiness probe.
func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
