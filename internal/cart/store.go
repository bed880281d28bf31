package cart

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store persists cart contents between requests, keyed by the owning
// user and the booking the items are staged against.
type Store interface {
	// Items returns one booking's staged quantities.  An empty map,
	// never nil, when the cart is empty.
	Items(ctx context.Context, userID, bookingID uint64) (Items, error)
	// Set replaces one booking's staged quantities.  An empty map
	// removes the booking's entry entirely.
	Set(ctx context.Context, userID, bookingID uint64, items Items) error
	// Clear removes one booking's entry.
	Clear(ctx context.Context, userID, bookingID uint64) error
}

// MemoryStore is an in-process Store, used in tests and as a fallback
// when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]Items
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Items)}
}

func memKey(userID, bookingID uint64) string {
	return strconv.FormatUint(userID, 10) + ":" + strconv.FormatUint(bookingID, 10)
}

// Items implements Store.
func (s *MemoryStore) Items(ctx context.Context, userID, bookingID uint64) (Items, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make(Items)
	for k, q := range s.carts[memKey(userID, bookingID)] {
		items[k] = q
	}
	return items, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, userID, bookingID uint64, items Items) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) == 0 {
		delete(s.carts, memKey(userID, bookingID))
		return nil
	}
	copied := make(Items, len(items))
	for k, q := range items {
		copied[k] = q
	}
	s.carts[memKey(userID, bookingID)] = copied
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context, userID, bookingID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, memKey(userID, bookingID))
	return nil
}

// RedisStore keeps each booking's cart in a Redis hash under
// cart:<userID>:<bookingID>, field = item key, value = quantity.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(userID, bookingID uint64) string {
	return fmt.Sprintf("cart:%d:%d", userID, bookingID)
}

// Items implements Store.
func (s *RedisStore) Items(ctx context.Context, userID, bookingID uint64) (Items, error) {
	fields, err := s.rdb.HGetAll(ctx, redisKey(userID, bookingID)).Result()
	if err != nil {
		return nil, err
	}
	items := make(Items, len(fields))
	for k, v := range fields {
		q, err := strconv.ParseUint(v, 10, 32)
		if err != nil || q == 0 {
			continue
		}
		items[ItemKey(k)] = uint32(q)
	}
	return items, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, userID, bookingID uint64, items Items) error {
	key := redisKey(userID, bookingID)
	if len(items) == 0 {
		return s.rdb.Del(ctx, key).Err()
	}
	// Rewrite the whole hash so removed entries do not linger.
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	fields := make(map[string]interface{}, len(items))
	for k, q := range items {
		fields[string(k)] = strconv.FormatUint(uint64(q), 10)
	}
	pipe.HSet(ctx, key, fields)
	_, err := pipe.Exec(ctx)
	return err
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, userID, bookingID uint64) error {
	return s.rdb.Del(ctx, redisKey(userID, bookingID)).Err()
}
