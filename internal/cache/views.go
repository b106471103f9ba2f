// Package cache keeps serialized catalog views in Redis.
//
// Every key embeds a generation number read from catalog:gen. Invalidation
// bumps the generation, which orphans all previous keys at once; they expire
// through their TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/datakamer/datakamer-backend/config"
	"github.com/redis/go-redis/v9"
)

const (
	genKey     = "catalog:gen" // generation counter
	keyPrefix  = "catalog:v"   // catalog:v{gen}:{kind}[:{id}]
	defaultTTL = 5 * time.Minute
)

// Views is a generation-keyed view cache. A nil *Views is valid and caches
// nothing.
type Views struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Views{client: client, ttl: ttl}
}

// Connect dials Redis when an address is configured. It returns nil, nil when
// caching is disabled.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*Views, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(client, cfg.TTL), nil
}

func (v *Views) PingContext(ctx context.Context) error {
	if v == nil {
		return errors.New("cache disabled")
	}
	return v.client.Ping(ctx).Err()
}

func (v *Views) Close() error {
	if v == nil {
		return nil
	}
	return v.client.Close()
}

// Lookup resolves the key for kind/id under the current generation and decodes
// any cached value into dst. id 0 addresses the list view. A value loaded after
// a miss must be stored under the returned key, never a freshly resolved one.
// Misses and cache errors both report false; the key is empty when the
// generation could not be read.
func (v *Views) Lookup(ctx context.Context, kind string, id int64, dst any) (string, bool) {
	if v == nil {
		return "", false
	}
	key, err := v.key(ctx, kind, id)
	if err != nil {
		log.Printf("[warn] cache key failed kind=%s err=%v", kind, err)
		return "", false
	}
	data, err := v.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, false
	}
	if err != nil {
		log.Printf("[warn] cache get failed key=%s err=%v", key, err)
		return key, false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("[warn] cache decode failed key=%s err=%v", key, err)
		return key, false
	}
	return key, true
}

// Store writes value under a key returned by Lookup. Failures are logged only.
func (v *Views) Store(ctx context.Context, key string, value any) {
	if v == nil || key == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[warn] cache encode failed key=%s err=%v", key, err)
		return
	}
	if err := v.client.Set(ctx, key, data, v.ttl).Err(); err != nil {
		log.Printf("[warn] cache set failed key=%s err=%v", key, err)
	}
}

// Invalidate moves every reader to a fresh generation.
func (v *Views) Invalidate(ctx context.Context) error {
	if v == nil {
		return nil
	}
	if err := v.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

func (v *Views) generation(ctx context.Context) (int64, error) {
	s, err := v.client.Get(ctx, genKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func (v *Views) key(ctx context.Context, kind string, id int64) (string, error) {
	gen, err := v.generation(ctx)
	if err != nil {
		return "", err
	}
	if id == 0 {
		return fmt.Sprintf("%s%d:%s", keyPrefix, gen, kind), nil
	}
	return fmt.Sprintf("%s%d:%s:%d", keyPrefix, gen, kind, id), nil
}
