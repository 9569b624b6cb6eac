package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second

	backupKeyPrefix = "site-builder-"
)

var (
	ErrCacheMiss = errors.New("key not found")
	ErrDisabled  = errors.New("cache disabled")
)

type Cache struct {
	client  *redis.Client
	enabled bool
}

// NewCache connects to Redis. addr may be a host:port pair or a redis:// URL.
func NewCache(addr string, enable bool) (*Cache, error) {
	if !enable {
		return &Cache{enabled: false}, nil
	}

	options := &redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if parsed, err := redis.ParseURL(addr); err == nil {
		parsed.PoolSize = options.PoolSize
		parsed.MinIdleConns = options.MinIdleConns
		parsed.DialTimeout = options.DialTimeout
		parsed.ReadTimeout = options.ReadTimeout
		parsed.WriteTimeout = options.WriteTimeout
		options = parsed
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache talks to Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// operationContext bounds a Redis call by the caller's context and the
// default operation timeout.
func (c *Cache) operationContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, defaultOperationTimeout)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.SetString(ctx, key, string(jsonData), expiration)
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.GetString(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// SetString stores text verbatim.
func (c *Cache) SetString(ctx context.Context, key, value string, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Set(ctx, key, value, expiration).Err()
}

// GetString returns the text stored under key or ErrCacheMiss.
func (c *Cache) GetString(ctx context.Context, key string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	} else if err != nil {
		return "", err
	}
	return val, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Del(ctx, key).Err()
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	val, err := c.client.Exists(ctx, key).Result()
	return val > 0, err
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// BackupKey is the key a serialised page is backed up under.
func BackupKey(pageID string) string {
	return backupKeyPrefix + pageID
}

// BackupStore keeps serialised page configurations keyed by page id.
type BackupStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewBackupStore wraps cache. A zero ttl keeps backups forever.
func NewBackupStore(cache *Cache, ttl time.Duration) *BackupStore {
	return &BackupStore{cache: cache, ttl: ttl}
}

func (b *BackupStore) Get(ctx context.Context, pageID string) (string, error) {
	return b.cache.GetString(ctx, BackupKey(pageID))
}

func (b *BackupStore) Set(ctx context.Context, pageID, text string) error {
	return b.cache.SetString(ctx, BackupKey(pageID), text, b.ttl)
}

func (b *BackupStore) Remove(ctx context.Context, pageID string) error {
	return b.cache.Delete(ctx, BackupKey(pageID))
}
