package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// ErrCacheMiss is returned when a key is in neither cache tier.
var ErrCacheMiss = stderrors.New("cache miss")

// CacheManager is a two-tier cache: a short-lived in-process tier in front
// of Redis. The L1 tier absorbs per-request reads of hot keys such as
// organization settings; Redis keeps instances consistent within its TTL.
type CacheManager struct {
	client *redis.Client
	l1     *gocache.Cache
	log    logger.Logger
}

// NewCacheManager creates a cache manager with the default L1 TTL.
func NewCacheManager(client *redis.Client, log logger.Logger) *CacheManager {
	return &CacheManager{
		client: client,
		l1:     gocache.New(constants.OrgSettingsL1CacheTTL, 5*time.Minute),
		log:    log.WithComponent("cache"),
	}
}

// Get unmarshals the cached value for key into dest. L1 is consulted first.
func (m *CacheManager) Get(ctx context.Context, key string, dest interface{}) error {
	if raw, found := m.l1.Get(key); found {
		return json.Unmarshal(raw.([]byte), dest)
	}

	raw, err := m.client.Get(ctx, key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	m.l1.SetDefault(key, raw)
	return json.Unmarshal(raw, dest)
}

// Set marshals value and writes it to both tiers. ttl applies to the Redis
// tier; the L1 tier keeps its own shorter default.
func (m *CacheManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := m.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	m.l1.SetDefault(key, raw)
	return nil
}

// Delete removes the key from both tiers. Used on settings updates so stale
// values never outlive a write by more than the L1 TTL on other instances.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	m.l1.Delete(key)
	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Acquire atomically claims key for ttl and reports whether the claim won.
// Claims live only in Redis so every instance contends on the same slot;
// the TTL bounds how long a crashed holder can block the key.
func (m *CacheManager) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache acquire %s: %w", key, err)
	}
	return ok, nil
}

// Release frees a key claimed with Acquire.
func (m *CacheManager) Release(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache release %s: %w", key, err)
	}
	return nil
}

// OrgSettingsKey builds the cache key for an organization's settings.
func OrgSettingsKey(orgID string) string {
	return "org:settings:" + orgID
}

// FormationJobKey builds the cache key for a formation job's status.
func FormationJobKey(projectID string) string {
	return "formation:job:" + projectID
}

// FormationLockKey builds the single-run lock key for a project's formation
// job.
func FormationLockKey(projectID string) string {
	return "formation:lock:" + projectID
}
