// Package query 是带失效语义的读穿缓存
// Package query is a keyed read-through cache with explicit invalidation.
//
// Concurrent Get calls for one key share a single in-flight fetch. A key that
// was invalidated is never served from cache again until it is refetched, and
// a fetch that started before an invalidation is stored as stale.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"msgdash/internal/storage"
)

// StatusKey 集成状态查询键 / key of the integration status query
var StatusKey = KeyOf("telegram-status")

// ItemsPrefix 所有列表查询键的公共前缀 / common prefix of every items query key
var ItemsPrefix = strings.TrimSuffix(KeyOf("items"), "]") + ","

// KeyOf builds a deterministic key from its parts (their JSON array form).
func KeyOf(parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		return fmt.Sprint(parts...)
	}
	return string(data)
}

type entry struct {
	value     any
	payload   []byte
	hasValue  bool
	fetchedAt time.Time
	stale     bool
}

// Cache 查询缓存 / query cache
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gens    map[string]uint64
	group   singleflight.Group

	ttl   time.Duration
	store storage.Store
	now   func() time.Time
}

// NewCache creates a cache. ttl <= 0 disables age-based expiry; store may be nil.
func NewCache(ttl time.Duration, store storage.Store) *Cache {
	return &Cache{
		entries: map[string]*entry{},
		gens:    map[string]uint64{},
		ttl:     ttl,
		store:   store,
		now:     time.Now,
	}
}

// Get 返回新鲜的缓存值，否则调用 fetch
// Get returns a fresh cached value for key or runs fetch to obtain one.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok, err := lookup[T](c, key, true); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query: discard undecodable cache entry")
	} else if ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.gens[key]
	c.mu.Unlock()

	flight := key + "#" + strconv.FormatUint(gen, 10)
	res, err, _ := c.group.Do(flight, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, gen, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: shared fetch returned %T", key, res)
	}
	return v, nil
}

// Peek 返回最近一次的值（即使已失效），用作占位数据
// Peek returns the last known value for key even when it is stale.
func Peek[T any](c *Cache, key string) (T, bool) {
	v, ok, err := lookup[T](c, key, false)
	if err != nil {
		return v, false
	}
	return v, ok
}

// Fresh reports whether key holds a value that Get would serve without fetching.
func (c *Cache) Fresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	return e != nil && e.hasValue && !c.expiredLocked(e)
}

// Invalidate marks key stale; the next Get refetches.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	c.gens[key]++
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.MarkStale(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("query: persist invalidation failed")
		}
	}
	log.Debug().Str("key", key).Msg("query: invalidated")
}

// InvalidatePrefix marks every key starting with prefix stale.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			e.stale = true
			c.gens[key]++
		}
	}
	// 进行中的请求也要作废 / in-flight fetches of unseen keys are voided too
	for key := range c.gens {
		if _, seen := c.entries[key]; !seen && strings.HasPrefix(key, prefix) {
			c.gens[key]++
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.MarkStalePrefix(prefix); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("query: persist invalidation failed")
		}
	}
	log.Debug().Str("prefix", prefix).Msg("query: invalidated prefix")
}

// PurgePersisted drops persisted entries older than maxAge.
func (c *Cache) PurgePersisted(maxAge time.Duration) (int, error) {
	if c.store == nil || maxAge <= 0 {
		return 0, nil
	}
	return c.store.PurgeQueries(c.now().Add(-maxAge))
}

func lookup[T any](c *Cache, key string, freshOnly bool) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if e == nil || !e.hasValue {
		return zero, false, nil
	}
	if freshOnly && c.expiredLocked(e) {
		return zero, false, nil
	}
	if v, ok := e.value.(T); ok {
		return v, true, nil
	}
	// 从磁盘恢复的条目只有 JSON 负载 / entries restored from disk only carry JSON
	var v T
	if err := json.Unmarshal(e.payload, &v); err != nil {
		delete(c.entries, key)
		return zero, false, fmt.Errorf("decode %s: %w", key, err)
	}
	e.value = v
	return v, true, nil
}

// entryLocked returns the memory entry, loading it from the store on a miss.
func (c *Cache) entryLocked(key string) *entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	if c.store == nil {
		return nil
	}
	stored, ok, err := c.store.LoadQuery(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query: load persisted entry failed")
		return nil
	}
	if !ok {
		return nil
	}
	e := &entry{
		payload:   stored.Payload,
		hasValue:  true,
		fetchedAt: stored.FetchedAt,
		stale:     stored.Stale,
	}
	c.entries[key] = e
	return e
}

func (c *Cache) expiredLocked(e *entry) bool {
	if e.stale {
		return true
	}
	return c.ttl > 0 && c.now().Sub(e.fetchedAt) >= c.ttl
}

func (c *Cache) put(key string, gen uint64, v any) {
	c.mu.Lock()
	now := c.now()
	stale := c.gens[key] != gen
	e := &entry{value: v, hasValue: true, fetchedAt: now, stale: stale}
	c.entries[key] = e
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query: value not persistable")
		return
	}
	c.mu.Lock()
	e.payload = payload
	c.mu.Unlock()
	if err := c.store.PutQuery(storage.QueryEntry{Key: key, Payload: payload, FetchedAt: now, Stale: stale}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query: persist entry failed")
	}
}
