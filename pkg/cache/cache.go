// Package cache 进程内 TTL 缓存
package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value      V
	expiration int64 // UnixNano，0 表示永不过期
}

func (it item[V]) expired(now int64) bool {
	return it.expiration != 0 && now > it.expiration
}

// Cache 带过期时间的内存缓存
type Cache[V any] struct {
	items map[string]item[V]
	mu    sync.RWMutex
	now   func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New 创建缓存，cleanupInterval > 0 时后台定期清理过期项
func New[V any](cleanupInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items:       make(map[string]item[V]),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// cleanupLoop 定期清理过期项
func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.DeleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// Set 写入缓存，ttl <= 0 表示永不过期
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = c.now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiration: exp}
	c.mu.Unlock()
}

// Get 读取缓存，过期项视为不存在
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || it.expired(c.now().UnixNano()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Delete 删除缓存
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeleteExpired 删除所有过期项
func (c *Cache[V]) DeleteExpired() {
	now := c.now().UnixNano()
	c.mu.Lock()
	for k, it := range c.items {
		if it.expired(now) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Len 缓存项数量（含未清理的过期项）
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close 停止后台清理，可重复调用
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
}
