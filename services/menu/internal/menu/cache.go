package menu

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/barengs/smp/pkg/broadcast"
	"github.com/barengs/smp/pkg/cache"
	"github.com/barengs/smp/pkg/database"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/redis/go-redis/v9"
)

const treeCacheKey = "tree"

// TopicTreeInvalidate 菜单目录失效广播
const TopicTreeInvalidate = "menu.tree.invalidate"

// TreeCache 菜单目录缓存，保存按 sort、id 排好序的全部菜单
type TreeCache interface {
	Get(ctx context.Context) ([]model.Menu, bool, error)
	Set(ctx context.Context, menus []model.Menu) error
	Invalidate(ctx context.Context) error
}

type redisTreeCache struct {
	cache *database.Cache
	ttl   time.Duration
}

// NewTreeCache 基于 Redis 的菜单树缓存，键为 menu:tree
func NewTreeCache(cache *database.Cache, ttl time.Duration) TreeCache {
	return &redisTreeCache{cache: cache, ttl: ttl}
}

func (c *redisTreeCache) Get(ctx context.Context) ([]model.Menu, bool, error) {
	raw, err := c.cache.Get(ctx, treeCacheKey)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var menus []model.Menu
	if err := json.Unmarshal([]byte(raw), &menus); err != nil {
		return nil, false, err
	}
	return menus, true, nil
}

func (c *redisTreeCache) Set(ctx context.Context, menus []model.Menu) error {
	raw, err := json.Marshal(menus)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, treeCacheKey, raw, c.ttl)
}

func (c *redisTreeCache) Invalidate(ctx context.Context) error {
	return c.cache.Del(ctx, treeCacheKey)
}

// NopTreeCache 不缓存
type NopTreeCache struct{}

func (NopTreeCache) Get(context.Context) ([]model.Menu, bool, error) { return nil, false, nil }
func (NopTreeCache) Set(context.Context, []model.Menu) error         { return nil }
func (NopTreeCache) Invalidate(context.Context) error                { return nil }

type localTreeCache struct {
	cache *cache.Cache[[]model.Menu]
	ttl   time.Duration
	bus   *broadcast.Broadcaster
}

// NewLocalTreeCache 进程内菜单树缓存。bus 不为空时失效会广播给其他实例，
// 收到其他实例的失效消息时清空本地副本
func NewLocalTreeCache(c *cache.Cache[[]model.Menu], ttl time.Duration, bus *broadcast.Broadcaster) TreeCache {
	lc := &localTreeCache{cache: c, ttl: ttl, bus: bus}
	if bus != nil {
		bus.Subscribe(TopicTreeInvalidate, func(*broadcast.Message) {
			c.Delete(treeCacheKey)
		})
	}
	return lc
}

func (c *localTreeCache) Get(context.Context) ([]model.Menu, bool, error) {
	menus, ok := c.cache.Get(treeCacheKey)
	if !ok {
		return nil, false, nil
	}
	return append([]model.Menu(nil), menus...), true, nil
}

func (c *localTreeCache) Set(_ context.Context, menus []model.Menu) error {
	c.cache.Set(treeCacheKey, append([]model.Menu(nil), menus...), c.ttl)
	return nil
}

func (c *localTreeCache) Invalidate(ctx context.Context) error {
	c.cache.Delete(treeCacheKey)
	if c.bus == nil {
		return nil
	}
	return c.bus.Publish(ctx, TopicTreeInvalidate, nil)
}
