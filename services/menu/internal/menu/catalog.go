package menu

import (
	"context"
	"fmt"

	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/pkg/permtree"
	"github.com/barengs/smp/pkg/utils"
	"github.com/barengs/smp/services/menu/internal/model"
	"go.uber.org/zap"
)

// Catalog 菜单目录，负责读取、缓存并构建权限树
type Catalog struct {
	repo  Repository
	cache TreeCache
}

// NewCatalog 创建菜单目录
func NewCatalog(repo Repository, cache TreeCache) *Catalog {
	if cache == nil {
		cache = NopTreeCache{}
	}
	return &Catalog{repo: repo, cache: cache}
}

// Menus 全部菜单，优先读缓存；缓存故障只记日志
func (c *Catalog) Menus(ctx context.Context) ([]model.Menu, error) {
	menus, ok, err := c.cache.Get(ctx)
	if err != nil {
		logger.Warn("read menu cache failed", zap.Error(err))
	}
	if ok {
		return menus, nil
	}

	menus, err = c.repo.FindSorted(ctx)
	if err != nil {
		return nil, fmt.Errorf("load menus: %w", err)
	}
	if err := c.cache.Set(ctx, menus); err != nil {
		logger.Warn("write menu cache failed", zap.Error(err))
	}
	return menus, nil
}

// Forest 启用菜单构成的权限树
func (c *Catalog) Forest(ctx context.Context) ([]*permtree.Node, error) {
	menus, err := c.Menus(ctx)
	if err != nil {
		return nil, err
	}
	return permtree.Build(activeRecords(menus, false)), nil
}

// FullForest 全部菜单构成的树，包含停用菜单
func (c *Catalog) FullForest(ctx context.Context) ([]*permtree.Node, error) {
	menus, err := c.Menus(ctx)
	if err != nil {
		return nil, err
	}
	return permtree.Build(utils.Map(menus, model.Menu.Record)), nil
}

// VisibleForest 启用且可见菜单构成的树
func (c *Catalog) VisibleForest(ctx context.Context) ([]*permtree.Node, error) {
	menus, err := c.Menus(ctx)
	if err != nil {
		return nil, err
	}
	return permtree.Build(activeRecords(menus, true)), nil
}

// Invalidate 菜单变更后清除缓存
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx); err != nil {
		logger.Warn("invalidate menu cache failed", zap.Error(err))
	}
}

// activeRecords 过滤掉自身或任一祖先停用（或隐藏）的菜单
func activeRecords(menus []model.Menu, visibleOnly bool) []permtree.Record {
	byID := make(map[int64]model.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	active := func(m model.Menu) bool {
		if m.Status != model.StatusEnabled {
			return false
		}
		return !visibleOnly || m.Visible == model.StatusEnabled
	}

	kept := make([]model.Menu, 0, len(menus))
	for _, m := range menus {
		if chainActive(m, byID, active) {
			kept = append(kept, m)
		}
	}
	return utils.Map(kept, model.Menu.Record)
}

func chainActive(m model.Menu, byID map[int64]model.Menu, active func(model.Menu) bool) bool {
	seen := map[int64]struct{}{m.ID: {}}
	for cur := m; ; {
		if !active(cur) {
			return false
		}
		parent, ok := byID[cur.ParentID]
		if cur.ParentID == 0 || !ok {
			return true
		}
		if _, loop := seen[parent.ID]; loop {
			return true
		}
		seen[parent.ID] = struct{}{}
		cur = parent
	}
}

// MissingKeys 返回目录中不存在的标识，停用菜单的标识视为存在
func (c *Catalog) MissingKeys(ctx context.Context, keys []string) ([]string, error) {
	menus, err := c.Menus(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(menus))
	for _, m := range menus {
		known[m.Key] = struct{}{}
	}

	var missing []string
	for _, k := range keys {
		if _, ok := known[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing, nil
}
