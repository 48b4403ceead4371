package rolemenu

import (
	"context"
	"fmt"

	"github.com/barengs/smp/pkg/errors"
	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/pkg/permtree"
	"github.com/barengs/smp/pkg/utils"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/role"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ForestSource 提供当前菜单权限树
type ForestSource interface {
	Forest(ctx context.Context) ([]*permtree.Node, error)
	FullForest(ctx context.Context) ([]*permtree.Node, error)
	MissingKeys(ctx context.Context, keys []string) ([]string, error)
}

// PolicySyncer 把选择集合同步为访问策略
type PolicySyncer interface {
	SyncRoleKeys(roleCode string, keys []string) error
	DeleteRole(roleCode string) error
}

// Service 角色权限选择服务
type Service struct {
	repo   Repository
	roles  role.Repository
	menus  ForestSource
	policy PolicySyncer
}

// NewService 创建服务
func NewService(repo Repository, roles role.Repository, menus ForestSource, policy PolicySyncer) *Service {
	return &Service{repo: repo, roles: roles, menus: menus, policy: policy}
}

func (s *Service) role(ctx context.Context, roleID int64) (*model.Role, error) {
	r, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.NotFound("角色")
	}
	return r, nil
}

// Selection 权限树与角色当前选择
func (s *Service) Selection(ctx context.Context, roleID int64) (*PermissionsResponse, error) {
	if _, err := s.role(ctx, roleID); err != nil {
		return nil, err
	}
	forest, err := s.menus.Forest(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := s.repo.KeysByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	if forest == nil {
		forest = []*permtree.Node{}
	}
	return &PermissionsResponse{Menus: forest, Selected: keys}, nil
}

// Replace 覆盖角色选择集合，重复标识合并，未知标识拒绝
func (s *Service) Replace(ctx context.Context, roleID int64, keys []string) ([]string, error) {
	r, err := s.role(ctx, roleID)
	if err != nil {
		return nil, err
	}
	keys = utils.Unique(keys)
	missing, err := s.menus.MissingKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, errors.ErrUnknownMenuKey.WithDetail("keys %v", missing)
	}

	next := permtree.NewSelectedSet(keys...).Keys()
	if err := s.repo.Replace(ctx, roleID, next); err != nil {
		return nil, fmt.Errorf("save selection: %w", err)
	}
	if err := s.policy.SyncRoleKeys(r.Code, next); err != nil {
		return nil, fmt.Errorf("sync policies: %w", err)
	}
	logger.Info("role permissions replaced", zap.Int64("roleId", roleID), zap.Int("keys", len(next)))
	return next, nil
}

// Toggle 在已存选择上勾选或取消一个节点及其全部子孙。
// 勾选只作用于启用的子孙；取消时连同停用子孙一起移除
func (s *Service) Toggle(ctx context.Context, roleID, menuID int64, checked bool) ([]string, error) {
	r, err := s.role(ctx, roleID)
	if err != nil {
		return nil, err
	}
	load := s.menus.Forest
	if !checked {
		load = s.menus.FullForest
	}
	forest, err := load(ctx)
	if err != nil {
		return nil, err
	}
	node := permtree.Find(forest, menuID)
	if node == nil {
		return nil, errors.NotFound("菜单")
	}

	var next []string
	err = s.repo.Transaction(ctx, func(repo Repository) error {
		keys, err := repo.KeysByRole(ctx, roleID)
		if err != nil {
			return err
		}
		next = permtree.ToggleNode(node, permtree.NewSelectedSet(keys...), checked).Keys()
		return repo.Replace(ctx, roleID, next)
	})
	if err != nil {
		return nil, fmt.Errorf("toggle selection: %w", err)
	}
	if err := s.policy.SyncRoleKeys(r.Code, next); err != nil {
		return nil, fmt.Errorf("sync policies: %w", err)
	}
	return next, nil
}

// States 权限树中每个节点对该角色的勾选状态
func (s *Service) States(ctx context.Context, roleID int64, locale string) ([]*StateNode, error) {
	sel, err := s.Selection(ctx, roleID)
	if err != nil {
		return nil, err
	}
	selected := permtree.NewSelectedSet(sel.Selected...)
	return stateNodes(sel.Menus, selected, locale), nil
}

func stateNodes(nodes []*permtree.Node, selected permtree.SelectedSet, locale string) []*StateNode {
	out := make([]*StateNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, &StateNode{
			ID:       n.ID,
			Key:      n.Key,
			Title:    n.TitleFor(locale),
			State:    permtree.ResolveCheckedState(n, selected),
			Children: stateNodes(n.Children, selected, locale),
		})
	}
	return out
}

// ClearRole 删除角色的选择与策略
func (s *Service) ClearRole(ctx context.Context, r *model.Role) error {
	if err := s.repo.DeleteByRole(ctx, r.ID); err != nil {
		return err
	}
	return s.policy.DeleteRole(r.Code)
}

// KeysByRole 角色已选标识
func (s *Service) KeysByRole(ctx context.Context, roleID int64) ([]string, error) {
	return s.repo.KeysByRole(ctx, roleID)
}

// RenameKey 菜单标识改名后更新所有角色；tx 为空时单独执行
func (s *Service) RenameKey(ctx context.Context, tx *gorm.DB, oldKey, newKey string) ([]int64, error) {
	repo := s.within(tx)
	roleIDs, err := repo.RoleIDsByKey(ctx, oldKey)
	if err != nil {
		return nil, err
	}
	if err := repo.RenameKey(ctx, oldKey, newKey); err != nil {
		return nil, err
	}
	return roleIDs, nil
}

// RemoveKey 菜单删除后从所有角色中移除；tx 为空时单独执行
func (s *Service) RemoveKey(ctx context.Context, tx *gorm.DB, key string) ([]int64, error) {
	repo := s.within(tx)
	roleIDs, err := repo.RoleIDsByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := repo.DeleteByKey(ctx, key); err != nil {
		return nil, err
	}
	return roleIDs, nil
}

// SyncRoles 按已存选择刷新角色策略
func (s *Service) SyncRoles(ctx context.Context, roleIDs []int64) error {
	return s.resync(ctx, roleIDs)
}

func (s *Service) within(tx *gorm.DB) Repository {
	if tx == nil {
		return s.repo
	}
	return s.repo.WithTx(tx)
}

func (s *Service) resync(ctx context.Context, roleIDs []int64) error {
	for _, id := range roleIDs {
		r, err := s.roles.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			continue
		}
		keys, err := s.repo.KeysByRole(ctx, id)
		if err != nil {
			return err
		}
		if err := s.policy.SyncRoleKeys(r.Code, keys); err != nil {
			return err
		}
	}
	return nil
}
