package rolemenu

import (
	"context"

	"github.com/barengs/smp/pkg/dal"
	"github.com/barengs/smp/services/menu/internal/model"
	"gorm.io/gorm"
)

// Repository 角色选择集合仓储
type Repository interface {
	KeysByRole(ctx context.Context, roleID int64) ([]string, error)
	Replace(ctx context.Context, roleID int64, keys []string) error
	DeleteByRole(ctx context.Context, roleID int64) error
	RoleIDsByKey(ctx context.Context, key string) ([]int64, error)
	RenameKey(ctx context.Context, oldKey, newKey string) error
	DeleteByKey(ctx context.Context, key string) error
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	base *dal.BaseRepository[model.RoleMenu]
}

// NewRepository 创建仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: dal.NewBaseRepository[model.RoleMenu](db)}
}

func (r *repository) db(ctx context.Context) *gorm.DB {
	return r.base.DB().WithContext(ctx)
}

// KeysByRole 角色已选标识，按标识排序
func (r *repository) KeysByRole(ctx context.Context, roleID int64) ([]string, error) {
	keys := make([]string, 0)
	err := r.db(ctx).Model(&model.RoleMenu{}).
		Where("role_id = ?", roleID).
		Order("menu_key ASC").
		Pluck("menu_key", &keys).Error
	return keys, err
}

// Replace 覆盖写入角色选择集合
func (r *repository) Replace(ctx context.Context, roleID int64, keys []string) error {
	return r.base.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RoleMenu{}).Error; err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
		rows := make([]model.RoleMenu, len(keys))
		for i, k := range keys {
			rows[i] = model.RoleMenu{RoleID: roleID, MenuKey: k}
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

// DeleteByRole 删除角色全部选择
func (r *repository) DeleteByRole(ctx context.Context, roleID int64) error {
	return r.db(ctx).Where("role_id = ?", roleID).Delete(&model.RoleMenu{}).Error
}

// RoleIDsByKey 选中了该标识的角色
func (r *repository) RoleIDsByKey(ctx context.Context, key string) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db(ctx).Model(&model.RoleMenu{}).
		Where("menu_key = ?", key).
		Order("role_id ASC").
		Pluck("role_id", &ids).Error
	return ids, err
}

// RenameKey 菜单标识改名
func (r *repository) RenameKey(ctx context.Context, oldKey, newKey string) error {
	return r.db(ctx).Model(&model.RoleMenu{}).
		Where("menu_key = ?", oldKey).
		Update("menu_key", newKey).Error
}

// DeleteByKey 删除所有角色对该标识的选择
func (r *repository) DeleteByKey(ctx context.Context, key string) error {
	return r.db(ctx).Where("menu_key = ?", key).Delete(&model.RoleMenu{}).Error
}

// Transaction 在同一事务中执行
func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.base.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// WithTx 绑定到外部事务
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}
