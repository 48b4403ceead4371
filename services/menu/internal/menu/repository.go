package menu

import (
	"context"

	"github.com/barengs/smp/pkg/dal"
	"github.com/barengs/smp/services/menu/internal/model"
	"gorm.io/gorm"
)

// Repository 菜单仓储接口
type Repository interface {
	dal.Repository[model.Menu]
	FindByKey(ctx context.Context, key string) (*model.Menu, error)
	FindSorted(ctx context.Context) ([]model.Menu, error)
	CountChildren(ctx context.Context, parentID int64) (int64, error)
	List(ctx context.Context, req *ListRequest) ([]model.Menu, error)
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	*dal.BaseRepository[model.Menu]
}

// NewRepository 创建菜单仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		BaseRepository: dal.NewBaseRepository[model.Menu](db),
	}
}

// FindByKey 根据权限标识查找
func (r *repository) FindByKey(ctx context.Context, key string) (*model.Menu, error) {
	return r.FindOne(ctx, map[string]interface{}{"key": key})
}

// FindSorted 全部菜单，按 sort、id 排序
func (r *repository) FindSorted(ctx context.Context) ([]model.Menu, error) {
	return r.FindAll(ctx, nil, dal.WithOrder("sort ASC, id ASC"))
}

// CountChildren 子菜单数量
func (r *repository) CountChildren(ctx context.Context, parentID int64) (int64, error) {
	return r.Count(ctx, map[string]interface{}{"parent_id": parentID})
}

// List 按条件查询扁平列表
func (r *repository) List(ctx context.Context, req *ListRequest) ([]model.Menu, error) {
	opts := []dal.QueryOption{
		dal.WithLike("title", req.Name),
		dal.WithOrder("sort ASC, id ASC"),
	}
	if req.Status != nil {
		opts = append(opts, dal.WithWhere("status = ?", *req.Status))
	}
	if req.ParentID != nil {
		opts = append(opts, dal.WithWhere("parent_id = ?", *req.ParentID))
	}
	return r.FindAll(ctx, nil, opts...)
}

// WithTx 绑定到外部事务
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{BaseRepository: r.BaseRepository.WithTx(tx)}
}
