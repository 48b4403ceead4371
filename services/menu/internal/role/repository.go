package role

import (
	"context"

	"github.com/barengs/smp/pkg/dal"
	"github.com/barengs/smp/services/menu/internal/model"
	"gorm.io/gorm"
)

// Repository 角色仓储接口
type Repository interface {
	dal.Repository[model.Role]
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	List(ctx context.Context, req *ListRequest) ([]model.Role, error)
}

type repository struct {
	*dal.BaseRepository[model.Role]
}

// NewRepository 创建角色仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		BaseRepository: dal.NewBaseRepository[model.Role](db),
	}
}

// FindByCode 根据编码查找
func (r *repository) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	return r.FindOne(ctx, map[string]interface{}{"code": code})
}

// List 按条件查询
func (r *repository) List(ctx context.Context, req *ListRequest) ([]model.Role, error) {
	opts := []dal.QueryOption{
		dal.WithLike("name", req.Name),
		dal.WithLike("code", req.Code),
		dal.WithOrder("sort ASC, id ASC"),
	}
	if req.Status != nil {
		opts = append(opts, dal.WithWhere("status = ?", *req.Status))
	}
	return r.FindAll(ctx, nil, opts...)
}
