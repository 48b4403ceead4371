package role

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/barengs/smp/pkg/errors"
	"github.com/barengs/smp/pkg/response"
	"github.com/barengs/smp/pkg/router"
	"github.com/barengs/smp/pkg/utils"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/gofiber/fiber/v2"
)

// SelectionCleaner 删除角色时清理其权限选择和策略
type SelectionCleaner interface {
	ClearRole(ctx context.Context, role *model.Role) error
}

// Controller 角色控制器
type Controller struct {
	repo    Repository
	cleaner SelectionCleaner
}

// NewController 创建角色控制器
func NewController(repo Repository, cleaner SelectionCleaner) *Controller {
	return &Controller{repo: repo, cleaner: cleaner}
}

// Prefix 路由前缀
func (c *Controller) Prefix() string {
	return "/roles"
}

// Routes 路由配置
func (c *Controller) Routes(mw map[string]fiber.Handler) []router.Route {
	jwt := []fiber.Handler{mw[router.MiddlewareJWT]}
	return []router.Route{
		{Method: http.MethodGet, Path: "", Handler: c.List, Middlewares: jwt},
		{Method: http.MethodPost, Path: "", Handler: c.Create, Middlewares: jwt},
		{Method: http.MethodGet, Path: "/:id", Handler: c.Get, Middlewares: jwt},
		{Method: http.MethodPut, Path: "/:id", Handler: c.Update, Middlewares: jwt},
		{Method: http.MethodDelete, Path: "/:id", Handler: c.Delete, Middlewares: jwt},
	}
}

// Create 创建角色
func (c *Controller) Create(ctx *fiber.Ctx) error {
	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}
	if err := utils.Validate(&req); err != nil {
		return response.FromError(ctx, err)
	}

	role, err := c.create(ctx.UserContext(), &req)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, role)
}

func (c *Controller) create(ctx context.Context, req *CreateRequest) (*model.Role, error) {
	existing, err := c.repo.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Duplicate("角色编码")
	}

	role := &model.Role{
		Name:        req.Name,
		Code:        req.Code,
		Status:      req.Status,
		Sort:        req.Sort,
		Description: req.Description,
	}
	if role.Status == 0 {
		role.Status = model.StatusEnabled
	}

	if err := c.repo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// Update 更新角色
func (c *Controller) Update(ctx *fiber.Ctx) error {
	id, err := ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}
	if err := utils.Validate(&req); err != nil {
		return response.FromError(ctx, err)
	}

	role, err := c.update(ctx.UserContext(), id, &req)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, role)
}

func (c *Controller) update(ctx context.Context, id int64, req *UpdateRequest) (*model.Role, error) {
	role, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NotFound("角色")
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Status > 0 {
		role.Status = req.Status
	}
	if req.Sort != nil {
		role.Sort = *req.Sort
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := c.repo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

// Delete 删除角色，同时清除其权限选择与策略
func (c *Controller) Delete(ctx *fiber.Ctx) error {
	id, err := ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}
	if err := c.delete(ctx.UserContext(), id); err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, nil)
}

func (c *Controller) delete(ctx context.Context, id int64) error {
	role, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return errors.NotFound("角色")
	}

	if err := c.cleaner.ClearRole(ctx, role); err != nil {
		return fmt.Errorf("clear role selection: %w", err)
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// Get 获取角色
func (c *Controller) Get(ctx *fiber.Ctx) error {
	id, err := ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	role, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.FromError(ctx, err)
	}
	if role == nil {
		return response.FromError(ctx, errors.NotFound("角色"))
	}
	return response.Success(ctx, role)
}

// List 角色列表
func (c *Controller) List(ctx *fiber.Ctx) error {
	var req ListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	roles, err := c.repo.List(ctx.UserContext(), &req)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, roles)
}

// ParseID 解析路径中的角色ID
func ParseID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("无效的角色ID")
	}
	return id, nil
}
