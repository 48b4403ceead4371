package rolemenu

import (
	"net/http"

	"github.com/barengs/smp/pkg/response"
	"github.com/barengs/smp/pkg/router"
	"github.com/barengs/smp/pkg/utils"
	"github.com/barengs/smp/services/menu/internal/role"
	"github.com/gofiber/fiber/v2"
)

// Controller 角色权限选择控制器
type Controller struct {
	svc *Service
}

// NewController 创建控制器
func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

// Prefix 路由前缀
func (c *Controller) Prefix() string {
	return "/roles"
}

// Routes 路由配置，写操作额外要求分配权限
func (c *Controller) Routes(mw map[string]fiber.Handler) []router.Route {
	read := []fiber.Handler{mw[router.MiddlewareJWT]}
	write := []fiber.Handler{mw[router.MiddlewareJWT], mw[router.MiddlewareAssign]}
	return []router.Route{
		{Method: http.MethodGet, Path: "/:id/permissions", Handler: c.GetPermissions, Middlewares: read},
		{Method: http.MethodPut, Path: "/:id/permissions", Handler: c.SetPermissions, Middlewares: write},
		{Method: http.MethodPost, Path: "/:id/permissions/toggle", Handler: c.Toggle, Middlewares: write},
		{Method: http.MethodGet, Path: "/:id/permissions/states", Handler: c.GetStates, Middlewares: read},
	}
}

// GetPermissions 权限树与已选标识
func (c *Controller) GetPermissions(ctx *fiber.Ctx) error {
	id, err := role.ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	res, err := c.svc.Selection(ctx.UserContext(), id)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, res)
}

// SetPermissions 覆盖角色选择集合
func (c *Controller) SetPermissions(ctx *fiber.Ctx) error {
	id, err := role.ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	var req SetPermissionsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}
	if err := utils.Validate(&req); err != nil {
		return response.FromError(ctx, err)
	}

	keys, err := c.svc.Replace(ctx.UserContext(), id, req.Keys)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, KeysResponse{Keys: keys})
}

// Toggle 勾选或取消一个节点
func (c *Controller) Toggle(ctx *fiber.Ctx) error {
	id, err := role.ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	var req ToggleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}
	if err := utils.Validate(&req); err != nil {
		return response.FromError(ctx, err)
	}

	keys, err := c.svc.Toggle(ctx.UserContext(), id, req.MenuID, *req.Checked)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, KeysResponse{Keys: keys})
}

// GetStates 每个节点的勾选状态
func (c *Controller) GetStates(ctx *fiber.Ctx) error {
	id, err := role.ParseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	var req StatesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	states, err := c.svc.States(ctx.UserContext(), id, req.Locale)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, states)
}
