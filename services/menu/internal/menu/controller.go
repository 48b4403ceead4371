package menu

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/barengs/smp/pkg/errors"
	"github.com/barengs/smp/pkg/middleware"
	"github.com/barengs/smp/pkg/permtree"
	"github.com/barengs/smp/pkg/response"
	"github.com/barengs/smp/pkg/router"
	"github.com/barengs/smp/pkg/utils"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SelectionStore 角色选择集合的存取，菜单改名或删除时需要同步
type SelectionStore interface {
	KeysByRole(ctx context.Context, roleID int64) ([]string, error)
	// RenameKey 在 tx 中改写标识，返回受影响的角色
	RenameKey(ctx context.Context, tx *gorm.DB, oldKey, newKey string) ([]int64, error)
	// RemoveKey 在 tx 中删除标识，返回受影响的角色
	RemoveKey(ctx context.Context, tx *gorm.DB, key string) ([]int64, error)
	// SyncRoles 事务提交后刷新角色的访问策略
	SyncRoles(ctx context.Context, roleIDs []int64) error
}

// Controller 菜单控制器
type Controller struct {
	repo      Repository
	catalog   *Catalog
	selection SelectionStore
	superRole string
}

// NewController 创建菜单控制器
func NewController(repo Repository, catalog *Catalog, selection SelectionStore, superRole string) *Controller {
	return &Controller{
		repo:      repo,
		catalog:   catalog,
		selection: selection,
		superRole: superRole,
	}
}

// Prefix 路由前缀
func (c *Controller) Prefix() string {
	return "/menus"
}

// Routes 路由配置
func (c *Controller) Routes(mw map[string]fiber.Handler) []router.Route {
	jwt := []fiber.Handler{mw[router.MiddlewareJWT]}
	return []router.Route{
		{Method: http.MethodGet, Path: "/tree", Handler: c.GetTree, Middlewares: jwt},
		{Method: http.MethodGet, Path: "/user/tree", Handler: c.GetUserTree, Middlewares: jwt},
		{Method: http.MethodGet, Path: "", Handler: c.List, Middlewares: jwt},
		{Method: http.MethodPost, Path: "", Handler: c.Create, Middlewares: jwt},
		{Method: http.MethodGet, Path: "/:id", Handler: c.Get, Middlewares: jwt},
		{Method: http.MethodPut, Path: "/:id", Handler: c.Update, Middlewares: jwt},
		{Method: http.MethodDelete, Path: "/:id", Handler: c.Delete, Middlewares: jwt},
	}
}

// Create 创建菜单
func (c *Controller) Create(ctx *fiber.Ctx) error {
	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}
	if err := utils.Validate(&req); err != nil {
		return response.FromError(ctx, err)
	}

	menu, err := c.create(ctx.UserContext(), &req)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, menu)
}

func (c *Controller) create(ctx context.Context, req *CreateRequest) (*model.Menu, error) {
	existing, err := c.repo.FindByKey(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Duplicate("菜单标识")
	}
	if err := c.checkParent(ctx, 0, req.ParentID); err != nil {
		return nil, err
	}

	menu := &model.Menu{
		ParentID: req.ParentID,
		Key:      req.Key,
		Title:    req.Title,
		Titles:   datatypes.NewJSONType(req.Titles),
		Path:     req.Path,
		Icon:     req.Icon,
		Type:     req.Type,
		Visible:  req.Visible,
		Status:   req.Status,
		Sort:     req.Sort,
	}
	if menu.Type == 0 {
		menu.Type = model.MenuTypeDir
	}
	if menu.Visible == 0 {
		menu.Visible = model.StatusEnabled
	}
	if menu.Status == 0 {
		menu.Status = model.StatusEnabled
	}

	if err := c.repo.Create(ctx, menu); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}
	c.catalog.Invalidate(ctx)
	return menu, nil
}

// Update 更新菜单
func (c *Controller) Update(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
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

	menu, err := c.update(ctx.UserContext(), id, &req)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, menu)
}

func (c *Controller) update(ctx context.Context, id int64, req *UpdateRequest) (*model.Menu, error) {
	menu, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, errors.NotFound("菜单")
	}

	oldKey := menu.Key
	if req.Key != "" && req.Key != menu.Key {
		existing, err := c.repo.FindByKey(ctx, req.Key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors.Duplicate("菜单标识")
		}
		menu.Key = req.Key
	}
	if req.ParentID != nil && *req.ParentID != menu.ParentID {
		if err := c.checkParent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		menu.ParentID = *req.ParentID
	}
	if req.Title != "" {
		menu.Title = req.Title
	}
	if req.Titles != nil {
		menu.Titles = datatypes.NewJSONType(req.Titles)
	}
	if req.Path != nil {
		menu.Path = *req.Path
	}
	if req.Icon != nil {
		menu.Icon = *req.Icon
	}
	if req.Type > 0 {
		menu.Type = req.Type
	}
	if req.Visible > 0 {
		menu.Visible = req.Visible
	}
	if req.Status > 0 {
		menu.Status = req.Status
	}
	if req.Sort != nil {
		menu.Sort = *req.Sort
	}

	defer c.catalog.Invalidate(ctx)

	var affected []int64
	err = c.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := c.repo.WithTx(tx).Update(ctx, menu); err != nil {
			return fmt.Errorf("update menu: %w", err)
		}
		if menu.Key == oldKey {
			return nil
		}
		roleIDs, err := c.selection.RenameKey(ctx, tx, oldKey, menu.Key)
		if err != nil {
			return fmt.Errorf("rename selected key: %w", err)
		}
		affected = roleIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := c.selection.SyncRoles(ctx, affected); err != nil {
		return nil, fmt.Errorf("sync policies: %w", err)
	}
	return menu, nil
}

// checkParent 上级菜单必须存在，且不能是 id 自身或其子孙
func (c *Controller) checkParent(ctx context.Context, id, parentID int64) error {
	if parentID == 0 {
		return nil
	}
	if parentID == id {
		return errors.ErrMenuCycle.WithDetail("menu %d", id)
	}

	menus, err := c.repo.FindSorted(ctx)
	if err != nil {
		return err
	}
	parentOf := make(map[int64]int64, len(menus))
	for _, m := range menus {
		parentOf[m.ID] = m.ParentID
	}
	if _, ok := parentOf[parentID]; !ok {
		return errors.NotFound("上级菜单")
	}
	if id == 0 {
		return nil
	}

	seen := make(map[int64]struct{})
	for cur := parentID; cur != 0; cur = parentOf[cur] {
		if cur == id {
			return errors.ErrMenuCycle.WithDetail("menu %d under %d", id, parentID)
		}
		if _, loop := seen[cur]; loop {
			break
		}
		seen[cur] = struct{}{}
	}
	return nil
}

// Delete 删除菜单
func (c *Controller) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}
	if err := c.delete(ctx.UserContext(), id); err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, nil)
}

func (c *Controller) delete(ctx context.Context, id int64) error {
	menu, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if menu == nil {
		return errors.NotFound("菜单")
	}

	n, err := c.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.ErrMenuHasChildren
	}

	defer c.catalog.Invalidate(ctx)

	var affected []int64
	err = c.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := c.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("delete menu: %w", err)
		}
		roleIDs, err := c.selection.RemoveKey(ctx, tx, menu.Key)
		if err != nil {
			return fmt.Errorf("remove selected key: %w", err)
		}
		affected = roleIDs
		return nil
	})
	if err != nil {
		return err
	}
	if err := c.selection.SyncRoles(ctx, affected); err != nil {
		return fmt.Errorf("sync policies: %w", err)
	}
	return nil
}

// Get 获取菜单详情
func (c *Controller) Get(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return response.FromError(ctx, err)
	}

	menu, err := c.repo.FindByID(ctx.UserContext(), id)
	if err != nil {
		return response.FromError(ctx, err)
	}
	if menu == nil {
		return response.FromError(ctx, errors.NotFound("菜单"))
	}
	return response.Success(ctx, menu)
}

// List 菜单扁平列表
func (c *Controller) List(ctx *fiber.Ctx) error {
	var req ListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	menus, err := c.repo.List(ctx.UserContext(), &req)
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, menus)
}

// GetTree 启用菜单树，标题按 locale 解析
func (c *Controller) GetTree(ctx *fiber.Ctx) error {
	var req TreeRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	forest, err := c.catalog.Forest(ctx.UserContext())
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, nonNil(permtree.Localize(forest, req.Locale)))
}

// GetUserTree 当前角色可见的菜单树
func (c *Controller) GetUserTree(ctx *fiber.Ctx) error {
	var req TreeRequest
	if err := ctx.QueryParser(&req); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	forest, err := c.userTree(ctx.UserContext(), middleware.GetRoleID(ctx), middleware.GetRoleCode(ctx))
	if err != nil {
		return response.FromError(ctx, err)
	}
	return response.Success(ctx, nonNil(permtree.Localize(forest, req.Locale)))
}

// userTree 可见菜单中已选的节点及其祖先；超级角色看到全部
func (c *Controller) userTree(ctx context.Context, roleID int64, roleCode string) ([]*permtree.Node, error) {
	forest, err := c.catalog.VisibleForest(ctx)
	if err != nil {
		return nil, err
	}
	if c.superRole != "" && roleCode == c.superRole {
		return forest, nil
	}

	keys, err := c.selection.KeysByRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	selected := permtree.NewSelectedSet(keys...)
	return permtree.Prune(forest, func(n *permtree.Node) bool {
		return selected.Has(n.Key)
	}), nil
}

func parseID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("无效的菜单ID")
	}
	return id, nil
}

func nonNil(forest []*permtree.Node) []*permtree.Node {
	if forest == nil {
		return []*permtree.Node{}
	}
	return forest
}
