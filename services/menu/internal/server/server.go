package server

import (
	"time"

	"github.com/barengs/smp/pkg/auth"
	"github.com/barengs/smp/pkg/broadcast"
	localcache "github.com/barengs/smp/pkg/cache"
	"github.com/barengs/smp/pkg/config"
	"github.com/barengs/smp/pkg/database"
	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/pkg/middleware"
	"github.com/barengs/smp/pkg/response"
	"github.com/barengs/smp/pkg/router"
	"github.com/barengs/smp/pkg/utils"
	"github.com/barengs/smp/services/menu/internal/menu"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/role"
	"github.com/barengs/smp/services/menu/internal/rolemenu"
	"github.com/barengs/smp/services/menu/internal/seed"
	"github.com/casbin/casbin/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceName 服务名
const ServiceName = "menu-service"

// New 组装菜单服务的 fiber 应用
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, enforcer *casbin.Enforcer) *fiber.App {
	casbinService := auth.NewCasbinService(enforcer)
	jwtManager := auth.NewJWTManager(&cfg.JWT)

	cache, closeCache := newTreeCache(&cfg.Redis, rdb)

	menuRepo := menu.NewRepository(db)
	roleRepo := role.NewRepository(db)
	catalog := menu.NewCatalog(menuRepo, cache)
	selection := rolemenu.NewService(rolemenu.NewRepository(db), roleRepo, catalog, casbinService)

	app := fiber.New(fiber.Config{
		AppName:      ServiceName,
		ReadTimeout:  time.Duration(cfg.Server.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.HTTP.WriteTimeout) * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(response.Response{Code: fe.Code, Message: fe.Message})
			}
			return response.FromError(c, err)
		},
	})
	app.Hooks().OnShutdown(func() error {
		closeCache()
		return nil
	})
	app.Use(middleware.Recovery(), middleware.RequestID(), middleware.AccessLog(), middleware.Cors())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": ServiceName,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	middlewares := map[string]fiber.Handler{
		router.MiddlewareJWT:    middleware.JWTAuth(jwtManager),
		router.MiddlewareAssign: middleware.RequirePermission(casbinService, cfg.Casbin.SuperRole, seed.AssignKey),
	}
	router.Register(app, middlewares,
		menu.NewController(menuRepo, catalog, selection, cfg.Casbin.SuperRole),
		role.NewController(roleRepo, selection),
		rolemenu.NewController(selection),
	)
	return app
}

// newTreeCache 按 redis.treeMode 选择菜单树缓存，返回的函数释放缓存占用的资源
func newTreeCache(cfg *config.RedisConfig, rdb *redis.Client) (menu.TreeCache, func()) {
	ttl := time.Duration(cfg.TreeTTL) * time.Second

	switch {
	case cfg.TreeMode == "none":
		return menu.NopTreeCache{}, func() {}
	case cfg.TreeMode == "local":
		local := localcache.New[[]model.Menu](time.Minute)
		if rdb == nil {
			return menu.NewLocalTreeCache(local, ttl, nil), local.Close
		}
		bus := broadcast.New(rdb, ServiceName+":events", utils.UUID())
		tc := menu.NewLocalTreeCache(local, ttl, bus)
		if err := bus.Start(); err != nil {
			logger.Warn("广播器启动失败，菜单树缓存仅在本实例内失效", zap.Error(err))
			return tc, local.Close
		}
		return tc, func() {
			if err := bus.Stop(); err != nil {
				logger.Warn("停止广播器失败", zap.Error(err))
			}
			local.Close()
		}
	case rdb != nil:
		return menu.NewTreeCache(database.NewCacheWithClient(rdb, "menu"), ttl), func() {}
	default:
		return menu.NopTreeCache{}, func() {}
	}
}
