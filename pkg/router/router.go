package router

import (
	"github.com/gofiber/fiber/v2"
)

// 中间件名称，Routes 通过名称取用
const (
	MiddlewareJWT    = "jwt"
	MiddlewareAssign = "assign"
)

// Route 路由配置
type Route struct {
	Method      string          // HTTP方法
	Path        string          // 相对前缀的路径
	Handler     fiber.Handler   // 处理函数
	Middlewares []fiber.Handler // 路由级中间件
}

// Registrar 路由注册器接口
type Registrar interface {
	// Prefix 返回路由前缀
	Prefix() string
	// Routes 返回路由配置列表，按声明顺序注册，静态路径需排在参数路径之前
	Routes(middlewares map[string]fiber.Handler) []Route
}

// Register 注册所有控制器的路由
func Register(app fiber.Router, middlewares map[string]fiber.Handler, registrars ...Registrar) {
	for _, r := range registrars {
		g := app.Group(r.Prefix())
		for _, route := range r.Routes(middlewares) {
			g.Add(route.Method, route.Path, buildHandlers(route)...)
		}
	}
}

// buildHandlers 构建处理器链(中间件 + 处理函数)
func buildHandlers(route Route) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(route.Middlewares)+1)
	for _, m := range route.Middlewares {
		if m != nil {
			handlers = append(handlers, m)
		}
	}
	return append(handlers, route.Handler)
}
