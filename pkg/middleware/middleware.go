package middleware

import (
	"strings"
	"time"

	"github.com/barengs/smp/pkg/auth"
	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/pkg/response"
	"github.com/barengs/smp/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// JWTAuth JWT认证中间件
func JWTAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return response.Unauthorized(c, "未提供认证令牌")
		}

		claims, err := jwtManager.ParseToken(strings.TrimPrefix(token, "Bearer "))
		if err != nil {
			return response.Unauthorized(c, "无效的认证令牌")
		}

		c.Locals("userId", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("roleId", claims.RoleID)
		c.Locals("roleCode", claims.RoleCode)
		return c.Next()
	}
}

// PermissionChecker 权限判定
type PermissionChecker interface {
	CheckRolePermission(roleCode, key string) (bool, error)
}

// RequirePermission 要求当前角色拥有权限标识，superRole 直接放行
func RequirePermission(checker PermissionChecker, superRole, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleCode := GetRoleCode(c)
		if roleCode == "" {
			return response.Unauthorized(c, "未获取到角色信息")
		}
		if superRole != "" && roleCode == superRole {
			return c.Next()
		}

		ok, err := checker.CheckRolePermission(roleCode, key)
		if err != nil {
			logger.Error("permission check failed",
				zap.String("role", roleCode),
				zap.String("key", key),
				zap.Error(err),
			)
			return response.ServerError(c, "")
		}
		if !ok {
			return response.Forbidden(c, "没有访问权限")
		}
		return c.Next()
	}
}

// Recovery 恢复中间件
func Recovery() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
				)
				err = response.ServerError(c, "")
			}
		}()
		return c.Next()
	}
}

// RequestID 请求ID中间件
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = utils.UUID()
		}
		c.Locals("requestId", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)
		return c.Next()
	}
}

// AccessLog 访问日志，每个请求一行
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("requestId", GetRequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("access", fields...)
		return err
	}
}

// Cors 跨域中间件
func Cors() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if origin := c.Get(fiber.HeaderOrigin); origin != "" {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Set(fiber.HeaderAccessControlAllowMethods, "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Set(fiber.HeaderAccessControlAllowHeaders, "Origin, X-Requested-With, Content-Type, Accept, Authorization")
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		}
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals("userId").(int64)
	return userID
}

// GetRoleID 从上下文获取角色ID
func GetRoleID(c *fiber.Ctx) int64 {
	roleID, _ := c.Locals("roleId").(int64)
	return roleID
}

// GetRoleCode 从上下文获取角色编码
func GetRoleCode(c *fiber.Ctx) string {
	roleCode, _ := c.Locals("roleCode").(string)
	return roleCode
}

// GetRequestID 从上下文获取请求ID
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestId").(string)
	return id
}
