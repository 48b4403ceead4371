// Package client 权限服务 HTTP 客户端
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/barengs/smp/pkg/errors"
	"github.com/barengs/smp/pkg/permtree"
	"github.com/gofiber/fiber/v2"
)

// Permissions 角色的权限树与已选标识
type Permissions struct {
	Menus    []*permtree.Node `json:"menus"`
	Selected []string         `json:"selected"`
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client 基于 fiber Agent 的客户端，每次请求使用独立 Agent
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// New 创建客户端
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
	}
}

// Permissions 获取角色权限树
func (c *Client) Permissions(roleID int64) (*Permissions, error) {
	a := c.agent(fiber.MethodGet, fmt.Sprintf("/roles/%d/permissions", roleID))

	var out Permissions
	if err := c.do(a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavePermissions 覆盖角色选择集合，返回服务端保存后的集合
func (c *Client) SavePermissions(roleID int64, keys []string) ([]string, error) {
	if keys == nil {
		keys = []string{}
	}
	a := c.agent(fiber.MethodPut, fmt.Sprintf("/roles/%d/permissions", roleID))
	a.JSON(map[string][]string{"keys": keys})

	var out struct {
		Keys []string `json:"keys"`
	}
	if err := c.do(a, &out); err != nil {
		return nil, err
	}
	return out.Keys, nil
}

func (c *Client) agent(method, path string) *fiber.Agent {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if c.timeout > 0 {
		a.Timeout(c.timeout)
	}
	return a
}

// do 发送请求并解包统一响应，非 2xx 或业务码非 0 时返回 AppError
func (c *Client) do(a *fiber.Agent, out interface{}) error {
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("parse request: %w", err)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", status, err)
	}
	if status >= http.StatusBadRequest {
		return apperrors.New(status, env.Message)
	}
	if env.Code != 0 {
		return apperrors.New(env.Code, env.Message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
