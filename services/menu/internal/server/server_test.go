package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/barengs/smp/pkg/auth"
	"github.com/barengs/smp/pkg/config"
	"github.com/barengs/smp/pkg/permtree"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/seed"
	"github.com/barengs/smp/services/menu/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	app     *fiber.App
	db      *gorm.DB
	jwt     *auth.JWTManager
	admin   model.Role
	ustadz model.Role
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "integration", Issuer: "smp", Expire: 600},
		Casbin: config.CasbinConfig{SuperRole: "admin"},
		Redis:  config.RedisConfig{TreeTTL: 60},
	}

	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	require.NoError(t, seed.Run(context.Background(), db, cfg.Casbin.SuperRole))

	enforcer, err := auth.NewEnforcer(db, &cfg.Casbin)
	require.NoError(t, err)

	h := &harness{app: New(cfg, db, rdb, enforcer), db: db, jwt: auth.NewJWTManager(&cfg.JWT)}
	require.NoError(t, db.Where("code = ?", "admin").First(&h.admin).Error)
	h.ustadz = model.Role{Name: "Ustadz", Code: "ustadz", Status: model.StatusEnabled}
	require.NoError(t, db.Create(&h.ustadz).Error)
	return h
}

func (h *harness) token(t *testing.T, r model.Role) string {
	t.Helper()
	tok, err := h.jwt.GenerateToken(1, r.Code, r.ID, r.Code)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, token, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (h *harness) menuID(t *testing.T, key string) int64 {
	t.Helper()
	var m model.Menu
	require.NoError(t, h.db.Where("key = ?", key).First(&m).Error)
	return m.ID
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequiresToken(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(t, "", http.MethodGet, "/menus/tree", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAssignPermissionFlow(t *testing.T) {
	h := newHarness(t)
	admin := h.token(t, h.admin)
	ustadz := h.token(t, h.ustadz)
	ustadzPerms := fmt.Sprintf("/roles/%d/permissions", h.ustadz.ID)

	// 教师尚无分配权限
	status, _ := h.do(t, ustadz, http.MethodPut, ustadzPerms, map[string]interface{}{"keys": []string{"dashboard"}})
	assert.Equal(t, http.StatusForbidden, status)

	// 超级角色直接放行
	status, env := h.do(t, admin, http.MethodPut, ustadzPerms,
		map[string]interface{}{"keys": []string{"student", "student.list", seed.AssignKey, "student"}})
	require.Equal(t, http.StatusOK, status, env.Message)
	var keys struct {
		Keys []string `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &keys))
	assert.Equal(t, []string{"student", "student.list", seed.AssignKey}, keys.Keys)

	// 策略已同步，教师现在可以操作
	status, env = h.do(t, ustadz, http.MethodPost, ustadzPerms+"/toggle",
		map[string]interface{}{"menuId": h.menuID(t, "finance"), "checked": true})
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &keys))
	assert.Contains(t, keys.Keys, "finance.payment")

	status, _ = h.do(t, ustadz, http.MethodPut, ustadzPerms, map[string]interface{}{"keys": []string{"ghost"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(t, ustadz, http.MethodPost, ustadzPerms+"/toggle", map[string]interface{}{"menuId": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = h.do(t, ustadz, http.MethodGet, ustadzPerms, nil)
	require.Equal(t, http.StatusOK, status)
	var perms struct {
		Menus    []*permtree.Node `json:"menus"`
		Selected []string         `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &perms))
	assert.Len(t, perms.Menus, 4)
	assert.Contains(t, perms.Selected, "finance")

	status, env = h.do(t, ustadz, http.MethodGet, ustadzPerms+"/states?locale=en", nil)
	require.Equal(t, http.StatusOK, status)
	var states []struct {
		Key   string `json:"key"`
		Title string `json:"title"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &states))
	got := map[string]string{}
	for _, s := range states {
		got[s.Key] = s.State
	}
	assert.Equal(t, "unchecked", got["dashboard"])
	assert.Equal(t, "checked", got["student"])
	assert.Equal(t, "checked", got["finance"])
	assert.Equal(t, "indeterminate", got["system"])

	status, env = h.do(t, ustadz, http.MethodGet, "/menus/user/tree?locale=en", nil)
	require.Equal(t, http.StatusOK, status)
	var tree []*permtree.Node
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	assert.Equal(t, []string{"Students", "Finance", "System"}, []string{tree[0].Title, tree[1].Title, tree[2].Title})
}

func TestDeleteRoleClearsPolicies(t *testing.T) {
	h := newHarness(t)
	admin := h.token(t, h.admin)

	status, _ := h.do(t, admin, http.MethodPut, fmt.Sprintf("/roles/%d/permissions", h.ustadz.ID),
		map[string]interface{}{"keys": []string{seed.AssignKey}})
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, admin, http.MethodDelete, fmt.Sprintf("/roles/%d", h.ustadz.ID), nil)
	require.Equal(t, http.StatusOK, status)

	var n int64
	require.NoError(t, h.db.Model(&model.RoleMenu{}).Where("role_id = ?", h.ustadz.ID).Count(&n).Error)
	assert.Zero(t, n)

	// 令牌仍然有效，但策略已清除
	status, _ = h.do(t, h.token(t, h.ustadz), http.MethodPut, fmt.Sprintf("/roles/%d/permissions", h.admin.ID),
		map[string]interface{}{"keys": []string{}})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRoleCRUD(t *testing.T) {
	h := newHarness(t)
	admin := h.token(t, h.admin)

	status, env := h.do(t, admin, http.MethodPost, "/roles", map[string]interface{}{"name": "Bendahara", "code": "treasurer"})
	require.Equal(t, http.StatusOK, status, env.Message)
	var created model.Role
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, model.StatusEnabled, created.Status)

	status, _ = h.do(t, admin, http.MethodPost, "/roles", map[string]interface{}{"name": "Dup", "code": "treasurer"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = h.do(t, admin, http.MethodPut, fmt.Sprintf("/roles/%d", created.ID), map[string]interface{}{"description": "Keuangan pondok"})
	require.Equal(t, http.StatusOK, status)
	var updated model.Role
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Keuangan pondok", updated.Description)
	assert.Equal(t, "Bendahara", updated.Name)

	status, env = h.do(t, admin, http.MethodGet, "/roles?code=treas", nil)
	require.Equal(t, http.StatusOK, status)
	var roles []model.Role
	require.NoError(t, json.Unmarshal(env.Data, &roles))
	require.Len(t, roles, 1)

	status, _ = h.do(t, admin, http.MethodGet, "/roles/9999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
