package auth

import (
	"fmt"
	"sync"

	"github.com/barengs/smp/pkg/config"
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// ActionAccess 菜单权限标识统一使用的动作
const ActionAccess = "access"

// defaultModel 未配置 modelPath 时使用的模型：角色主体对权限标识的精确匹配
const defaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

var (
	enforcerOnce sync.Once
	enforcer     *casbin.Enforcer
)

// InitCasbin 初始化全局 Enforcer
func InitCasbin(db *gorm.DB, cfg *config.CasbinConfig) error {
	var err error
	enforcerOnce.Do(func() {
		enforcer, err = NewEnforcer(db, cfg)
	})
	return err
}

// NewEnforcer 创建基于 GORM 适配器的 Enforcer
func NewEnforcer(db *gorm.DB, cfg *config.CasbinConfig) (*casbin.Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	var m model.Model
	if cfg.ModelPath != "" {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(defaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load casbin policy: %w", err)
	}
	return e, nil
}

// GetEnforcer 获取Enforcer
func GetEnforcer() *casbin.Enforcer {
	if enforcer == nil {
		panic("casbin enforcer not initialized, call InitCasbin first")
	}
	return enforcer
}

// RoleSubject 角色在策略中的主体名
func RoleSubject(roleCode string) string {
	return fmt.Sprintf("role:%s", roleCode)
}

// CasbinService Casbin服务
type CasbinService struct {
	enforcer *casbin.Enforcer
}

// NewCasbinService 创建Casbin服务
func NewCasbinService(e *casbin.Enforcer) *CasbinService {
	return &CasbinService{enforcer: e}
}

// SyncRoleKeys 以覆盖方式写入角色拥有的权限标识
func (s *CasbinService) SyncRoleKeys(roleCode string, keys []string) error {
	sub := RoleSubject(roleCode)
	if _, err := s.enforcer.DeletePermissionsForUser(sub); err != nil {
		return fmt.Errorf("delete policies of %s: %w", sub, err)
	}
	if len(keys) == 0 {
		return nil
	}

	rules := make([][]string, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, []string{sub, k, ActionAccess})
	}
	if _, err := s.enforcer.AddPolicies(rules); err != nil {
		return fmt.Errorf("add policies of %s: %w", sub, err)
	}
	return nil
}

// DeleteRole 删除角色全部策略
func (s *CasbinService) DeleteRole(roleCode string) error {
	_, err := s.enforcer.DeletePermissionsForUser(RoleSubject(roleCode))
	return err
}

// RoleKeys 角色当前策略中的权限标识
func (s *CasbinService) RoleKeys(roleCode string) ([]string, error) {
	policies, err := s.enforcer.GetFilteredPolicy(0, RoleSubject(roleCode))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(policies))
	for _, p := range policies {
		if len(p) >= 2 {
			keys = append(keys, p[1])
		}
	}
	return keys, nil
}

// CheckRolePermission 检查角色是否拥有权限标识
func (s *CasbinService) CheckRolePermission(roleCode, key string) (bool, error) {
	return s.enforcer.Enforce(RoleSubject(roleCode), key, ActionAccess)
}
