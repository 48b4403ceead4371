package rolemenu

import (
	"github.com/barengs/smp/pkg/permtree"
)

// SetPermissionsRequest 覆盖角色选择集合
type SetPermissionsRequest struct {
	Keys []string `json:"keys" validate:"dive,required,max=100"`
}

// ToggleRequest 勾选或取消单个节点
type ToggleRequest struct {
	MenuID  int64 `json:"menuId" validate:"required,gt=0"`
	Checked *bool `json:"checked" validate:"required"`
}

// StatesRequest 状态树请求
type StatesRequest struct {
	Locale string `query:"locale"`
}

// PermissionsResponse 渲染权限树所需的全部输入
type PermissionsResponse struct {
	Menus    []*permtree.Node `json:"menus"`
	Selected []string         `json:"selected"`
}

// KeysResponse 写操作后的选择集合
type KeysResponse struct {
	Keys []string `json:"keys"`
}

// StateNode 带勾选状态的节点
type StateNode struct {
	ID       int64                 `json:"id"`
	Key      string                `json:"key"`
	Title    string                `json:"title"`
	State    permtree.CheckedState `json:"state"`
	Children []*StateNode          `json:"children"`
}
