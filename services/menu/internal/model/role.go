package model

import (
	"github.com/barengs/smp/pkg/dal"
)

// Role 角色模型
type Role struct {
	dal.Model
	Name        string `gorm:"size:50;not null" json:"name"`
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Status      int8   `gorm:"default:1" json:"status"`
	Sort        int    `gorm:"default:0" json:"sort"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName 表名
func (Role) TableName() string {
	return "sys_role"
}

// RoleMenu 角色已选权限标识，一个角色的全部记录即其选择集合
type RoleMenu struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID  int64  `gorm:"uniqueIndex:idx_role_menu_key;not null" json:"roleId"`
	MenuKey string `gorm:"size:100;uniqueIndex:idx_role_menu_key;index;not null" json:"menuKey"`
}

// TableName 表名
func (RoleMenu) TableName() string {
	return "sys_role_menu"
}

// All 需要迁移的模型
func All() []interface{} {
	return []interface{}{&Menu{}, &Role{}, &RoleMenu{}}
}
