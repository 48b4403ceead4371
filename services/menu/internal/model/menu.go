package model

import (
	"github.com/barengs/smp/pkg/dal"
	"github.com/barengs/smp/pkg/permtree"
	"gorm.io/datatypes"
)

// 菜单类型
const (
	MenuTypeDir    int8 = 1
	MenuTypeMenu   int8 = 2
	MenuTypeButton int8 = 3
)

// 通用状态 1 启用/显示，2 停用/隐藏
const (
	StatusEnabled  int8 = 1
	StatusDisabled int8 = 2
)

// Menu 菜单模型，Key 即权限标识
type Menu struct {
	dal.Model
	ParentID int64                                 `gorm:"default:0;index" json:"parentId"`
	Key      string                                `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Title    string                                `gorm:"size:50;not null" json:"title"`
	Titles   datatypes.JSONType[map[string]string] `json:"titles"`
	Path     string                                `gorm:"size:255" json:"path"`
	Icon     string                                `gorm:"size:50" json:"icon"`
	Type     int8                                  `gorm:"default:1" json:"type"`
	Visible  int8                                  `gorm:"default:1" json:"visible"`
	Status   int8                                  `gorm:"default:1" json:"status"`
	Sort     int                                   `gorm:"default:0" json:"sort"`
}

// TableName 表名
func (Menu) TableName() string {
	return "sys_menu"
}

// Record 转为建树用的扁平记录
func (m Menu) Record() permtree.Record {
	return permtree.Record{
		ID:       m.ID,
		ParentID: m.ParentID,
		Key:      m.Key,
		Title:    m.Title,
		Titles:   m.Titles.Data(),
		Sort:     m.Sort,
	}
}
