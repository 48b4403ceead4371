package seed

import (
	"context"
	"fmt"

	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/services/menu/internal/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssignKey 分配角色权限所需的权限标识
const AssignKey = "system:role:assign"

type item struct {
	key      string
	title    string
	en       string
	typ      int8
	path     string
	children []item
}

var catalog = []item{
	{key: "dashboard", title: "Beranda", en: "Dashboard", typ: model.MenuTypeMenu, path: "/dashboard"},
	{key: "student", title: "Santri", en: "Students", typ: model.MenuTypeDir, path: "/student", children: []item{
		{key: "student.list", title: "Data Santri", en: "Student List", typ: model.MenuTypeMenu, path: "/student/list"},
		{key: "student.create", title: "Pendaftaran", en: "Registration", typ: model.MenuTypeButton},
		{key: "student.leave", title: "Perizinan", en: "Leave Permits", typ: model.MenuTypeMenu, path: "/student/leave"},
	}},
	{key: "finance", title: "Keuangan", en: "Finance", typ: model.MenuTypeDir, path: "/finance", children: []item{
		{key: "finance.bill", title: "Tagihan", en: "Bills", typ: model.MenuTypeMenu, path: "/finance/bill"},
		{key: "finance.payment", title: "Pembayaran", en: "Payments", typ: model.MenuTypeMenu, path: "/finance/payment"},
	}},
	{key: "system", title: "Sistem", en: "System", typ: model.MenuTypeDir, path: "/system", children: []item{
		{key: "system:menu", title: "Menu", en: "Menus", typ: model.MenuTypeMenu, path: "/system/menu"},
		{key: "system:role", title: "Peran", en: "Roles", typ: model.MenuTypeMenu, path: "/system/role", children: []item{
			{key: AssignKey, title: "Atur Hak Akses", en: "Assign Permissions", typ: model.MenuTypeButton},
		}},
	}},
}

// Run 空库时写入默认菜单目录和超级角色，已有数据时不做任何修改
func Run(ctx context.Context, db *gorm.DB, superRole string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Menu{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := createItems(tx, 0, catalog); err != nil {
				return fmt.Errorf("seed menus: %w", err)
			}
			logger.Info("default menus seeded")
		}

		if superRole == "" {
			return nil
		}
		if err := tx.Model(&model.Role{}).Where("code = ?", superRole).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		role := &model.Role{Name: "Administrator", Code: superRole, Status: model.StatusEnabled}
		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("seed super role: %w", err)
		}
		logger.Info("super role seeded", zap.String("code", superRole), zap.Int64("id", role.ID))
		return nil
	})
}

func createItems(tx *gorm.DB, parentID int64, items []item) error {
	for i, it := range items {
		m := &model.Menu{
			ParentID: parentID,
			Key:      it.key,
			Title:    it.title,
			Titles:   datatypes.NewJSONType(map[string]string{"en": it.en}),
			Path:     it.path,
			Type:     it.typ,
			Visible:  model.StatusEnabled,
			Status:   model.StatusEnabled,
			Sort:     i,
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := createItems(tx, m.ID, it.children); err != nil {
			return err
		}
	}
	return nil
}
