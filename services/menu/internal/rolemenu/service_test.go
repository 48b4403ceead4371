package rolemenu

import (
	"context"
	"errors"
	"net/http"
	"testing"

	apperrors "github.com/barengs/smp/pkg/errors"
	"github.com/barengs/smp/pkg/permtree"
	"github.com/barengs/smp/services/menu/internal/menu"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/role"
	"github.com/barengs/smp/services/menu/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakePolicy struct {
	keys    map[string][]string
	deleted []string
}

func (f *fakePolicy) SyncRoleKeys(roleCode string, keys []string) error {
	f.keys[roleCode] = append([]string(nil), keys...)
	return nil
}

func (f *fakePolicy) DeleteRole(roleCode string) error {
	delete(f.keys, roleCode)
	f.deleted = append(f.deleted, roleCode)
	return nil
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	policy *fakePolicy
	role   *model.Role
	ids    map[string]int64
}

// newFixture 菜单 A(B(D,E),C) 与一个角色
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	ids := map[string]int64{}

	add := func(key, parent string, sort int) {
		m := &model.Menu{
			ParentID: ids[parent],
			Key:      key,
			Title:    "T-" + key,
			Titles:   datatypes.NewJSONType(map[string]string{"en": "EN-" + key}),
			Status:   model.StatusEnabled,
			Visible:  model.StatusEnabled,
			Sort:     sort,
		}
		require.NoError(t, db.Create(m).Error)
		ids[key] = m.ID
	}
	add("A", "", 0)
	add("B", "A", 0)
	add("D", "B", 0)
	add("E", "B", 1)
	add("C", "A", 1)

	r := &model.Role{Name: "Ustadz", Code: "ustadz", Status: model.StatusEnabled}
	require.NoError(t, db.Create(r).Error)

	policy := &fakePolicy{keys: map[string][]string{}}
	catalog := menu.NewCatalog(menu.NewRepository(db), nil)
	svc := NewService(NewRepository(db), role.NewRepository(db), catalog, policy)
	return &fixture{db: db, svc: svc, policy: policy, role: r, ids: ids}
}

func TestSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Selection(ctx, f.role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "E", "C"}, permtree.Keys(res.Menus))
	assert.NotNil(t, res.Selected)
	assert.Empty(t, res.Selected)

	_, err = f.svc.Selection(ctx, 404)
	assert.Equal(t, http.StatusNotFound, apperrors.GetCode(err))
}

func TestReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keys, err := f.svc.Replace(ctx, f.role.ID, []string{"E", "D", "E"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "E"}, keys)
	assert.Equal(t, []string{"D", "E"}, f.policy.keys["ustadz"])

	stored, err := f.svc.KeysByRole(ctx, f.role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "E"}, stored)

	_, err = f.svc.Replace(ctx, f.role.ID, []string{"D", "ghost"})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownMenuKey))
	stored, _ = f.svc.KeysByRole(ctx, f.role.ID)
	assert.Equal(t, []string{"D", "E"}, stored)

	keys, err = f.svc.Replace(ctx, f.role.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, f.policy.keys["ustadz"])
}

func TestReplaceAcceptsDisabledMenuKeys(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&model.Menu{}).Where("id = ?", f.ids["C"]).Update("status", model.StatusDisabled).Error)

	keys, err := f.svc.Replace(context.Background(), f.role.ID, []string{"C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, keys)
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keys, err := f.svc.Toggle(ctx, f.role.ID, f.ids["B"], true)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D", "E"}, keys)

	keys, err = f.svc.Toggle(ctx, f.role.ID, f.ids["A"], true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, keys)

	// 取消子节点不影响祖先
	keys, err = f.svc.Toggle(ctx, f.role.ID, f.ids["D"], false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "E"}, keys)
	assert.Equal(t, keys, f.policy.keys["ustadz"])

	keys, err = f.svc.Toggle(ctx, f.role.ID, f.ids["A"], false)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = f.svc.Toggle(ctx, f.role.ID, 999, true)
	assert.Equal(t, http.StatusNotFound, apperrors.GetCode(err))
}

func TestToggleDisabledDescendants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.role.ID, []string{"A", "B", "C", "D", "E"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Menu{}).Where("id = ?", f.ids["E"]).Update("status", model.StatusDisabled).Error)

	// 取消时停用的子孙一并移除
	keys, err := f.svc.Toggle(ctx, f.role.ID, f.ids["B"], false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, keys)
	assert.Equal(t, []string{"A", "C"}, f.policy.keys["ustadz"])

	// 勾选只加入启用的子孙
	keys, err = f.svc.Toggle(ctx, f.role.ID, f.ids["B"], true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, keys)

	_, err = f.svc.Toggle(ctx, f.role.ID, f.ids["E"], true)
	assert.Equal(t, http.StatusNotFound, apperrors.GetCode(err))
}

func TestStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.role.ID, []string{"D", "E"})
	require.NoError(t, err)

	states, err := f.svc.States(ctx, f.role.ID, "en")
	require.NoError(t, err)
	require.Len(t, states, 1)

	a := states[0]
	b := a.Children[0]
	assert.Equal(t, "EN-A", a.Title)
	assert.Equal(t, permtree.Indeterminate, a.State)
	// 子孙全选而自身未选，仍为半选
	assert.Equal(t, permtree.Indeterminate, b.State)
	assert.Equal(t, permtree.Checked, b.Children[0].State)
	assert.Equal(t, permtree.Unchecked, a.Children[1].State)
}

func TestClearRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.role.ID, []string{"A"})
	require.NoError(t, err)
	require.NoError(t, f.svc.ClearRole(ctx, f.role))

	stored, err := f.svc.KeysByRole(ctx, f.role.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, []string{"ustadz"}, f.policy.deleted)
}

func TestRenameAndRemoveKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.role.ID, []string{"C", "D"})
	require.NoError(t, err)

	roleIDs, err := f.svc.RenameKey(ctx, nil, "C", "C2")
	require.NoError(t, err)
	assert.Equal(t, []int64{f.role.ID}, roleIDs)
	require.NoError(t, f.svc.SyncRoles(ctx, roleIDs))
	stored, _ := f.svc.KeysByRole(ctx, f.role.ID)
	assert.Equal(t, []string{"C2", "D"}, stored)
	assert.Equal(t, []string{"C2", "D"}, f.policy.keys["ustadz"])

	roleIDs, err = f.svc.RemoveKey(ctx, nil, "D")
	require.NoError(t, err)
	require.NoError(t, f.svc.SyncRoles(ctx, roleIDs))
	stored, _ = f.svc.KeysByRole(ctx, f.role.ID)
	assert.Equal(t, []string{"C2"}, stored)
	assert.Equal(t, []string{"C2"}, f.policy.keys["ustadz"])

	roleIDs, err = f.svc.RemoveKey(ctx, nil, "ghost")
	require.NoError(t, err)
	assert.Empty(t, roleIDs)
}

func TestRenameKeyRollsBackWithTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.role.ID, []string{"C", "D"})
	require.NoError(t, err)

	boom := errors.New("menu write failed")
	err = f.db.Transaction(func(tx *gorm.DB) error {
		if _, err := f.svc.RenameKey(ctx, tx, "C", "C2"); err != nil {
			return err
		}
		if _, err := f.svc.RemoveKey(ctx, tx, "D"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, _ := f.svc.KeysByRole(ctx, f.role.ID)
	assert.Equal(t, []string{"C", "D"}, stored)
}
